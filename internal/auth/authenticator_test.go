package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func createStaff(t *testing.T, repo *StaffRepository, username, password string, role Role, active bool) int64 {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	id, err := repo.Create(context.Background(), Staff{
		Username:     username,
		DisplayName:  strings.ToUpper(username),
		PasswordHash: hash,
		Role:         role,
		Active:       active,
	})
	if err != nil {
		t.Fatalf("Create(%s) error = %v", username, err)
	}
	return id
}

// ─── StaffRepository ────────────────────────────────────────────────

func TestStaffRepository_CreateAndGet(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	id := createStaff(t, repo, "alice", "pw", RoleStaff, true)

	byID, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	byName, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if byID != byName {
		t.Errorf("GetByID = %+v, GetByUsername = %+v", byID, byName)
	}
	if byID.DisplayName != "ALICE" || byID.Role != RoleStaff || !byID.Active {
		t.Errorf("unexpected staff %+v", byID)
	}

	n, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestStaffRepository_NotFound(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, 99); !errors.Is(err, ErrStaffNotFound) {
		t.Errorf("GetByID() error = %v, want ErrStaffNotFound", err)
	}
	if _, err := repo.GetByUsername(ctx, "ghost"); !errors.Is(err, ErrStaffNotFound) {
		t.Errorf("GetByUsername() error = %v, want ErrStaffNotFound", err)
	}
	if err := repo.SetPasswordHash(ctx, 99, "$argon2id$x"); !errors.Is(err, ErrStaffNotFound) {
		t.Errorf("SetPasswordHash() error = %v, want ErrStaffNotFound", err)
	}
}

func TestStaffRepository_CreateValidation(t *testing.T) {
	repo := testRepo(t)
	hash, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	tests := []struct {
		name  string
		staff Staff
	}{
		{"bad username", Staff{Username: "a b", PasswordHash: hash, Role: RoleStaff}},
		{"bad role", Staff{Username: "ok", PasswordHash: hash, Role: "owner"}},
		{"plaintext password", Staff{Username: "ok", PasswordHash: "pw", Role: RoleStaff}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := repo.Create(context.Background(), tt.staff); err == nil {
				t.Error("Create() should fail")
			}
		})
	}
}

// ─── Authenticator ──────────────────────────────────────────────────

func TestAuthenticator_Login(t *testing.T) {
	repo := testRepo(t)
	createStaff(t, repo, "alice", "correct-horse", RoleManager, true)
	createStaff(t, repo, "gone", "correct-horse", RoleStaff, false)
	a := NewAuthenticator(repo, testSecret, 30, nil)

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"valid", "alice", "correct-horse", nil},
		{"wrong password", "alice", "nope", ErrInvalidCredentials},
		{"unknown user", "bob", "correct-horse", ErrInvalidCredentials},
		{"inactive", "gone", "correct-horse", ErrInvalidCredentials},
		{"empty password", "alice", "", ErrInvalidCredentials},
		{"invalid username", "a b", "correct-horse", ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, err := a.Login(context.Background(), tt.username, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Login() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login() error = %v", err)
			}
			if sess.TokenType != "Bearer" || sess.Staff.Username != "alice" {
				t.Errorf("unexpected session %+v", sess)
			}

			claims, err := a.Verify(sess.AccessToken)
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if claims.Role != RoleManager {
				t.Errorf("Role = %q, want manager", claims.Role)
			}
		})
	}
}

func TestAuthenticator_LoginUpgradesWeakHash(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	id := createStaff(t, repo, "alice", "pw", RoleStaff, true)

	saved := currentParams
	currentParams = argonParams{time: 1, memory: 8 * 1024, threads: 1}
	weak, err := HashPassword("pw")
	currentParams = saved
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if err := repo.SetPasswordHash(ctx, id, weak); err != nil {
		t.Fatalf("SetPasswordHash() error = %v", err)
	}

	a := NewAuthenticator(repo, testSecret, 30, nil)
	if _, err := a.Login(ctx, "alice", "pw"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	staff, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if NeedsRehash(staff.PasswordHash) {
		t.Error("hash should have been upgraded to current parameters")
	}
}
