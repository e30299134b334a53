package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/donbarbero/booking-core/internal/store"
)

// TableStaff is the table staff accounts live in.
const TableStaff = "staff"

// StaffRepository reads and writes staff accounts through the data accessor.
type StaffRepository struct {
	store *store.Store
}

// NewStaffRepository creates a StaffRepository over s.
func NewStaffRepository(s *store.Store) *StaffRepository {
	return &StaffRepository{store: s}
}

// GetByUsername returns the account with the given username.
func (r *StaffRepository) GetByUsername(ctx context.Context, username string) (Staff, error) {
	rec, found, err := r.store.FindOne(ctx, TableStaff, map[string]any{"username": username})
	if err != nil {
		return Staff{}, fmt.Errorf("looking up staff %q: %w", username, err)
	}
	if !found {
		return Staff{}, ErrStaffNotFound
	}
	return decodeStaff(rec)
}

// GetByID returns the account with the given id.
func (r *StaffRepository) GetByID(ctx context.Context, id int64) (Staff, error) {
	rec, found, err := r.store.FindByID(ctx, TableStaff, id)
	if err != nil {
		return Staff{}, fmt.Errorf("looking up staff %d: %w", id, err)
	}
	if !found {
		return Staff{}, ErrStaffNotFound
	}
	return decodeStaff(rec)
}

// Create stores a new account and returns its id. PasswordHash must already
// be set.
func (r *StaffRepository) Create(ctx context.Context, s Staff) (int64, error) {
	if !IsValidUsername(s.Username) {
		return 0, fmt.Errorf("invalid username %q", s.Username)
	}
	if !IsValidRole(s.Role) {
		return 0, fmt.Errorf("invalid role %q", s.Role)
	}
	if !strings.HasPrefix(s.PasswordHash, "$argon2id$") {
		return 0, errInvalidHash
	}
	id, err := r.store.Insert(ctx, TableStaff, store.Record{
		"username":      s.Username,
		"display_name":  s.DisplayName,
		"password_hash": s.PasswordHash,
		"role":          string(s.Role),
		"active":        s.Active,
	})
	if err != nil {
		return 0, fmt.Errorf("creating staff %q: %w", s.Username, err)
	}
	return id, nil
}

// SetPasswordHash replaces the stored hash for id.
func (r *StaffRepository) SetPasswordHash(ctx context.Context, id int64, hash string) error {
	n, err := r.store.Update(ctx, TableStaff, store.Record{"password_hash": hash}, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("updating password for staff %d: %w", id, err)
	}
	if n == 0 {
		return ErrStaffNotFound
	}
	return nil
}

// Count returns the number of accounts.
func (r *StaffRepository) Count(ctx context.Context) (int64, error) {
	return r.store.Count(ctx, TableStaff, nil)
}

func decodeStaff(rec store.Record) (Staff, error) {
	id, ok := rec.Int64("id")
	if !ok {
		return Staff{}, fmt.Errorf("decoding staff row: missing id")
	}
	return Staff{
		ID:           id,
		Username:     rec.String("username"),
		DisplayName:  rec.String("display_name"),
		PasswordHash: rec.String("password_hash"),
		Role:         Role(rec.String("role")),
		Active:       rec.Bool("active"),
	}, nil
}
