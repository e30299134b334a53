package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
)

// seedPasswordBytes is the number of random bytes for the seed password.
const seedPasswordBytes = 16

// SeedManager creates a "manager" account on first boot when the staff table
// is empty. The generated password is logged once and must be changed.
// Returns the generated password, or "" when seeding was skipped.
func SeedManager(ctx context.Context, repo *StaffRepository, logger *slog.Logger) (string, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("checking staff count: %w", err)
	}
	if count > 0 {
		logger.Info("staff accounts exist, skipping manager seed")
		return "", nil
	}

	raw := make([]byte, seedPasswordBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generating seed password: %w", err)
	}
	password := hex.EncodeToString(raw)

	hash, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing seed password: %w", err)
	}

	if _, err := repo.Create(ctx, Staff{
		Username:     "manager",
		DisplayName:  "Manager",
		PasswordHash: hash,
		Role:         RoleManager,
		Active:       true,
	}); err != nil {
		return "", fmt.Errorf("creating seed manager: %w", err)
	}

	logger.Warn("seed manager account created",
		"username", "manager",
		"password", password,
		"action_required", "change this password immediately",
	)
	return password, nil
}
