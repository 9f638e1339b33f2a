package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
)

// seedPasswordBytes is the number of random bytes for the seed admin password.
const seedPasswordBytes = 16

// seedPasswordEnv lets deployments pin the initial admin password.
const seedPasswordEnv = "SENSORGATE_ADMIN_PASSWORD"

// SeedAdmin creates the initial admin account on first boot if no users exist.
//
// The password comes from SENSORGATE_ADMIN_PASSWORD if set; otherwise a
// random one is generated and logged — it must be changed immediately.
// Returns the password used (empty string if seeding was skipped).
func SeedAdmin(ctx context.Context, userRepo UserRepository, logger *slog.Logger) (string, error) {
	count, err := userRepo.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("checking user count: %w", err)
	}

	if count > 0 {
		logger.Info("users exist, skipping admin seed")
		return "", nil
	}

	password := os.Getenv(seedPasswordEnv)
	generated := password == ""
	if generated {
		passwordBytes := make([]byte, seedPasswordBytes)
		if _, err := rand.Read(passwordBytes); err != nil { //nolint:govet // shadow: err re-declared in nested scope
			return "", fmt.Errorf("generating seed password: %w", err)
		}
		password = hex.EncodeToString(passwordBytes)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hashing seed password: %w", err)
	}

	admin := &User{
		Username:     "admin",
		PasswordHash: hash,
		Role:         RoleAdmin,
		IsActive:     true,
	}

	if err := userRepo.Create(ctx, admin); err != nil {
		return "", fmt.Errorf("creating seed admin: %w", err)
	}

	if generated {
		logger.Warn("seed admin account created",
			"username", "admin",
			"password", password,
			"action_required", "change this password immediately",
		)
	} else {
		logger.Info("seed admin account created", "username", "admin")
	}

	return password, nil
}
