package impactful

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Default About values for a fresh install.
const (
	defaultFounderName = "Founder Name"
	defaultFounderBio  = "Tell visitors about the founder here."
)

// SeedResult reports which singleton rows Seed had to create.
type SeedResult struct {
	AdminCreated   bool
	AboutCreated   bool
	VisitorCreated bool
}

// Seed makes sure the admin account, the About profile and the visitor
// counter exist. It runs in one transaction and is safe to call on every
// start: rows that already exist are left alone. hash is only used when
// the admin account has to be created.
func (s *Store) Seed(ctx context.Context, username, hash string) (SeedResult, error) {
	var res SeedResult
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("seed: begin: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.GetContext(ctx, &id, tx.Rebind(`SELECT id FROM users WHERE username = ?`), username)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := createUser(ctx, tx, User{Username: username, PasswordHash: hash, IsAdmin: true}); err != nil {
			return res, fmt.Errorf("seed: admin: %w", err)
		}
		res.AdminCreated = true
	case err != nil:
		return res, fmt.Errorf("seed: lookup admin: %w", err)
	}

	var n int
	if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM about`); err != nil {
		return res, fmt.Errorf("seed: count about: %w", err)
	}
	if n == 0 {
		if _, err := createAbout(ctx, tx, s.timestamp(), About{FounderName: defaultFounderName, FounderBio: defaultFounderBio}); err != nil {
			return res, fmt.Errorf("seed: about: %w", err)
		}
		res.AboutCreated = true
	}

	if err := tx.GetContext(ctx, &n, `SELECT COUNT(*) FROM visitors`); err != nil {
		return res, fmt.Errorf("seed: count visitors: %w", err)
	}
	if n == 0 {
		if _, err := tx.ExecContext(ctx, `INSERT INTO visitors (total) VALUES (0)`); err != nil {
			return res, fmt.Errorf("seed: visitors: %w", err)
		}
		res.VisitorCreated = true
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("seed: commit: %w", err)
	}
	return res, nil
}
