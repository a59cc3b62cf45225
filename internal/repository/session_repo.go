package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/quad400/kaydee-boutique/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresSessionRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

// NewPostgresSessionRepository resolves tokens from the sessions table kept
// by the identity service.
func NewPostgresSessionRepository(db *sql.DB, logger *logrus.Logger) domain.SessionRepository {
	return &postgresSessionRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresSessionRepository) ResolveSession(ctx context.Context, token string) (*domain.Principal, error) {
	query := `
        SELECT u.id, u.role
        FROM sessions s
        JOIN users u ON u.id = s.user_id
        WHERE s.token = $1 AND s.expires_at > now()`
	var (
		principal domain.Principal
		role      string
	)
	err := r.db.QueryRowContext(ctx, query, token).Scan(&principal.ID, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warn("Session token unknown or expired")
			return nil, domain.Unauthorizedf("invalid or expired token")
		}
		r.log.Errorf("Failed to resolve session: %v", err)
		return nil, fmt.Errorf("could not resolve session: %w", err)
	}
	principal.Role = domain.Role(role)
	return &principal, nil
}
