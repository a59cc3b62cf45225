package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/quad400/kaydee-boutique/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPostgresSessionRepository(db, quietLogger())

	mock.ExpectQuery(regexp.QuoteMeta(`FROM sessions s JOIN users u ON u.id = s.user_id WHERE s.token = $1 AND s.expires_at > now()`)).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"id", "role"}).AddRow("u1", "admin"))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM sessions s`)).
		WithArgs("stale").
		WillReturnRows(sqlmock.NewRows([]string{"id", "role"}))

	p, err := repo.ResolveSession(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, domain.Principal{ID: "u1", Role: domain.RoleAdmin}, *p)

	_, err = repo.ResolveSession(context.Background(), "stale")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized), "got %v", err)
	require.NoError(t, mock.ExpectationsWereMet())
}
