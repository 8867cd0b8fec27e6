package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFamilyRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func familyRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "balance", "promo_codes", "auto_pay_enabled", "payment_method_id", "active", "created_at", "updated_at"}).
		AddRow("fam-1", "Lovelace", "ada@example.com", 0.0, "{WELCOME}", true, nil, true, time.Now(), time.Now())
}

func TestFamilyRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newFamilyRepoMock(t)
	defer cleanup()

	repo := NewFamilyRepository(db)
	mock.ExpectQuery("SELECT id, name, email").
		WithArgs("fam-1").
		WillReturnRows(familyRows())

	family, err := repo.FindByID(context.Background(), "fam-1")
	require.NoError(t, err)
	assert.Equal(t, "Lovelace", family.Name)
	assert.True(t, family.AutoPayEnabled)
	require.Len(t, family.PromoCodes, 1)
	assert.Equal(t, "WELCOME", family.PromoCodes[0])
}

func TestFamilyRepositoryListActive(t *testing.T) {
	db, mock, cleanup := newFamilyRepoMock(t)
	defer cleanup()

	repo := NewFamilyRepository(db)
	mock.ExpectQuery("SELECT id, name, email").
		WillReturnRows(familyRows())

	families, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, families, 1)
}

func TestFamilyRepositoryAddToBalance(t *testing.T) {
	db, mock, cleanup := newFamilyRepoMock(t)
	defer cleanup()

	repo := NewFamilyRepository(db)
	mock.ExpectExec("UPDATE families SET balance").
		WithArgs("fam-1", 152.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.AddToBalance(context.Background(), "fam-1", 152))
}
