package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiosync/billing-api/internal/models"
)

func newChargeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestChargeRepositoryExistsForPeriod(t *testing.T) {
	db, mock, cleanup := newChargeRepoMock(t)
	defer cleanup()

	repo := NewChargeRepository(db)
	mock.ExpectQuery("SELECT 1 FROM charges").
		WithArgs("fam-1", 1, 2026).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsForPeriod(context.Background(), "fam-1", 1, 2026)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestChargeRepositoryExistsForPeriodNoRows(t *testing.T) {
	db, mock, cleanup := newChargeRepoMock(t)
	defer cleanup()

	repo := NewChargeRepository(db)
	mock.ExpectQuery("SELECT 1 FROM charges").
		WithArgs("fam-1", 1, 2026).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.ExistsForPeriod(context.Background(), "fam-1", 1, 2026)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestChargeRepositoryCreateInsertsHeaderAndItems(t *testing.T) {
	db, mock, cleanup := newChargeRepoMock(t)
	defer cleanup()

	repo := NewChargeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO charges").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO charge_line_items").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO charge_line_items").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	studentID := "stu-1"
	charge := models.Charge{
		FamilyID:   "fam-1",
		FamilyName: "Lovelace",
		Month:      1,
		Year:       2026,
		Status:     models.ChargeStatusUnpaid,
		FinalTotal: 152,
	}
	items := []models.ChargeLineItem{
		{StudentID: &studentID, Kind: models.LineItemTuition, Description: "Tuition", Amount: 140},
		{StudentID: &studentID, Kind: models.LineItemFee, Description: "Registration", Amount: 35},
	}

	id, err := repo.Create(context.Background(), charge, items)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChargeRepositoryCreateRollsBackOnItemFailure(t *testing.T) {
	db, mock, cleanup := newChargeRepoMock(t)
	defer cleanup()

	repo := NewChargeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO charges").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO charge_line_items").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), models.Charge{FamilyID: "fam-1"}, []models.ChargeLineItem{
		{Kind: models.LineItemTuition, Description: "Tuition", Amount: 100},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChargeRepositorySummary(t *testing.T) {
	db, mock, cleanup := newChargeRepoMock(t)
	defer cleanup()

	repo := NewChargeRepository(db)
	rows := sqlmock.NewRows([]string{"month", "year", "charge_count", "paid_count", "unpaid_count", "total_billed", "total_collected", "total_outstanding", "total_discount"}).
		AddRow(1, 2026, 10, 6, 4, 2500.0, 1600.0, 900.0, 120.0)
	mock.ExpectQuery("SELECT").
		WithArgs(1, 2026).
		WillReturnRows(rows)

	summary, err := repo.Summary(context.Background(), 1, 2026)
	require.NoError(t, err)
	assert.Equal(t, 10, summary.ChargeCount)
	assert.Equal(t, 900.0, summary.TotalOutstanding)
}

func TestChargeRepositoryMarkPaid(t *testing.T) {
	db, mock, cleanup := newChargeRepoMock(t)
	defer cleanup()

	repo := NewChargeRepository(db)
	mock.ExpectExec("UPDATE charges SET status").
		WithArgs("chg-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkPaid(context.Background(), "chg-1", time.Now()))
}

func TestChargeRepositoryMarkPaidMissing(t *testing.T) {
	db, mock, cleanup := newChargeRepoMock(t)
	defer cleanup()

	repo := NewChargeRepository(db)
	mock.ExpectExec("UPDATE charges SET status").
		WithArgs("ghost", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.Error(t, repo.MarkPaid(context.Background(), "ghost", time.Now()))
}
