package honey

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hivework/platform_be_hivework/internal/models"
)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	return NewService(gdb), mock
}

func expectLedgerMove(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "profiles" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "honey_transactions"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestValidateAmount(t *testing.T) {
	require.NoError(t, ValidateAmount(1))
	require.NoError(t, ValidateAmount(100))

	assert.ErrorIs(t, ValidateAmount(0), ErrInvalidAmount)
	assert.ErrorIs(t, ValidateAmount(-5), ErrInvalidAmount)
}

func TestPurchaseMovesBalanceAndLedgerTogether(t *testing.T) {
	svc, mock := newMockService(t)
	userID := uuid.New()

	expectLedgerMove(mock)

	trx, err := svc.Purchase(userID, 200, "drop pack", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(200), trx.Amount)
	assert.Equal(t, models.HoneyTrxPurchase, trx.Type)
	assert.Equal(t, userID, trx.UserID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSpendWritesNegativeLedgerRow(t *testing.T) {
	svc, mock := newMockService(t)
	userID := uuid.New()

	expectLedgerMove(mock)

	trx, err := svc.Spend(userID, 25, "featured listing", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(-25), trx.Amount)
	assert.Equal(t, models.HoneyTrxSpend, trx.Type)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPurchaseThenSpendNetsLedgerAndBalance(t *testing.T) {
	svc, mock := newMockService(t)
	userID := uuid.New()

	expectLedgerMove(mock)
	expectLedgerMove(mock)

	purchase, err := svc.Purchase(userID, 200, "drop pack", nil)
	require.NoError(t, err)
	spend, err := svc.Spend(userID, 25, "featured listing", nil)
	require.NoError(t, err)

	// every operation applies the same signed amount to the balance column
	// and the ledger row, so their sum is the balance delta
	assert.Equal(t, int64(175), purchase.Amount+spend.Amount)

	require.NoError(t, mock.ExpectationsWereMet())
}

// A spend against an insufficient balance must leave both the balance and
// the ledger untouched: the conditional UPDATE matches no row, no transaction
// row is inserted, and the whole tx rolls back.
func TestInsufficientSpendLeavesStateUntouched(t *testing.T) {
	svc, mock := newMockService(t)
	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "profiles" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	_, err := svc.Spend(userID, 9999, "too much", nil)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// no INSERT expectation existed, so a ledger write here would fail the mock
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSpendUnknownProfile(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "profiles" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	_, err := svc.Spend(uuid.New(), 10, "x", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInsufficientBalance)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceReadsDenormalizedColumn(t *testing.T) {
	svc, mock := newMockService(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT honey_drops_balance FROM "profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"honey_drops_balance"}).AddRow(175))

	balance, err := svc.Balance(userID)
	require.NoError(t, err)
	assert.Equal(t, int64(175), balance)

	require.NoError(t, mock.ExpectationsWereMet())
}
