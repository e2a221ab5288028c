package escrow

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

func TestCreateThenReleaseRoundTrip(t *testing.T) {
	svc, mock := newMockService(t)
	contractID := uuid.New()
	clientID := uuid.New()
	jobID := uuid.New()

	contractRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "job_id", "client_id", "title", "status", "total_amount", "metadata"}).
			AddRow(contractID.String(), jobID.String(), clientID.String(), "Logo design", "active", int64(1000), []byte(`{}`))
	}
	paymentListRows := func(id uuid.UUID, status string) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "contract_id", "amount", "status", "type", "description"}).
			AddRow(id.String(), contractID.String(), int64(400), status, "escrow", "milestone 1")
	}

	// create: lock contract, insert payment, rewrite the metadata mirror
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "contracts" WHERE id = \$1`).WillReturnRows(contractRows())
	mock.ExpectExec(`INSERT INTO "escrow_payments"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "escrow_payments" WHERE contract_id = \$1`).
		WillReturnRows(paymentListRows(uuid.New(), "pending"))
	mock.ExpectExec(`UPDATE "contracts" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	payment, err := svc.Create(contractID, clientID, 400, "milestone 1")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, payment.ID)
	assert.Equal(t, contractID, payment.ContractID)
	assert.Equal(t, models.EscrowStatusPending, payment.Status)
	assert.Nil(t, payment.CompletedAt)

	// release: lock contract, load the payment, stamp it, rewrite the mirror
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "contracts" WHERE id = \$1`).WillReturnRows(contractRows())
	mock.ExpectQuery(`SELECT \* FROM "escrow_payments" WHERE id = \$1 AND contract_id = \$2`).
		WillReturnRows(paymentListRows(payment.ID, "pending"))
	mock.ExpectExec(`UPDATE "escrow_payments" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "escrow_payments" WHERE contract_id = \$1`).
		WillReturnRows(paymentListRows(payment.ID, "completed"))
	mock.ExpectExec(`UPDATE "contracts" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	released, err := svc.Release(contractID, clientID, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.EscrowStatusCompleted, released.Status)
	require.NotNil(t, released.CompletedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsNonClient(t *testing.T) {
	svc, mock := newMockService(t)
	contractID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "contracts" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "client_id", "total_amount"}).
			AddRow(contractID.String(), uuid.New().String(), int64(1000)))
	mock.ExpectRollback()

	_, err := svc.Create(contractID, uuid.New(), 400, "milestone 1")
	require.ErrorIs(t, err, ErrNotContractOwner)

	// rejected before any payment insert or metadata write
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	svc, mock := newMockService(t)

	_, err := svc.Create(uuid.New(), uuid.New(), 0, "")
	require.ErrorIs(t, err, ErrInvalidAmount)

	require.NoError(t, mock.ExpectationsWereMet())
}
