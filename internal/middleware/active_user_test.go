package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	return gdb, mock
}

func newActiveUserApp(gdb *gorm.DB, uid string) *fiber.App {
	app := fiber.New()
	app.Get("/ping", func(c *fiber.Ctx) error {
		if uid != "" {
			c.Locals("userId", uid)
		}
		return c.Next()
	}, RequireActiveUser(gdb), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireActiveUserPassesActiveAccount(t *testing.T) {
	gdb, mock := newMockDB(t)
	app := newActiveUserApp(gdb, uuid.New().String())

	mock.ExpectQuery(`SELECT is_active FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(true))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Deactivating an account must cut off its outstanding tokens immediately,
// not at token expiry.
func TestRequireActiveUserBlocksDeactivatedAccount(t *testing.T) {
	gdb, mock := newMockDB(t)
	app := newActiveUserApp(gdb, uuid.New().String())

	mock.ExpectQuery(`SELECT is_active FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(false))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequireActiveUserWithoutIdentity(t *testing.T) {
	gdb, mock := newMockDB(t)
	app := newActiveUserApp(gdb, "")

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	require.NoError(t, mock.ExpectationsWereMet())
}
