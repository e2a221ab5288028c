package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hivework/platform_be_hivework/internal/config"
	"github.com/hivework/platform_be_hivework/internal/services/honey"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	return gdb, mock
}

func newPurchaseApp(h *HoneyHandler) *fiber.App {
	app := fiber.New()
	app.Post("/honey/purchase", func(c *fiber.Ctx) error {
		c.Locals("userId", uuid.New().String())
		return c.Next()
	}, h.Purchase)
	return app
}

// A purchase with a bad amount must fail before the coupon is touched:
// no used_count increment, no SQL at all.
func TestPurchaseBadAmountDoesNotBurnCoupon(t *testing.T) {
	gdb, mock := newMockDB(t)
	h := NewHoneyHandler(gdb, honey.NewService(gdb), config.Config{})
	app := newPurchaseApp(h)

	for _, body := range []string{
		`{"amount":0,"couponCode":"SAVE10"}`,
		`{"amount":-50,"couponCode":"SAVE10"}`,
	} {
		req := httptest.NewRequest(fiber.MethodPost, "/honey/purchase", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	}

	// no expectations were registered, so any query would have failed the mock
	require.NoError(t, mock.ExpectationsWereMet())
}

// An invalid coupon aborts the shared transaction, so the purchase credit is
// rolled back along with the coupon burn.
func TestPurchaseInvalidCouponRollsBackEverything(t *testing.T) {
	gdb, mock := newMockDB(t)
	h := NewHoneyHandler(gdb, honey.NewService(gdb), config.Config{})
	app := newPurchaseApp(h)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "coupons" WHERE code = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "discount", "max_uses", "used_count", "is_active"}).
			AddRow(uuid.New().String(), "SAVE10", int64(10), 5, 5, true))
	mock.ExpectRollback()

	req := httptest.NewRequest(fiber.MethodPost, "/honey/purchase",
		strings.NewReader(`{"amount":100,"couponCode":"SAVE10"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// the used-up coupon was never incremented and no ledger rows were written
	require.NoError(t, mock.ExpectationsWereMet())
}
