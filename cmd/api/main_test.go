package main

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/hivework/platform_be_hivework/internal/config"
	"github.com/hivework/platform_be_hivework/internal/realtime"
)

// The documented endpoint paths are part of the API contract; a rename here
// breaks every deployed client.
func TestDocumentedRoutesAreRegistered(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	hub := realtime.NewHub(rdb)

	app := newApp(config.Config{
		FrontendBaseURL:    "http://localhost:3000",
		RateLimitWindowSec: 60,
		RateLimitMax:       120,
	}, gdb, rdb, hub)

	registered := map[string]bool{}
	for _, route := range app.GetRoutes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"POST /api/contracts",
		"PUT /api/contracts/:id",
		"POST /api/contracts/:id/sign",
		"POST /api/payments/escrow/create",
		"POST /api/payments/escrow/release",
		"GET /api/honey/balance",
		"GET /api/honey/transactions",
		"POST /api/honey/purchase",
		"POST /api/honey/spend",
		"POST /api/honey/refund",
		"POST /api/refunds/application-honey-drops",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}
