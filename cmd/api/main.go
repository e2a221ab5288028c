package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/hivework/platform_be_hivework/internal/config"
	"github.com/hivework/platform_be_hivework/internal/db"
	"github.com/hivework/platform_be_hivework/internal/handlers"
	"github.com/hivework/platform_be_hivework/internal/middleware"
	"github.com/hivework/platform_be_hivework/internal/models"
	"github.com/hivework/platform_be_hivework/internal/realtime"
	"github.com/hivework/platform_be_hivework/internal/services/escrow"
	"github.com/hivework/platform_be_hivework/internal/services/honey"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	gdb, err := db.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	rdb := realtime.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Redis not reachable:", err)
	}

	hub := realtime.NewHub(rdb)
	go hub.Run()

	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Job{},
		&models.JobApplication{},
		&models.Contract{},
		&models.EscrowPayment{},
		&models.HoneyTransaction{},
		&models.Coupon{},
		&models.Referral{},
		&models.Message{},
	); err != nil {
		log.Fatal(err)
	}

	app := newApp(cfg, gdb, rdb, hub)

	log.Fatal(app.Listen(":" + cfg.AppPort))
}

// newApp builds the Fiber app and registers every route.
func newApp(cfg config.Config, gdb *gorm.DB, rdb *redis.Client, hub *realtime.Hub) *fiber.App {
	honeyS := honey.NewService(gdb)
	escrowS := escrow.NewService(gdb)

	authH := &handlers.AuthHandler{
		DB:        gdb,
		Honey:     honeyS,
		Cfg:       cfg,
		JWTSecret: cfg.JWTSecret,
		Expires:   cfg.JWTExpiresMin,
	}
	googleH := &handlers.GoogleOAuthHandler{
		DB:              gdb,
		JWTSecret:       cfg.JWTSecret,
		Expires:         cfg.JWTExpiresMin,
		GoogleClientID:  cfg.GoogleClientID,
		GoogleSecret:    cfg.GoogleSecret,
		GoogleRedirect:  cfg.GoogleRedirect,
		FrontendBaseURL: cfg.FrontendBaseURL,
	}

	profileH := handlers.NewProfileHandler(gdb)
	jobH := handlers.NewJobHandler(gdb)
	applicationH := handlers.NewApplicationHandler(gdb, honeyS, cfg)
	contractH := handlers.NewContractHandler(gdb)
	paymentH := handlers.NewPaymentHandler(gdb, escrowS)
	honeyH := handlers.NewHoneyHandler(gdb, honeyS, cfg)
	refundH := handlers.NewRefundHandler(gdb, honeyS, cfg)
	couponH := handlers.NewCouponHandler(gdb)
	chatH := handlers.NewChatHandler(gdb, hub, cfg.JWTSecret)
	gdprH := handlers.NewGDPRHandler(gdb)
	adminH := handlers.NewAdminHandler(gdb)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendBaseURL,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders:    "Content-Length",
		AllowCredentials: true,
	}))
	app.Use(middleware.RateLimit(rdb, cfg.RateLimitWindowSec, cfg.RateLimitMax))

	app.Options("/*", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	api := app.Group("/api")

	// public
	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Post("/auth/logout", authH.Logout)
	api.Get("/auth/google/start", googleH.GoogleStart)
	api.Get("/auth/google/callback", googleH.GoogleCallback)
	api.Get("/jobs", jobH.ListPublic)
	api.Get("/jobs/:id", jobH.Get)
	api.Get("/coupons/:code/validate", couponH.Validate)

	// protected (JWT)
	protected := api.Group("/",
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.AttachJWTLocals(),
		middleware.RequireActiveUser(gdb),
	)

	protected.Get("/me", profileH.Me)
	protected.Put("/me/profile", profileH.Update)

	protected.Post("/jobs", middleware.RequireRoles("client", "admin"), jobH.Create)
	protected.Get("/my/jobs", middleware.RequireRoles("client", "admin"), jobH.ListMine)
	protected.Put("/jobs/:id", jobH.Update)
	protected.Delete("/jobs/:id", jobH.Delete)
	protected.Post("/jobs/:id/attachments", jobH.AddAttachment)
	protected.Delete("/jobs/:id/attachments/:attachmentId", jobH.RemoveAttachment)

	protected.Post("/jobs/:id/apply", middleware.RequireRoles("freelancer"), applicationH.Apply)
	protected.Get("/jobs/:id/applications", applicationH.ListForJob)
	protected.Get("/my/applications", middleware.RequireRoles("freelancer"), applicationH.ListMine)
	protected.Put("/applications/:id", middleware.RequireRoles("freelancer"), applicationH.Update)
	protected.Patch("/applications/:id/status", applicationH.UpdateStatus)

	protected.Post("/contracts", middleware.RequireRoles("client", "admin"), contractH.Create)
	protected.Get("/contracts", contractH.List)
	protected.Get("/contracts/:id", contractH.Get)
	protected.Put("/contracts/:id", contractH.Update)
	protected.Post("/contracts/:id/send", contractH.Send)
	protected.Post("/contracts/:id/sign", contractH.Sign)

	protected.Post("/payments/escrow/create", paymentH.CreateEscrow)
	protected.Post("/payments/escrow", paymentH.CreateEscrow) // alias
	protected.Post("/payments/escrow/release", paymentH.ReleaseEscrow)
	protected.Get("/contracts/:contractId/payments", paymentH.ListEscrow)

	protected.Get("/honey/balance", honeyH.Balance)
	protected.Get("/honey/transactions", honeyH.Transactions)
	protected.Post("/honey/purchase", honeyH.Purchase)
	protected.Post("/honey/spend", honeyH.Spend)
	protected.Post("/honey/refund", honeyH.Refund)
	protected.Post("/refunds/application-honey-drops", middleware.RequireRoles("client", "admin"), refundH.RefundApplicationDrops)
	protected.Post("/honey/refund-applications", middleware.RequireRoles("client", "admin"), refundH.RefundApplicationDrops) // alias

	protected.Get("/chat/conversations", chatH.GetConversations)
	protected.Get("/chat/conversations/:key/messages", chatH.GetMessages)
	protected.Patch("/chat/conversations/:key/read", chatH.MarkAsRead)
	protected.Post("/chat/messages", chatH.SendMessage)

	protected.Get("/gdpr/export", gdprH.ExportData)
	protected.Delete("/gdpr/account", gdprH.DeleteAccount)

	admin := protected.Group("/admin", middleware.RequireRoles("admin"))
	admin.Get("/users", adminH.ListUsers)
	admin.Get("/users/:id", adminH.GetUser)
	admin.Patch("/users/:id/active", adminH.SetUserActive)
	admin.Post("/coupons", couponH.Create)
	admin.Get("/coupons", couponH.List)
	admin.Delete("/coupons/:code", couponH.Deactivate)

	app.Get("/ws/chat", websocket.New(chatH.WebSocketHandler))

	return app
}
