package config

import (
	"os"
	"strconv"
)

type Config struct {
	AppPort         string
	DBDSN           string
	RedisAddr       string
	RedisPassword   string
	JWTSecret       string
	JWTExpiresMin   int
	GoogleClientID  string
	GoogleSecret    string
	GoogleRedirect  string
	FrontendBaseURL string

	// platform knobs (previously scattered env reads at module load)
	RateLimitWindowSec int
	RateLimitMax       int
	ReferralLimit      int   // max rewarded referrals per user
	ReferralReward     int64 // drops credited per successful referral
	ApplicationFee     int64 // drops spent when applying to a job
	RefundSelfCap      int64 // largest self-service refund; above this admin only
}

func Load() Config {
	expires, _ := strconv.Atoi(get("JWT_EXPIRES_MIN", "10080"))
	rlWindow, _ := strconv.Atoi(get("RATE_LIMIT_WINDOW_SEC", "60"))
	rlMax, _ := strconv.Atoi(get("RATE_LIMIT_MAX", "120"))
	refLimit, _ := strconv.Atoi(get("REFERRAL_LIMIT", "10"))
	refReward, _ := strconv.ParseInt(get("REFERRAL_REWARD", "10"), 10, 64)
	appFee, _ := strconv.ParseInt(get("HONEY_APPLICATION_FEE", "3"), 10, 64)
	refundCap, _ := strconv.ParseInt(get("HONEY_REFUND_SELF_CAP", "100"), 10, 64)

	return Config{
		AppPort:         get("APP_PORT", "8080"),
		DBDSN:           must("DB_DSN"),
		RedisAddr:       get("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   get("REDIS_PASSWORD", ""),
		JWTSecret:       must("JWT_SECRET"),
		JWTExpiresMin:   expires,
		GoogleClientID:  get("GOOGLE_CLIENT_ID", ""),
		GoogleSecret:    get("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirect:  get("GOOGLE_REDIRECT_URL", ""),
		FrontendBaseURL: get("FRONTEND_BASE_URL", "http://localhost:3000"),

		RateLimitWindowSec: rlWindow,
		RateLimitMax:       rlMax,
		ReferralLimit:      refLimit,
		ReferralReward:     refReward,
		ApplicationFee:     appFee,
		RefundSelfCap:      refundCap,
	}
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
