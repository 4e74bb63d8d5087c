package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"secrets_web/internal/app/router"
	authadapters "secrets_web/internal/feature/auth/adapters"
	authhandler "secrets_web/internal/feature/auth/transport/handler"
	authusecase "secrets_web/internal/feature/auth/usecase"
	secretsadapters "secrets_web/internal/feature/secrets/adapters"
	secretshandler "secrets_web/internal/feature/secrets/transport/handler"
	secretsusecase "secrets_web/internal/feature/secrets/usecase"
	"secrets_web/internal/platform/db"
	"secrets_web/internal/platform/googleoauth"
	"secrets_web/internal/platform/password"
	platformredis "secrets_web/internal/platform/redis"
	"secrets_web/internal/platform/session"
	"secrets_web/internal/platform/sessiontoken"
)

// sessionTTL はSESSION_TTL_HOURSからセッション有効期間を読み取ります。
// 未設定または不正な値の場合は24時間を使用します。
func sessionTTL() time.Duration {
	if v := os.Getenv("SESSION_TTL_HOURS"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h > 0 {
			return time.Duration(h) * time.Hour
		}
		log.Printf("[WARN] invalid SESSION_TTL_HOURS %q, falling back to 24h", v)
	}
	return 24 * time.Hour
}

func main() {
	// DB接続
	gormDB := db.OpenDB()

	// Redis接続（セッションストアとして必須）
	rdb, err := platformredis.NewClient()
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer rdb.Close()

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		log.Println("[WARN] SESSION_SECRET is not set. Sessions will not survive restarts safely.")
	}

	ttl := sessionTTL()

	// Repository
	userRepo := authadapters.NewUserPostgres(gormDB)
	secretRepo := secretsadapters.NewSecretPostgres(gormDB)
	sessionRepo := session.NewSessionRedis(rdb, "session")

	// Usecase
	tokens := sessiontoken.NewCodec(secret)
	hasher := password.NewHasher(bcrypt.DefaultCost)
	authUC := authusecase.NewAuthUsecase(userRepo, sessionRepo, tokens, hasher, ttl)
	secretUC := secretsusecase.NewSecretUsecase(secretRepo)

	// Handler
	google := googleoauth.NewClientFromEnv()
	cookieSecure := os.Getenv("COOKIE_SECURE") == "true"
	authHandler := authhandler.NewAuthHandler(authUC, google, ttl, cookieSecure)
	secretHandler := secretshandler.NewSecretHandler(secretUC)

	// ルータ生成
	r := router.NewRouter(authHandler, secretHandler, authUC)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
