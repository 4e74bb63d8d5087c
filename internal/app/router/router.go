package router

import (
	authhandler "secrets_web/internal/feature/auth/transport/handler"
	"secrets_web/internal/feature/auth/transport/middleware"
	secretshandler "secrets_web/internal/feature/secrets/transport/handler"
	"secrets_web/internal/platform/http/handler"
	"secrets_web/internal/web"

	"github.com/gin-gonic/gin"
)

func NewRouter(authHandler *authhandler.AuthHandler, secrets *secretshandler.SecretHandler,
	sessions middleware.SessionResolver) *gin.Engine {
	r := gin.Default()

	// ビューと静的ファイル
	r.SetHTMLTemplate(web.Templates())
	r.Static("/static", "./web/static")

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.GET("/", authHandler.ShowHome)
	r.GET("/login", authHandler.ShowLogin)
	r.GET("/register", authHandler.ShowRegister)
	// 新規ユーザー登録
	r.POST("/register", authHandler.Register)
	// ローカルログイン（セッションCookie発行）
	r.POST("/login", authHandler.Login)
	// Google OAuthフロー
	r.GET("/auth/google", authHandler.GoogleLogin)
	r.GET("/auth/google/secrets", authHandler.GoogleCallback)
	// 未認証でもno-opで安全なため認可ゲートの外に置く
	r.GET("/logout", authHandler.Logout)

	// 認証必須のルート
	// r.Group("/") でルートグループを作成
	auth := r.Group("/")
	// middleware.RequireLogin() を適用
	// → 有効なセッションCookieがないリクエストは/loginへリダイレクトされる
	auth.Use(middleware.RequireLogin(sessions))
	{
		auth.GET("/secrets", secrets.ShowSecrets)
		auth.GET("/submit", secrets.ShowSubmit)
		auth.POST("/submit", secrets.Submit)
	}

	return r
}
