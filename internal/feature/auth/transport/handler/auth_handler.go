// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"secrets_web/internal/feature/auth/domain/entity"
	"secrets_web/internal/feature/auth/transport/http/dto"
	"secrets_web/internal/feature/auth/transport/middleware"
	"secrets_web/internal/feature/auth/usecase"
)

// stateCookie はGoogle OAuthコールバックのCSRF対策用stateを保持するCookie名です。
const stateCookie = "oauth_state"

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Register は指定されたユーザー名とパスワードで新規ユーザーを登録します。
	Register(ctx context.Context, username, password string) (*entity.User, error)
	// Login はローカル認証を実行し、成功時に認証されたユーザーを返します。
	Login(ctx context.Context, username, password string) (*entity.User, error)
	// ReconcileGoogle はGoogleプロフィールのメールをローカルユーザーに対応付けます（find-or-create）。
	ReconcileGoogle(ctx context.Context, email string) (*entity.User, error)
	// StartSession は新しいセッションを作成し、Cookie用の署名付きトークンを返します。
	StartSession(ctx context.Context, user *entity.User, userAgent, ip string) (string, error)
	// Logout はトークンが指すセッションをサーバー側で失効させます。
	Logout(ctx context.Context, token string) error
}

// GoogleOAuth はGoogle OAuth2フローを抽象化します。
// 実装はplatform/googleoauthが提供します。
type GoogleOAuth interface {
	// AuthCodeURL は同意画面へのリダイレクト先URLを返します。
	AuthCodeURL(state string) string
	// FetchEmail は認可コードを交換し、検証済みメールアドレスを返します。
	FetchEmail(ctx context.Context, code string) (string, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
// フォーム送信を受け取り、結果をリダイレクトで返すブラウザ向けのハンドラーです。
type AuthHandler struct {
	auth         AuthUsecase
	google       GoogleOAuth
	sessionTTL   time.Duration
	cookieSecure bool
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタで、外部からAuthUsecaseとGoogleOAuthを注入します。
func NewAuthHandler(auth AuthUsecase, google GoogleOAuth, sessionTTL time.Duration, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		google:       google,
		sessionTTL:   sessionTTL,
		cookieSecure: cookieSecure,
	}
}

// ShowHome はランディングページを表示します。
func (h *AuthHandler) ShowHome(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", nil)
}

// ShowLogin はログインフォームを表示します。
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", nil)
}

// ShowRegister は登録フォームを表示します。
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", nil)
}

// Register はユーザー登録フォームを処理します。
// - 成功時はセッションを確立して/secretsへリダイレクト
// - ユーザー名重複時はログに記録し、セッションを確立せず/registerへ戻す
// - その他の失敗もすべて安全なページへのリダイレクトで応答（エラーページは返さない）
func (h *AuthHandler) Register(c *gin.Context) {
	var form dto.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("register validation failed", "error", err, "remote_addr", c.ClientIP())
		c.Redirect(http.StatusFound, "/register")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrUsernameTaken) {
			// ユーザー列挙攻撃を防止するため、重複の事実は本人にも明示しない
			slog.Warn("register failed: username taken", "username", form.Username, "remote_addr", c.ClientIP())
		} else {
			slog.Error("register failed", "error", err, "remote_addr", c.ClientIP())
		}
		c.Redirect(http.StatusFound, "/register")
		return
	}

	h.establishSession(c, user)
}

// Login はログインフォームを処理します。
// 認証失敗（ユーザー不明・パスワード不一致とも）は/loginへのリダイレクトで応答します。
func (h *AuthHandler) Login(c *gin.Context) {
	var form dto.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		c.Redirect(http.StatusFound, "/login")
		return
	}

	user, err := h.auth.Login(c.Request.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			slog.Warn("login failed", "username", form.Username, "remote_addr", c.ClientIP())
		} else {
			slog.Error("login failed", "error", err, "remote_addr", c.ClientIP())
		}
		c.Redirect(http.StatusFound, "/login")
		return
	}

	slog.Info("user login successful", "username", user.Username, "remote_addr", c.ClientIP())
	h.establishSession(c, user)
}

// Logout はセッションをサーバー側で失効させ、Cookieを破棄してホームへ戻します。
// 未認証の場合はno-opです。
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil && token != "" {
		if err := h.auth.Logout(c.Request.Context(), token); err != nil {
			slog.Error("logout failed", "error", err, "remote_addr", c.ClientIP())
		}
	}
	h.clearSessionCookie(c)
	c.Redirect(http.StatusFound, "/")
}

// GoogleLogin はGoogleの同意画面へリダイレクトします。
// CSRF対策のstateを短命のCookieに保存し、コールバックで照合します。
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := newState()
	if err != nil {
		slog.Error("failed to generate oauth state", "error", err)
		c.Redirect(http.StatusFound, "/login")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, int((10 * time.Minute).Seconds()), "/", "", h.cookieSecure, true)
	c.Redirect(http.StatusFound, h.google.AuthCodeURL(state))
}

// GoogleCallback はGoogle OAuthのコールバックを処理します。
// state照合→コード交換→プロフィール取得→find-or-create→セッション確立の
// いずれかが失敗した場合は/loginへリダイレクトします。
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	expected, err := c.Cookie(stateCookie)
	state := c.Query("state")
	// stateは使い捨て
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, "", -1, "/", "", h.cookieSecure, true)

	if err != nil || state == "" || state != expected {
		slog.Warn("oauth state mismatch", "remote_addr", c.ClientIP())
		c.Redirect(http.StatusFound, "/login")
		return
	}

	code := c.Query("code")
	if code == "" {
		slog.Warn("oauth callback without code", "remote_addr", c.ClientIP())
		c.Redirect(http.StatusFound, "/login")
		return
	}

	email, err := h.google.FetchEmail(c.Request.Context(), code)
	if err != nil {
		slog.Error("oauth exchange failed", "error", err, "remote_addr", c.ClientIP())
		c.Redirect(http.StatusFound, "/login")
		return
	}

	user, err := h.auth.ReconcileGoogle(c.Request.Context(), email)
	if err != nil {
		slog.Error("oauth reconcile failed", "error", err, "remote_addr", c.ClientIP())
		c.Redirect(http.StatusFound, "/login")
		return
	}

	slog.Info("google login successful", "username", user.Username, "remote_addr", c.ClientIP())
	h.establishSession(c, user)
}

// establishSession はセッションを作成し、署名付きトークンをCookieに設定して
// /secretsへリダイレクトします。セッション作成に失敗した場合は認証状態を
// 一切残さず/loginへ戻します。
func (h *AuthHandler) establishSession(c *gin.Context, user *entity.User) {
	token, err := h.auth.StartSession(c.Request.Context(), user, c.Request.UserAgent(), c.ClientIP())
	if err != nil {
		slog.Error("failed to start session", "error", err, "remote_addr", c.ClientIP())
		c.Redirect(http.StatusFound, "/login")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(h.sessionTTL.Seconds()), "/", "", h.cookieSecure, true)
	c.Redirect(http.StatusFound, "/secrets")
}

// clearSessionCookie はセッションCookieを破棄します。
func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", h.cookieSecure, true)
}

// newState はOAuth stateとして使う128ビットのランダムな16進文字列を生成します。
func newState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
