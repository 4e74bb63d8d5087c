// Package handler はsecretsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"secrets_web/internal/feature/auth/transport/middleware"
	"secrets_web/internal/feature/secrets/transport/http/dto"
	"secrets_web/internal/feature/secrets/usecase"
)

// noSecretPlaceholder は未投稿ユーザーのビューに表示する文言です。
const noSecretPlaceholder = "No secrets published by you"

// SecretUsecase はシークレット操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type SecretUsecase interface {
	// GetSecret はユーザーの現在のシークレットを返します。nilは未投稿を意味します。
	GetSecret(ctx context.Context, username string) (*string, error)
	// SubmitSecret はユーザーのシークレットを上書き保存します。
	SubmitSecret(ctx context.Context, username, secret string) error
}

// SecretHandler はシークレットの閲覧・投稿リクエストを処理します。
// すべてのルートは認可ゲート（middleware.RequireLogin）の内側に配置されます。
type SecretHandler struct {
	secrets SecretUsecase
}

// NewSecretHandler はSecretHandlerの新しいインスタンスを生成します。
func NewSecretHandler(secrets SecretUsecase) *SecretHandler {
	return &SecretHandler{secrets: secrets}
}

// ShowSecrets は認証済みユーザーのシークレットを表示します。
// 身元はゲートが確立済みですが、シークレット自体は毎回ストアから読み直します。
func (h *SecretHandler) ShowSecrets(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	secret, err := h.secrets.GetSecret(c.Request.Context(), user.Username)
	if err != nil {
		slog.Error("failed to load secret", "error", err, "username", user.Username)
		c.Redirect(http.StatusFound, "/")
		return
	}

	text := noSecretPlaceholder
	if secret != nil {
		text = *secret
	}
	c.HTML(http.StatusOK, "secrets.html", gin.H{"secret": text})
}

// ShowSubmit はシークレット投稿フォームを表示します。
func (h *SecretHandler) ShowSubmit(c *gin.Context) {
	c.HTML(http.StatusOK, "submit.html", nil)
}

// Submit はシークレット投稿フォームを処理します。
// - 成功時は/secretsへリダイレクト
// - 更新失敗時（対象ユーザー消失やストア障害）はホームへリダイレクト
func (h *SecretHandler) Submit(c *gin.Context) {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	var form dto.SecretForm
	if err := c.ShouldBind(&form); err != nil {
		slog.Warn("submit validation failed", "error", err, "username", user.Username)
		c.Redirect(http.StatusFound, "/")
		return
	}

	if err := h.secrets.SubmitSecret(c.Request.Context(), user.Username, form.Secret); err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			slog.Warn("submit failed: user vanished", "username", user.Username)
		} else {
			slog.Error("submit failed", "error", err, "username", user.Username)
		}
		c.Redirect(http.StatusFound, "/")
		return
	}

	c.Redirect(http.StatusFound, "/secrets")
}
