// Package usecase はsecretsフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"

	"secrets_web/internal/feature/auth/domain/entity"
)

// ErrUserNotFound is returned when the secret's owner cannot be found.
var ErrUserNotFound = errors.New("user not found")

// SecretRepository はシークレット列の永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type SecretRepository interface {
	// FindByUsername は指定されたユーザー名に一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// UpdateSecret はユーザーのシークレットを単一のアトミックなUPDATEで上書きします。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	UpdateSecret(ctx context.Context, username, secret string) error
}

// secretUsecase はシークレットの参照・更新ロジックを実装します。
type secretUsecase struct {
	secrets SecretRepository
}

// NewSecretUsecase はsecretUsecaseの新しいインスタンスを生成します。
func NewSecretUsecase(secrets SecretRepository) *secretUsecase {
	return &secretUsecase{secrets: secrets}
}

// GetSecret は認証済みユーザーの現在のシークレットを返します。
// 認可ゲート通過後もキャッシュは使わず、毎回ストアを読み直します。
// 戻り値nilは「未投稿」を意味し、空文字列のシークレットとは区別されます。
func (u *secretUsecase) GetSecret(ctx context.Context, username string) (*string, error) {
	user, err := u.secrets.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load secret: %w", err)
	}
	return user.Secret, nil
}

// SubmitSecret はユーザーのシークレットを上書き保存します（追記ではなく置換）。
// 所有者が見つからない場合、ErrUserNotFoundを返します。
func (u *secretUsecase) SubmitSecret(ctx context.Context, username, secret string) error {
	if err := u.secrets.UpdateSecret(ctx, username, secret); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update secret: %w", err)
	}
	return nil
}
