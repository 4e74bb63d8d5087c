// Package adapters はsecretsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"secrets_web/internal/feature/auth/domain/entity"
	"secrets_web/internal/feature/secrets/usecase"
)

// secretPostgres はSecretRepositoryインターフェースのPostgreSQL実装です。
// usersテーブルのsecret列に対する読み書きのみを行います。
type secretPostgres struct {
	db *gorm.DB
}

// secretPostgresがSecretRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.SecretRepository = (*secretPostgres)(nil)

// NewSecretPostgres は指定されたgorm.DB接続でsecretPostgresの新しいインスタンスを生成します。
func NewSecretPostgres(db *gorm.DB) *secretPostgres {
	return &secretPostgres{db: db}
}

// FindByUsername はユーザー名でユーザーを取得します。
// ユーザーが存在しない場合、usecase.ErrUserNotFoundを返します。
func (r *secretPostgres) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	var u entity.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

// UpdateSecret はユーザーのシークレットを単一のUPDATE文で上書きします。
// 対象行が存在しない場合（レースで消えた場合も含む）、usecase.ErrUserNotFoundを返します。
func (r *secretPostgres) UpdateSecret(ctx context.Context, username, secret string) error {
	result := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("username = ?", username).
		Update("secret", secret)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}
