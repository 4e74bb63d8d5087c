package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"secrets_web/internal/feature/auth/domain/entity"
	"secrets_web/internal/platform/password"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じユーザー名のユーザーが既に存在する場合、ErrUsernameTakenを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByUsername は指定されたユーザー名に一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// TokenCodec はセッションCookieトークンの発行・検証のインターフェースを定義します。
// 実装はplatform/sessiontokenが提供します。
type TokenCodec interface {
	// Issue はセッションIDを署名付きトークンに包んで返します。
	Issue(sessionID string, expiresAt time.Time) (string, error)
	// Parse はトークンを検証し、含まれるセッションIDを返します。
	Parse(token string) (string, error)
}

// PasswordHasher はパスワードのハッシュ化と検証を抽象化します。
// 実装はplatform/passwordが提供します。
type PasswordHasher interface {
	// Hash は平文パスワードのソルト付きハッシュを返します。
	Hash(plain string) (string, error)
	// Verify は平文がハッシュに一致するかを返します。不一致は(false, nil)、
	// ハッシュ破損などの運用エラーは(false, err)で区別されます。
	Verify(plain, hashed string) (bool, error)
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users      UserRepository
	sessions   SessionRepository
	tokens     TokenCodec
	hasher     PasswordHasher
	sessionTTL time.Duration
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, sessions SessionRepository,
	tokens TokenCodec, hasher PasswordHasher, sessionTTL time.Duration) *authUsecase {
	return &authUsecase{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		hasher:     hasher,
		sessionTTL: sessionTTL,
	}
}

// Register はハッシュ化されたパスワードで新規ユーザーを登録し、作成されたユーザーを返します。
// ユーザー名が既に使用されている場合、ErrUsernameTakenを返します。
func (u *authUsecase) Register(ctx context.Context, username, plain string) (*entity.User, error) {
	hashed, err := u.hasher.Hash(plain)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{Username: username, Password: hashed}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login はローカル認証ストラテジーを実行し、成功時に認証されたユーザーを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもハッシュ比較を実行します。
// 「ユーザー不明」と「パスワード不一致」は呼び出し元からは区別できず、
// どちらもErrInvalidCredentialsになります。ストア障害は運用エラーとして伝播します。
func (u *authUsecase) Login(ctx context.Context, username, plain string) (*entity.User, error) {
	// ユーザー名でユーザーを検索
	user, findErr := u.users.FindByUsername(ctx, username)
	if findErr != nil && !errors.Is(findErr, ErrUserNotFound) {
		// 未検出ではなくストア障害。認証失敗と混同しない
		return nil, fmt.Errorf("failed to look up user: %w", findErr)
	}

	// ユーザーが存在しない場合のタイミング攻撃緩和用ダミーハッシュ
	// ハッシュ比較が常に実行されることを保証する
	passwordHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	if findErr == nil {
		passwordHash = user.Password
	}

	// OAuth専用アカウント（センチネル）はパスワードログイン不可。
	// エラーではなく通常の認証失敗として扱う
	if passwordHash == password.Sentinel {
		return nil, ErrInvalidCredentials
	}

	ok, verifyErr := u.hasher.Verify(plain, passwordHash)
	if verifyErr != nil && findErr == nil {
		// 保存ハッシュ破損などの運用エラー。パスワード不一致とは区別する
		return nil, fmt.Errorf("failed to verify password: %w", verifyErr)
	}

	// ユーザー未検出またはパスワード不一致の場合、汎用エラーを返す
	if findErr != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ReconcileGoogle は検証済みGoogleプロフィールのメールアドレスをローカルユーザーに対応付けます。
// 存在すればそのユーザーを返し、存在しなければセンチネルパスワードで新規作成します（find-or-create）。
// 同一メールの初回ログインが同時に走った場合、Createの敗者はErrUsernameTakenを受け取り、
// 既存行を再読込してログイン全体を失敗させずに返します。
func (u *authUsecase) ReconcileGoogle(ctx context.Context, email string) (*entity.User, error) {
	user, err := u.users.FindByUsername(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	created := &entity.User{Username: email, Password: password.Sentinel}
	if createErr := u.users.Create(ctx, created); createErr != nil {
		if errors.Is(createErr, ErrUsernameTaken) {
			// 同時初回ログインのレース。勝者の行を再読込して返す
			return u.users.FindByUsername(ctx, email)
		}
		return nil, fmt.Errorf("failed to create user: %w", createErr)
	}
	return created, nil
}

// StartSession は認証済みユーザーの新しいセッションを作成し、
// Cookieに格納する署名付きトークンを返します。
// トークンにはセッションIDのみが含まれ、ユーザー情報や資格情報は含まれません。
func (u *authUsecase) StartSession(ctx context.Context, user *entity.User, userAgent, ip string) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}

	now := time.Now()
	session := &entity.Session{
		ID:        id,
		UserID:    user.ID,
		Username:  user.Username,
		UserAgent: userAgent,
		IPAddress: ip,
		CreatedAt: now,
		ExpiresAt: now.Add(u.sessionTTL),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to persist session: %w", err)
	}

	return u.tokens.Issue(session.ID, session.ExpiresAt)
}

// CurrentUser はCookieトークンをライブユーザーに解決します（デシリアライズ）。
// トークン検証→セッション照会→有効性チェック→ユーザー再照会の各段階の失敗は
// すべてErrInvalidSessionに収束し、fail-closedになります。
// ストア障害のみ運用エラーとして区別されます。
func (u *authUsecase) CurrentUser(ctx context.Context, token string) (*entity.User, error) {
	sid, err := u.tokens.Parse(token)
	if err != nil {
		return nil, ErrInvalidSession
	}

	session, err := u.sessions.FindByID(ctx, sid)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !session.IsValid() {
		return nil, ErrInvalidSession
	}

	// キャッシュではなくストアの現在の状態を参照する。
	// 削除済みユーザーを指す古いセッションはここで失効する
	user, err := u.users.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return user, nil
}

// Logout はトークンが指すセッションをサーバー側で失効させます。
// 以後、同じCookieを再送してもCurrentUserは失敗します。
// 解析できないトークンや既に消えたセッションはno-opです。
func (u *authUsecase) Logout(ctx context.Context, token string) error {
	sid, err := u.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := u.sessions.Revoke(ctx, sid); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

// newSessionID は256ビットのランダムなセッションID（64文字の16進文字列）を生成します。
func newSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
