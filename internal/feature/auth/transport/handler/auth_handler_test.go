package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secrets_web/internal/feature/auth/domain/entity"
	"secrets_web/internal/feature/auth/transport/middleware"
	"secrets_web/internal/feature/auth/usecase"
	"secrets_web/internal/web"
)

// mockAuthUsecase is a mock implementation of the AuthUsecase interface.
type mockAuthUsecase struct {
	RegisterFunc        func(ctx context.Context, username, password string) (*entity.User, error)
	LoginFunc           func(ctx context.Context, username, password string) (*entity.User, error)
	ReconcileGoogleFunc func(ctx context.Context, email string) (*entity.User, error)
	StartSessionFunc    func(ctx context.Context, user *entity.User, userAgent, ip string) (string, error)
	LogoutFunc          func(ctx context.Context, token string) error
}

func (m *mockAuthUsecase) Register(ctx context.Context, username, password string) (*entity.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, username, password)
	}
	return &entity.User{ID: 1, Username: username}, nil
}

func (m *mockAuthUsecase) Login(ctx context.Context, username, password string) (*entity.User, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, username, password)
	}
	return nil, usecase.ErrInvalidCredentials // Default: failure
}

func (m *mockAuthUsecase) ReconcileGoogle(ctx context.Context, email string) (*entity.User, error) {
	if m.ReconcileGoogleFunc != nil {
		return m.ReconcileGoogleFunc(ctx, email)
	}
	return &entity.User{ID: 1, Username: email}, nil
}

func (m *mockAuthUsecase) StartSession(ctx context.Context, user *entity.User, userAgent, ip string) (string, error) {
	if m.StartSessionFunc != nil {
		return m.StartSessionFunc(ctx, user, userAgent, ip)
	}
	return "session-token", nil
}

func (m *mockAuthUsecase) Logout(ctx context.Context, token string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, token)
	}
	return nil
}

// mockGoogleOAuth is a mock implementation of the GoogleOAuth interface.
type mockGoogleOAuth struct {
	AuthCodeURLFunc func(state string) string
	FetchEmailFunc  func(ctx context.Context, code string) (string, error)
}

func (m *mockGoogleOAuth) AuthCodeURL(state string) string {
	if m.AuthCodeURLFunc != nil {
		return m.AuthCodeURLFunc(state)
	}
	return "https://accounts.example.com/consent?state=" + state
}

func (m *mockGoogleOAuth) FetchEmail(ctx context.Context, code string) (string, error) {
	if m.FetchEmailFunc != nil {
		return m.FetchEmailFunc(ctx, code)
	}
	return "bob@x.com", nil
}

// setupRouter wires the handler under test into a fresh engine.
func setupRouter(h *AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.SetHTMLTemplate(web.Templates())
	r.GET("/", h.ShowHome)
	r.GET("/login", h.ShowLogin)
	r.GET("/register", h.ShowRegister)
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.GET("/logout", h.Logout)
	r.GET("/auth/google", h.GoogleLogin)
	r.GET("/auth/google/secrets", h.GoogleCallback)
	return r
}

func newHandler(auth AuthUsecase, google GoogleOAuth) *AuthHandler {
	return NewAuthHandler(auth, google, 24*time.Hour, false)
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// sessionCookie digs the session cookie out of a recorded response.
func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	return nil
}

func TestAuthHandler_ShowPages(t *testing.T) {
	r := setupRouter(newHandler(&mockAuthUsecase{}, &mockGoogleOAuth{}))

	for _, path := range []string{"/", "/login", "/register"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, "GET %s", path)
	}
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name         string
		form         url.Values
		registerFunc func(ctx context.Context, username, password string) (*entity.User, error)
		wantLocation string
		wantCookie   bool
	}{
		{
			name: "success: registration establishes a session",
			form: url.Values{"username": {"alice"}, "password": {"pw1"}},
			registerFunc: func(ctx context.Context, username, password string) (*entity.User, error) {
				return &entity.User{ID: 1, Username: username}, nil
			},
			wantLocation: "/secrets",
			wantCookie:   true,
		},
		{
			name: "failure: duplicate username, no session",
			form: url.Values{"username": {"alice"}, "password": {"pw1"}},
			registerFunc: func(ctx context.Context, username, password string) (*entity.User, error) {
				return nil, usecase.ErrUsernameTaken
			},
			wantLocation: "/register",
			wantCookie:   false,
		},
		{
			name:         "failure: missing password",
			form:         url.Values{"username": {"alice"}},
			registerFunc: nil, // Usecase is not called
			wantLocation: "/register",
			wantCookie:   false,
		},
		{
			name: "failure: store fault collapses to a safe redirect",
			form: url.Values{"username": {"alice"}, "password": {"pw1"}},
			registerFunc: func(ctx context.Context, username, password string) (*entity.User, error) {
				return nil, errors.New("connection refused")
			},
			wantLocation: "/register",
			wantCookie:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockAuthUsecase{RegisterFunc: tt.registerFunc}
			r := setupRouter(newHandler(mockUC, &mockGoogleOAuth{}))

			w := postForm(r, "/register", tt.form)

			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
			if tt.wantCookie {
				require.NotNil(t, sessionCookie(w), "session cookie not set")
				assert.True(t, sessionCookie(w).HttpOnly, "session cookie must be HttpOnly")
			} else {
				assert.Nil(t, sessionCookie(w), "no session may be established")
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name         string
		form         url.Values
		loginFunc    func(ctx context.Context, username, password string) (*entity.User, error)
		wantLocation string
		wantCookie   bool
	}{
		{
			name: "success: login establishes a session",
			form: url.Values{"username": {"alice"}, "password": {"pw1"}},
			loginFunc: func(ctx context.Context, username, password string) (*entity.User, error) {
				return &entity.User{ID: 1, Username: username}, nil
			},
			wantLocation: "/secrets",
			wantCookie:   true,
		},
		{
			name: "failure: bad credentials",
			form: url.Values{"username": {"alice"}, "password": {"wrong"}},
			loginFunc: func(ctx context.Context, username, password string) (*entity.User, error) {
				return nil, usecase.ErrInvalidCredentials
			},
			wantLocation: "/login",
			wantCookie:   false,
		},
		{
			name:         "failure: missing fields",
			form:         url.Values{},
			loginFunc:    nil, // Usecase is not called
			wantLocation: "/login",
			wantCookie:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUC := &mockAuthUsecase{LoginFunc: tt.loginFunc}
			r := setupRouter(newHandler(mockUC, &mockGoogleOAuth{}))

			w := postForm(r, "/login", tt.form)

			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, tt.wantLocation, w.Header().Get("Location"))
			if tt.wantCookie {
				assert.NotNil(t, sessionCookie(w), "session cookie not set")
			} else {
				assert.Nil(t, sessionCookie(w), "no session may be established")
			}
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("revokes the session and clears the cookie", func(t *testing.T) {
		var revokedToken string
		mockUC := &mockAuthUsecase{
			LogoutFunc: func(ctx context.Context, token string) error {
				revokedToken = token
				return nil
			},
		}
		r := setupRouter(newHandler(mockUC, &mockGoogleOAuth{}))

		req := httptest.NewRequest(http.MethodGet, "/logout", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "session-token"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.Equal(t, "session-token", revokedToken, "server-side revocation not performed")

		cleared := sessionCookie(w)
		require.NotNil(t, cleared, "cookie must be cleared")
		assert.Empty(t, cleared.Value)
		assert.Negative(t, cleared.MaxAge, "cookie must be expired")
	})

	t.Run("no session is a no-op redirect", func(t *testing.T) {
		called := false
		mockUC := &mockAuthUsecase{
			LogoutFunc: func(ctx context.Context, token string) error {
				called = true
				return nil
			},
		}
		r := setupRouter(newHandler(mockUC, &mockGoogleOAuth{}))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logout", nil))

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.False(t, called, "usecase must not be called without a cookie")
	})
}

func TestAuthHandler_GoogleLogin(t *testing.T) {
	r := setupRouter(newHandler(&mockAuthUsecase{}, &mockGoogleOAuth{}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/google", nil))

	assert.Equal(t, http.StatusFound, w.Code)

	location := w.Header().Get("Location")
	assert.Contains(t, location, "https://accounts.example.com/consent?state=")

	// The state in the redirect matches the state cookie
	var state *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == stateCookie {
			state = c
		}
	}
	require.NotNil(t, state, "state cookie not set")
	assert.True(t, state.HttpOnly)
	assert.Contains(t, location, "state="+state.Value)
}

func TestAuthHandler_GoogleCallback(t *testing.T) {
	t.Run("success: reconciled user gets a session", func(t *testing.T) {
		var reconciled string
		mockUC := &mockAuthUsecase{
			ReconcileGoogleFunc: func(ctx context.Context, email string) (*entity.User, error) {
				reconciled = email
				return &entity.User{ID: 1, Username: email}, nil
			},
		}
		r := setupRouter(newHandler(mockUC, &mockGoogleOAuth{}))

		req := httptest.NewRequest(http.MethodGet, "/auth/google/secrets?state=abc&code=xyz", nil)
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: "abc"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/secrets", w.Header().Get("Location"))
		assert.Equal(t, "bob@x.com", reconciled)
		assert.NotNil(t, sessionCookie(w), "session cookie not set")
	})

	t.Run("failure: state mismatch", func(t *testing.T) {
		r := setupRouter(newHandler(&mockAuthUsecase{}, &mockGoogleOAuth{}))

		req := httptest.NewRequest(http.MethodGet, "/auth/google/secrets?state=evil&code=xyz", nil)
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: "abc"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.Nil(t, sessionCookie(w))
	})

	t.Run("failure: exchange error", func(t *testing.T) {
		google := &mockGoogleOAuth{
			FetchEmailFunc: func(ctx context.Context, code string) (string, error) {
				return "", errors.New("exchange failed")
			},
		}
		r := setupRouter(newHandler(&mockAuthUsecase{}, google))

		req := httptest.NewRequest(http.MethodGet, "/auth/google/secrets?state=abc&code=xyz", nil)
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: "abc"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("failure: reconcile error", func(t *testing.T) {
		mockUC := &mockAuthUsecase{
			ReconcileGoogleFunc: func(ctx context.Context, email string) (*entity.User, error) {
				return nil, errors.New("connection refused")
			},
		}
		r := setupRouter(newHandler(mockUC, &mockGoogleOAuth{}))

		req := httptest.NewRequest(http.MethodGet, "/auth/google/secrets?state=abc&code=xyz", nil)
		req.AddCookie(&http.Cookie{Name: stateCookie, Value: "abc"})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
		assert.Nil(t, sessionCookie(w))
	})
}
