package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopcore/internal/models"
	"shopcore/internal/services"
)

type memUserRepo struct {
	mu    sync.Mutex
	users map[int]*models.User
	next  int
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	r := &memUserRepo{users: map[int]*models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
		if u.ID > r.next {
			r.next = u.ID
		}
	}
	return r
}

func (r *memUserRepo) Create(u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	u.ID = r.next
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetByID(id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

func (r *memUserRepo) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) GetByUsername(username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) Update(u *models.User) error { return nil }
func (r *memUserRepo) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}
func (r *memUserRepo) List(limit, offset int) ([]*models.User, error) { return nil, nil }
func (r *memUserRepo) GetCount() (int, error)                         { return len(r.users), nil }

func (r *memUserRepo) RecordEmailAttempt(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.users[userID]; u != nil {
		now := time.Now()
		u.VerificationEmailLastAttempt = &now
		u.VerificationEmailAttempts++
	}
	return nil
}

func (r *memUserRepo) MarkEmailSuccess(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.users[userID]; u != nil {
		now := time.Now()
		u.VerificationEmailLastSuccess = &now
	}
	return nil
}

func (r *memUserRepo) MarkVerified(userID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u := r.users[userID]; u != nil {
		u.IsVerified = true
	}
	return nil
}

func (r *memUserRepo) UpdateRefresh(userID int, token string, expiresAt time.Time) error {
	return nil
}
func (r *memUserRepo) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	return nil, nil
}
func (r *memUserRepo) ClearRefresh(userID int) error { return nil }
func (r *memUserRepo) GetByRefreshToken(token string) (*models.User, error) {
	return nil, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *recordingMailer) SendVerificationEmail(to, verifyURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return m.err
}

const testTokenSecret = "handler-test-secret"

func newVerifyRouter(repo *memUserRepo) (*gin.Engine, *services.TokenService, *recordingMailer) {
	gin.SetMode(gin.TestMode)

	mailer := &recordingMailer{}
	tokens := services.NewTokenService(testTokenSecret)
	verification := services.NewVerificationService(
		repo, tokens, mailer, "http://shop.local", false,
	)
	verification.SetRetryPolicy(0, time.Millisecond)
	userService := services.NewUserService(repo, services.NewAuthService())

	// no queue wired; debug mode sends inline
	h := NewVerifyHandler(userService, verification, nil, true)

	r := gin.New()
	r.POST("/api/register", h.Register)
	r.POST("/api/resend-verification", h.ResendVerification)
	r.GET("/api/verify-email/:token", h.VerifyEmail)
	return r, tokens, mailer
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpoint(t *testing.T) {
	repo := newMemUserRepo()
	router, _, mailer := newVerifyRouter(repo)

	t.Run("created", func(t *testing.T) {
		w := postJSON(router, "/api/register", gin.H{
			"username":   "alice",
			"email":      "alice@example.com",
			"password":   "supersecret",
			"first_name": "Alice",
			"last_name":  "Doe",
		})
		assert.Equal(t, http.StatusCreated, w.Code)

		user, err := repo.GetByEmail("alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.False(t, user.IsVerified)
		assert.Equal(t, 1, user.VerificationEmailAttempts)
		assert.Equal(t, []string{"alice@example.com"}, mailer.sent)
	})

	t.Run("duplicate email", func(t *testing.T) {
		w := postJSON(router, "/api/register", gin.H{
			"username":   "alice2",
			"email":      "alice@example.com",
			"password":   "supersecret",
			"first_name": "Alice",
			"last_name":  "Doe",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("short password", func(t *testing.T) {
		w := postJSON(router, "/api/register", gin.H{
			"username":   "bob",
			"email":      "bob@example.com",
			"password":   "short",
			"first_name": "Bob",
			"last_name":  "Doe",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestResendVerificationEndpoint(t *testing.T) {
	verified := &models.User{ID: 1, Username: "v", Email: "v@example.com", IsVerified: true}
	pending := &models.User{ID: 2, Username: "p", Email: "p@example.com"}
	router, _, mailer := newVerifyRouter(newMemUserRepo(verified, pending))

	t.Run("unknown email", func(t *testing.T) {
		w := postJSON(router, "/api/resend-verification", gin.H{"email": "nobody@example.com"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, mailer.sent)
	})

	t.Run("already verified", func(t *testing.T) {
		w := postJSON(router, "/api/resend-verification", gin.H{"email": "v@example.com"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, mailer.sent, "no dispatch for a verified account")
		assert.Equal(t, 0, verified.VerificationEmailAttempts)
	})

	t.Run("pending", func(t *testing.T) {
		w := postJSON(router, "/api/resend-verification", gin.H{"email": "p@example.com"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"p@example.com"}, mailer.sent)
		assert.Equal(t, 1, pending.VerificationEmailAttempts)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := postJSON(router, "/api/resend-verification", gin.H{"email": "not-an-email"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestInlineFallbackRetriesDelivery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	user := &models.User{ID: 3, Username: "w", Email: "w@example.com"}
	repo := newMemUserRepo(user)
	mailer := &recordingMailer{err: errors.New("smtp down")}
	verification := services.NewVerificationService(
		repo, services.NewTokenService(testTokenSecret), mailer, "http://shop.local", false,
	)
	verification.SetRetryPolicy(3, time.Millisecond)
	userService := services.NewUserService(repo, services.NewAuthService())
	h := NewVerifyHandler(userService, verification, nil, true)

	r := gin.New()
	r.POST("/api/resend-verification", h.ResendVerification)

	w := postJSON(r, "/api/resend-verification", gin.H{"email": "w@example.com"})
	assert.Equal(t, http.StatusOK, w.Code, "inline failures do not surface to the client")
	assert.Len(t, mailer.sent, 4, "initial attempt plus three retries")
	assert.Equal(t, 4, user.VerificationEmailAttempts)
	assert.False(t, user.IsVerified)
}

func TestVerifyEmailEndpoint(t *testing.T) {
	user := &models.User{ID: 7, Username: "u", Email: "u@example.com"}
	repo := newMemUserRepo(user)
	router, tokens, _ := newVerifyRouter(repo)

	get := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/verify-email/"+token, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("success", func(t *testing.T) {
		token, err := tokens.IssueEmailToken(7)
		require.NoError(t, err)

		w := get(token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Email verified successfully.")
		assert.True(t, user.IsVerified)

		// the same link keeps returning 200
		w = get(token)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := get("garbage")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid verification link.")
	})

	t.Run("foreign secret", func(t *testing.T) {
		other := services.NewTokenService("some-other-secret")
		token, err := other.IssueEmailToken(7)
		require.NoError(t, err)

		w := get(token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid verification link.")
	})

	t.Run("expired token", func(t *testing.T) {
		stale := &models.User{ID: 9, Username: "s", Email: "s@example.com"}
		router2, tokens2, _ := newVerifyRouter(newMemUserRepo(stale))
		tokens2.SetTTL(-time.Hour)
		token, err := tokens2.IssueEmailToken(9)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/verify-email/"+token, nil)
		w := httptest.NewRecorder()
		router2.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Verification link expired.")
		assert.False(t, stale.IsVerified)
	})
}
