package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopcore/internal/models"
)

// fakeUserRepo is an in-memory UserRepository covering what the verification
// flow touches.
type fakeUserRepo struct {
	users map[int]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[int]*models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(u *models.User) error {
	u.ID = len(r.users) + 1
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(id int) (*models.User, error) { return r.users[id], nil }

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetByUsername(username string) (*models.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(u *models.User) error { return nil }
func (r *fakeUserRepo) Delete(id int) error         { delete(r.users, id); return nil }

func (r *fakeUserRepo) List(limit, offset int) ([]*models.User, error) { return nil, nil }
func (r *fakeUserRepo) GetCount() (int, error)                         { return len(r.users), nil }

func (r *fakeUserRepo) RecordEmailAttempt(userID int) error {
	u := r.users[userID]
	if u != nil {
		now := time.Now()
		u.VerificationEmailLastAttempt = &now
		u.VerificationEmailAttempts++
	}
	return nil
}

func (r *fakeUserRepo) MarkEmailSuccess(userID int) error {
	if u := r.users[userID]; u != nil {
		now := time.Now()
		u.VerificationEmailLastSuccess = &now
	}
	return nil
}

func (r *fakeUserRepo) MarkVerified(userID int) error {
	if u := r.users[userID]; u != nil {
		u.IsVerified = true
	}
	return nil
}

func (r *fakeUserRepo) UpdateRefresh(userID int, token string, expiresAt time.Time) error {
	if u := r.users[userID]; u != nil {
		u.RefreshToken = &token
		u.RefreshExpiresAt = &expiresAt
		u.RefreshRevoked = false
	}
	return nil
}

func (r *fakeUserRepo) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == oldToken {
			u.RefreshToken = &newToken
			u.RefreshExpiresAt = &newExpiresAt
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ClearRefresh(userID int) error {
	if u := r.users[userID]; u != nil {
		u.RefreshToken = nil
		u.RefreshExpiresAt = nil
		u.RefreshRevoked = true
	}
	return nil
}

func (r *fakeUserRepo) GetByRefreshToken(token string) (*models.User, error) {
	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			return u, nil
		}
	}
	return nil, nil
}

// fakeMailer fails the first failures sends, then succeeds.
type fakeMailer struct {
	failures int
	sent     []string
}

func (m *fakeMailer) SendVerificationEmail(to, verifyURL string) error {
	if m.failures > 0 {
		m.failures--
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, verifyURL)
	return nil
}

func newVerificationFixture(silentFail bool, mailer *fakeMailer, users ...*models.User) (*VerificationService, *fakeUserRepo) {
	repo := newFakeUserRepo(users...)
	svc := NewVerificationService(repo, NewTokenService("test-secret"), mailer, "http://shop.local", silentFail)
	svc.SetRetryPolicy(3, time.Millisecond)
	return svc, repo
}

func TestDeliverSendsAndRecords(t *testing.T) {
	user := &models.User{ID: 1, Email: "a@b.c"}
	mailer := &fakeMailer{}
	svc, _ := newVerificationFixture(false, mailer, user)

	require.NoError(t, svc.Deliver(1))

	assert.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0], "http://shop.local/api/verify-email/")
	assert.Equal(t, 1, user.VerificationEmailAttempts)
	assert.NotNil(t, user.VerificationEmailLastAttempt)
	assert.NotNil(t, user.VerificationEmailLastSuccess)
}

func TestDeliverIncrementsOncePerCall(t *testing.T) {
	user := &models.User{ID: 1, Email: "a@b.c"}
	svc, _ := newVerificationFixture(false, &fakeMailer{}, user)

	for i := 0; i < 4; i++ {
		require.NoError(t, svc.Deliver(1))
	}
	assert.Equal(t, 4, user.VerificationEmailAttempts)
}

func TestDeliverMissingUserIsNoop(t *testing.T) {
	mailer := &fakeMailer{}
	svc, _ := newVerificationFixture(false, mailer)

	require.NoError(t, svc.Deliver(99))
	assert.Empty(t, mailer.sent)
}

func TestDeliverFailureRecordsAttempt(t *testing.T) {
	user := &models.User{ID: 1, Email: "a@b.c"}
	svc, _ := newVerificationFixture(false, &fakeMailer{failures: 100}, user)

	err := svc.Deliver(1)
	assert.ErrorIs(t, err, ErrTransportFailure)
	assert.Equal(t, 1, user.VerificationEmailAttempts)
	assert.Nil(t, user.VerificationEmailLastSuccess)
}

func TestDeliverWithRetryEventuallySucceeds(t *testing.T) {
	user := &models.User{ID: 1, Email: "a@b.c"}
	mailer := &fakeMailer{failures: 2}
	svc, _ := newVerificationFixture(false, mailer, user)

	require.NoError(t, svc.DeliverWithRetry(1))

	// two failed attempts plus the delivered one
	assert.Equal(t, 3, user.VerificationEmailAttempts)
	assert.Len(t, mailer.sent, 1)
}

func TestDeliverWithRetryExhaustedLoud(t *testing.T) {
	user := &models.User{ID: 1, Email: "a@b.c"}
	svc, _ := newVerificationFixture(false, &fakeMailer{failures: 100}, user)

	err := svc.DeliverWithRetry(1)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	// initial attempt plus three retries
	assert.Equal(t, 4, user.VerificationEmailAttempts)
}

func TestDeliverWithRetryExhaustedSilent(t *testing.T) {
	user := &models.User{ID: 1, Email: "a@b.c"}
	svc, _ := newVerificationFixture(true, &fakeMailer{failures: 100}, user)

	assert.NoError(t, svc.DeliverWithRetry(1))
	assert.Equal(t, 4, user.VerificationEmailAttempts)
}

func TestConfirmMarksVerified(t *testing.T) {
	user := &models.User{ID: 5, Email: "a@b.c"}
	svc, _ := newVerificationFixture(false, &fakeMailer{}, user)

	token, err := svc.tokens.IssueEmailToken(5)
	require.NoError(t, err)

	require.NoError(t, svc.Confirm(token))
	assert.True(t, user.IsVerified)

	// second confirmation with the same link is a no-op
	require.NoError(t, svc.Confirm(token))
	assert.True(t, user.IsVerified)
}

func TestConfirmRejectsBadTokens(t *testing.T) {
	user := &models.User{ID: 5, Email: "a@b.c"}
	svc, _ := newVerificationFixture(false, &fakeMailer{}, user)

	assert.ErrorIs(t, svc.Confirm("garbage"), ErrTokenInvalid)

	// token for an account that no longer exists
	token, err := svc.tokens.IssueEmailToken(404)
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Confirm(token), ErrTokenInvalid)
	assert.False(t, user.IsVerified)
}

func TestConfirmExpiredToken(t *testing.T) {
	user := &models.User{ID: 5, Email: "a@b.c"}
	svc, _ := newVerificationFixture(false, &fakeMailer{}, user)

	expired := NewTokenService("test-secret")
	expired.ttl = -time.Hour
	token, err := expired.IssueEmailToken(5)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Confirm(token), ErrTokenExpired)
	assert.False(t, user.IsVerified)
}
