package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"shopcore/internal/repositories"
)

var (
	// ErrTransportFailure marks a send that may succeed on retry.
	ErrTransportFailure = errors.New("email transport failure")
	// ErrRetriesExhausted is returned after the retry budget is spent and
	// the deployment is not in silent-fail mode.
	ErrRetriesExhausted = errors.New("verification email retries exhausted")
)

const (
	deliveryMaxRetries = 3
	deliveryBackoff    = 60 * time.Second
)

// Dispatcher is the enqueue side of the job queue, satisfied by
// queue.Producer.
type Dispatcher interface {
	DispatchVerificationEmail(userID int) error
	DispatchOrderConfirmation(orderID string) error
}

// VerificationService owns the verification-email lifecycle: issuing signed
// links, delivering them with attempt bookkeeping, and confirming tokens.
type VerificationService struct {
	repo       repositories.UserRepository
	tokens     *TokenService
	mailer     VerificationMailer
	siteURL    string
	silentFail bool

	maxRetries int
	backoff    time.Duration
}

func NewVerificationService(
	repo repositories.UserRepository,
	tokens *TokenService,
	mailer VerificationMailer,
	siteURL string,
	silentFail bool,
) *VerificationService {
	return &VerificationService{
		repo:       repo,
		tokens:     tokens,
		mailer:     mailer,
		siteURL:    siteURL,
		silentFail: silentFail,
		maxRetries: deliveryMaxRetries,
		backoff:    deliveryBackoff,
	}
}

// Deliver performs a single delivery attempt:
//
//  1. missing account is a silent no-op
//  2. the attempt is recorded before sending, unconditionally
//  3. a fresh token and link are issued and sent
//  4. last-success is stamped only when the transport accepted the message
//
// Safe to call any number of times; every call bumps the attempt counter by
// exactly one.
func (s *VerificationService) Deliver(userID int) error {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		return fmt.Errorf("verification deliver lookup: %w", err)
	}
	if user == nil {
		log.Printf("[verify][deliver] user %d gone, skipping", userID)
		return nil
	}

	if err := s.repo.RecordEmailAttempt(user.ID); err != nil {
		return fmt.Errorf("verification attempt bookkeeping: %w", err)
	}

	token, err := s.tokens.IssueEmailToken(user.ID)
	if err != nil {
		return fmt.Errorf("%w: token issue: %v", ErrTransportFailure, err)
	}
	verifyURL := fmt.Sprintf("%s/api/verify-email/%s/", s.siteURL, token)

	if err := s.mailer.SendVerificationEmail(user.Email, verifyURL); err != nil {
		log.Printf("[verify][deliver] send failed user=%d: %v", user.ID, err)
		return fmt.Errorf("%w: %v", ErrTransportFailure, err)
	}

	if err := s.repo.MarkEmailSuccess(user.ID); err != nil {
		// The mail went out; losing the success stamp is not worth a retry
		// that would send a duplicate.
		log.Printf("[verify][deliver] success bookkeeping failed user=%d: %v", user.ID, err)
	}
	log.Printf("[verify][deliver] sent user=%d to=%s", user.ID, user.Email)
	return nil
}

// DeliverWithRetry applies the delivery policy: transport failures are
// retried up to 3 times with a fixed delay, then either swallowed (silent
// mode, the debug default) or escalated as ErrRetriesExhausted.
func (s *VerificationService) DeliverWithRetry(userID int) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = s.Deliver(userID)
		if err == nil || !errors.Is(err, ErrTransportFailure) {
			return err
		}
		if attempt >= s.maxRetries {
			break
		}
		log.Printf("[verify][retry] user=%d attempt=%d, retrying in %s", userID, attempt+1, s.backoff)
		time.Sleep(s.backoff)
	}

	if s.silentFail {
		log.Printf("[verify][retry] user=%d giving up silently: %v", userID, err)
		return nil
	}
	return fmt.Errorf("%w: user=%d: %v", ErrRetriesExhausted, userID, err)
}

// Confirm consumes a verification token. Already-verified accounts confirm
// idempotently; the flag never moves backwards.
func (s *VerificationService) Confirm(token string) error {
	userID, err := s.tokens.VerifyEmailToken(token)
	if err != nil {
		return err
	}

	user, err := s.repo.GetByID(userID)
	if err != nil {
		return fmt.Errorf("verification confirm lookup: %w", err)
	}
	if user == nil {
		return ErrTokenInvalid
	}
	if user.IsVerified {
		return nil
	}
	if err := s.repo.MarkVerified(user.ID); err != nil {
		return fmt.Errorf("verification confirm: %w", err)
	}
	log.Printf("[verify][confirm] user=%d verified", user.ID)
	return nil
}

// SetRetryPolicy overrides the retry budget and backoff, used by tests and
// by the synchronous debug fallback where a 3-minute request is unhelpful.
func (s *VerificationService) SetRetryPolicy(maxRetries int, backoff time.Duration) {
	s.maxRetries = maxRetries
	s.backoff = backoff
}
