// Package otp implements the one-time-password lifecycle: issue a short-lived
// code for an email or phone identifier, then verify it under an attempt limit.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/bloom/internal/models"
	"github.com/example/bloom/internal/notify"
)

const (
	KindEmail = "email"
	KindPhone = "phone"

	// TTL is how long an issued code stays valid.
	TTL = 10 * time.Minute

	// ResendInterval is the minimum gap between issues for one identifier.
	ResendInterval = 60 * time.Second

	// MaxAttempts is how many wrong codes are tolerated before the record is
	// invalidated.
	MaxAttempts = 3
)

var (
	// ErrNotFound covers never-requested, expired, and already-used codes; the
	// caller cannot distinguish them.
	ErrNotFound = errors.New("verification code not found or expired")

	ErrTooSoon           = errors.New("a code was sent recently, try again later")
	ErrAttemptsExceeded  = errors.New("too many wrong attempts, request a new code")
	ErrInvalidIdentifier = errors.New("identifier is not a valid email or phone number")

	// ErrConflict signals a concurrent verify raced this one; safe to retry.
	ErrConflict = errors.New("verification in progress, retry")
)

// MismatchError reports a wrong code along with the attempts remaining.
type MismatchError struct {
	Remaining int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("incorrect code, %d attempts remaining", e.Remaining)
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
)

// ClassifyIdentifier decides whether an identifier is an email or a phone.
func ClassifyIdentifier(identifier string) (string, error) {
	switch {
	case emailPattern.MatchString(identifier):
		return KindEmail, nil
	case phonePattern.MatchString(identifier):
		return KindPhone, nil
	default:
		return "", ErrInvalidIdentifier
	}
}

// Store is the persistence surface the service needs.
type Store interface {
	// Live returns the newest unverified, unexpired record for the identifier.
	Live(ctx context.Context, identifier string) (*models.OTPRecord, error)
	// DeleteFor removes every record for the identifier.
	DeleteFor(ctx context.Context, identifier string) error
	Create(ctx context.Context, rec *models.OTPRecord) error
	Delete(ctx context.Context, rec *models.OTPRecord) error
	// BumpAttempts increments attempts only when the stored value still equals
	// from, reporting whether the conditional update won.
	BumpAttempts(ctx context.Context, rec *models.OTPRecord, from int) (bool, error)
	// SweepExpired removes stale records past their TTL.
	SweepExpired(ctx context.Context) error
}

// Enqueuer is the slice of the notification outbox the service uses.
type Enqueuer interface {
	Enqueue(msg notify.Message) bool
}

// Service drives the OTP lifecycle.
type Service struct {
	store   Store
	outbox  Enqueuer
	limiter *notify.SendLimiter
	now     func() time.Time
}

// NewService constructs a Service. The limiter may be nil to disable the
// daily cap (the per-identifier resend interval is always enforced).
func NewService(store Store, outbox Enqueuer, limiter *notify.SendLimiter) *Service {
	return &Service{
		store:   store,
		outbox:  outbox,
		limiter: limiter,
		now:     time.Now,
	}
}

// WithClock overrides the service clock for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Issue generates and stores a fresh code for the identifier, superseding any
// earlier live record, and queues delivery. It returns the identifier kind.
//
// Delivery is fire-and-forget: a failure to queue keeps the stored record and
// logs the code so operators can relay it out of band during development.
func (s *Service) Issue(ctx context.Context, identifier string) (string, error) {
	kind, err := ClassifyIdentifier(identifier)
	if err != nil {
		return "", err
	}

	live, err := s.store.Live(ctx, identifier)
	if err != nil {
		return "", err
	}
	if live != nil && s.now().Sub(live.CreatedAt) < ResendInterval {
		return "", ErrTooSoon
	}

	if s.limiter != nil {
		if err := s.limiter.Allow(identifier); err != nil {
			return "", ErrTooSoon
		}
	}

	if err := s.store.SweepExpired(ctx); err != nil {
		logrus.WithError(err).Warn("otp sweep failed")
	}

	if err := s.store.DeleteFor(ctx, identifier); err != nil {
		return "", err
	}

	code, err := generateCode()
	if err != nil {
		return "", err
	}

	rec := &models.OTPRecord{
		Identifier: identifier,
		Code:       code,
		Kind:       kind,
		Attempts:   0,
		ExpiresAt:  s.now().Add(TTL),
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return "", err
	}

	if !s.outbox.Enqueue(notify.OTPMessage(identifier, code, kind)) {
		logrus.WithFields(logrus.Fields{
			"identifier": identifier,
			"code":       code,
		}).Warn("otp delivery not queued, code logged for manual relay")
	}

	return kind, nil
}

// Verify checks a submitted code against the live record for the identifier.
// A match consumes the record; the fourth wrong attempt invalidates it.
func (s *Service) Verify(ctx context.Context, identifier, submitted string) error {
	rec, err := s.store.Live(ctx, identifier)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrNotFound
	}

	won, err := s.store.BumpAttempts(ctx, rec, rec.Attempts)
	if err != nil {
		return err
	}
	if !won {
		return ErrConflict
	}

	attempts := rec.Attempts + 1
	if attempts > MaxAttempts {
		if err := s.store.Delete(ctx, rec); err != nil {
			return err
		}
		return ErrAttemptsExceeded
	}

	if rec.Code != submitted {
		return &MismatchError{Remaining: MaxAttempts + 1 - attempts}
	}

	return s.store.Delete(ctx, rec)
}

// generateCode draws a uniform 6-digit code from crypto/rand.
func generateCode() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
