package otp

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/example/bloom/internal/models"
)

// GormStore persists OTP records in the main database.
type GormStore struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGormStore wraps the database with a bounded per-call timeout.
func NewGormStore(db *gorm.DB, timeout time.Duration) *GormStore {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &GormStore{db: db, timeout: timeout}
}

func (s *GormStore) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.timeout)
}

// Live returns the newest unverified, unexpired record for an identifier.
func (s *GormStore) Live(parent context.Context, identifier string) (*models.OTPRecord, error) {
	ctx, cancel := s.ctx(parent)
	defer cancel()

	var rec models.OTPRecord
	err := s.db.WithContext(ctx).
		Where("identifier = ? AND verified = ? AND expires_at > ?", identifier, false, time.Now()).
		Order("created_at desc").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteFor removes every record for the identifier, superseding old codes.
func (s *GormStore) DeleteFor(parent context.Context, identifier string) error {
	ctx, cancel := s.ctx(parent)
	defer cancel()

	return s.db.WithContext(ctx).
		Where("identifier = ?", identifier).
		Delete(&models.OTPRecord{}).Error
}

func (s *GormStore) Create(parent context.Context, rec *models.OTPRecord) error {
	ctx, cancel := s.ctx(parent)
	defer cancel()

	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *GormStore) Delete(parent context.Context, rec *models.OTPRecord) error {
	ctx, cancel := s.ctx(parent)
	defer cancel()

	return s.db.WithContext(ctx).Delete(&models.OTPRecord{}, "id = ?", rec.ID).Error
}

// BumpAttempts performs a compare-and-swap increment so two concurrent
// verifies cannot both observe the same attempt count.
func (s *GormStore) BumpAttempts(parent context.Context, rec *models.OTPRecord, from int) (bool, error) {
	ctx, cancel := s.ctx(parent)
	defer cancel()

	result := s.db.WithContext(ctx).
		Model(&models.OTPRecord{}).
		Where("id = ? AND attempts = ?", rec.ID, from).
		Update("attempts", from+1)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// SweepExpired drops records past their TTL.
func (s *GormStore) SweepExpired(parent context.Context) error {
	ctx, cancel := s.ctx(parent)
	defer cancel()

	return s.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&models.OTPRecord{}).Error
}
