package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"linkpay/internal/model"
)

// LinkRepository defines payment link persistence operations.
type LinkRepository interface {
	Create(ctx context.Context, link *model.PaymentLink) error
	Save(ctx context.Context, link *model.PaymentLink) error
	FindByUniqueID(ctx context.Context, uniqueID string) (*model.PaymentLink, error)
	ListRecent(ctx context.Context, limit int) ([]model.PaymentLink, error)
	Delete(ctx context.Context, link *model.PaymentLink) error
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	MarkPaid(ctx context.Context, uniqueID, paymentID string, paidAt time.Time) (int64, error)
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository creates a new payment link repository.
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

// Create inserts a new payment link record.
func (r *linkRepository) Create(ctx context.Context, link *model.PaymentLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// Save persists all fields of an existing payment link record.
func (r *linkRepository) Save(ctx context.Context, link *model.PaymentLink) error {
	return r.db.WithContext(ctx).Save(link).Error
}

// FindByUniqueID finds a payment link by its external token.
func (r *linkRepository) FindByUniqueID(ctx context.Context, uniqueID string) (*model.PaymentLink, error) {
	var link model.PaymentLink
	if err := r.db.WithContext(ctx).Where("unique_id = ?", uniqueID).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// ListRecent returns the most recently created links, newest first.
func (r *linkRepository) ListRecent(ctx context.Context, limit int) ([]model.PaymentLink, error) {
	var links []model.PaymentLink
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// Delete removes a payment link record.
func (r *linkRepository) Delete(ctx context.Context, link *model.PaymentLink) error {
	return r.db.WithContext(ctx).Delete(link).Error
}

// DeleteCreatedBefore removes every link created before the cutoff and
// returns the number of rows removed.
func (r *linkRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.PaymentLink{})
	return res.RowsAffected, res.Error
}

// MarkPaid transitions an unpaid link to paid, recording the provider
// order id and the paid timestamp. The is_paid predicate makes the
// transition monotonic: a second call affects zero rows.
func (r *linkRepository) MarkPaid(ctx context.Context, uniqueID, paymentID string, paidAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.PaymentLink{}).
		Where("unique_id = ? AND is_paid = ?", uniqueID, false).
		Updates(map[string]interface{}{
			"is_paid":    true,
			"payment_id": paymentID,
			"paid_at":    paidAt,
		})
	return res.RowsAffected, res.Error
}
