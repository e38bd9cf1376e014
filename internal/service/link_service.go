package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"linkpay/internal/cache"
	"linkpay/internal/errors"
	"linkpay/internal/model"
	"linkpay/internal/repository"
)

const (
	// recentLinksLimit bounds the landing page listing.
	recentLinksLimit = 10
	// defaultClientName fills in when the seller leaves the field blank.
	defaultClientName = "Client"
	// tokenInsertAttempts bounds the regenerate-on-collision loop.
	tokenInsertAttempts = 3
)

// CreateLinkInput carries the raw form values for a new payment link.
// Amounts arrive as strings and are validated here.
type CreateLinkInput struct {
	ProductName    string
	Price          string
	DeliveryCost   string
	ClientName     string
	DeliveryMethod string
}

// EditLinkInput carries the editable subset of a payment link. Delivery
// cost and the paid fields are deliberately absent.
type EditLinkInput struct {
	ProductName    string
	Price          string
	ClientName     string
	DeliveryMethod string
}

// LinkStatus is the read-only projection served by the status API.
type LinkStatus struct {
	Status         string          `json:"status"`
	PaymentID      *string         `json:"payment_id"`
	ProductName    string          `json:"product_name"`
	Amount         decimal.Decimal `json:"amount"`
	DeliveryMethod string          `json:"delivery_method"`
}

// LinkService handles the payment link lifecycle: creation, rendering,
// edit, delete, status lookup and expiry sweeping.
type LinkService interface {
	CreateLink(ctx context.Context, input CreateLinkInput) (*model.PaymentLink, error)
	GetLink(ctx context.Context, uniqueID string) (*model.PaymentLink, error)
	GetPaymentPage(ctx context.Context, uniqueID string, now time.Time) (*model.PaymentLink, error)
	EditLink(ctx context.Context, uniqueID string, input EditLinkInput) (*model.PaymentLink, error)
	DeleteLink(ctx context.Context, uniqueID string) error
	GetStatus(ctx context.Context, uniqueID string) (*LinkStatus, error)
	ListRecent(ctx context.Context) ([]model.PaymentLink, error)
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
	PaymentURL(uniqueID string) string
	SuccessURL(uniqueID string) string
}

type linkService struct {
	repo    repository.LinkRepository
	cache   *cache.Client
	baseURL string
}

// NewLinkService creates a new link lifecycle service. baseURL is the
// public origin embedded in shareable payment URLs.
func NewLinkService(repo repository.LinkRepository, cacheClient *cache.Client, baseURL string) LinkService {
	return &linkService{
		repo:    repo,
		cache:   cacheClient,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// CreateLink validates the amounts, generates a unique token and
// persists the new link. Duplicate tokens are regenerated in a bounded
// loop instead of assuming the token space is collision-free.
func (s *linkService) CreateLink(ctx context.Context, input CreateLinkInput) (*model.PaymentLink, error) {
	price, err := parseAmount(input.Price)
	if err != nil {
		return nil, err
	}
	deliveryCost := decimal.Zero
	if strings.TrimSpace(input.DeliveryCost) != "" {
		if deliveryCost, err = parseAmount(input.DeliveryCost); err != nil {
			return nil, err
		}
	}
	clientName := strings.TrimSpace(input.ClientName)
	if clientName == "" {
		clientName = defaultClientName
	}

	for attempt := 0; attempt < tokenInsertAttempts; attempt++ {
		token, err := NewToken()
		if err != nil {
			return nil, err
		}
		link := &model.PaymentLink{
			ProductName:    strings.TrimSpace(input.ProductName),
			Price:          price,
			DeliveryCost:   deliveryCost,
			ClientName:     clientName,
			DeliveryMethod: strings.TrimSpace(input.DeliveryMethod),
			UniqueID:       token,
		}
		err = s.repo.Create(ctx, link)
		if err == nil {
			return link, nil
		}
		if !isDuplicateKey(err) {
			return nil, fmt.Errorf("create link: %w", err)
		}
	}
	return nil, fmt.Errorf("create link: token collisions exhausted %d attempts", tokenInsertAttempts)
}

// GetLink resolves a link by token, mapping a missing row to ErrLinkNotFound.
func (s *linkService) GetLink(ctx context.Context, uniqueID string) (*model.PaymentLink, error) {
	link, err := s.repo.FindByUniqueID(ctx, uniqueID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrLinkNotFound
		}
		return nil, err
	}
	return link, nil
}

// GetPaymentPage resolves a link for rendering. An unpaid link past its
// lifetime comes back with ErrLinkExpired; the caller decides whether a
// paid link redirects to the success view.
func (s *linkService) GetPaymentPage(ctx context.Context, uniqueID string, now time.Time) (*model.PaymentLink, error) {
	link, err := s.GetLink(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	if !link.IsPaid && link.Expired(now) {
		return link, errors.ErrLinkExpired
	}
	return link, nil
}

// EditLink overwrites the four editable fields. UniqueID, CreatedAt,
// DeliveryCost and the paid fields stay untouched.
func (s *linkService) EditLink(ctx context.Context, uniqueID string, input EditLinkInput) (*model.PaymentLink, error) {
	link, err := s.GetLink(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	price, err := parseAmount(input.Price)
	if err != nil {
		return nil, err
	}
	link.ProductName = strings.TrimSpace(input.ProductName)
	link.Price = price
	link.ClientName = strings.TrimSpace(input.ClientName)
	link.DeliveryMethod = strings.TrimSpace(input.DeliveryMethod)
	if err := s.repo.Save(ctx, link); err != nil {
		return nil, fmt.Errorf("edit link: %w", err)
	}
	_ = s.cache.Delete(ctx, cache.StatusKey(uniqueID))
	return link, nil
}

// DeleteLink removes a link and its cached status.
func (s *linkService) DeleteLink(ctx context.Context, uniqueID string) error {
	link, err := s.GetLink(ctx, uniqueID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, link); err != nil {
		return fmt.Errorf("delete link: %w", err)
	}
	_ = s.cache.Delete(ctx, cache.StatusKey(uniqueID))
	return nil
}

// GetStatus returns the status projection, served from cache for paid
// links since paid is a terminal state.
func (s *linkService) GetStatus(ctx context.Context, uniqueID string) (*LinkStatus, error) {
	if cached, _ := s.cache.Get(ctx, cache.StatusKey(uniqueID)); cached != nil {
		var status LinkStatus
		if err := json.Unmarshal(cached, &status); err == nil {
			return &status, nil
		}
	}

	link, err := s.GetLink(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	status := &LinkStatus{
		Status:         "pending",
		PaymentID:      link.PaymentID,
		ProductName:    link.ProductName,
		Amount:         link.Price,
		DeliveryMethod: link.DeliveryMethod,
	}
	if link.IsPaid {
		status.Status = "success"
		if payload, err := json.Marshal(status); err == nil {
			_ = s.cache.Set(ctx, cache.StatusKey(uniqueID), payload, cache.StatusTTL)
		}
	}
	return status, nil
}

// ListRecent returns the links shown on the landing page, newest first.
func (s *linkService) ListRecent(ctx context.Context) ([]model.PaymentLink, error) {
	return s.repo.ListRecent(ctx, recentLinksLimit)
}

// SweepExpired deletes every link older than the link lifetime and
// returns the count removed. Deletion is idempotent, so concurrent
// sweeps need no coordination.
func (s *linkService) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.DeleteCreatedBefore(ctx, now.Add(-model.LinkLifetime))
}

// PaymentURL builds the fully-qualified shareable URL for a token.
func (s *linkService) PaymentURL(uniqueID string) string {
	return s.baseURL + "/payment/" + uniqueID
}

// SuccessURL builds the fully-qualified confirmation URL for a token.
func (s *linkService) SuccessURL(uniqueID string) string {
	return s.baseURL + "/payment/success/" + uniqueID
}

func parseAmount(raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, errors.ErrInvalidAmount
	}
	return value, nil
}

func isDuplicateKey(err error) bool {
	return err == gorm.ErrDuplicatedKey ||
		(err != nil && strings.Contains(err.Error(), "Duplicate entry"))
}
