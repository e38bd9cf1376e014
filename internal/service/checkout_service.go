package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"
	"time"

	"linkpay/internal/cache"
	"linkpay/internal/errors"
	"linkpay/internal/paypal"
	"linkpay/internal/repository"
)

// CaptureOutcome reports a successful (or replayed) capture.
type CaptureOutcome struct {
	PaymentID string
	PaidAt    time.Time
	Replayed  bool
}

// CheckoutService drives one checkout attempt against the gateway:
// create the provider order from the stored link amounts, then capture
// it and transition the link to paid.
type CheckoutService interface {
	CreateOrder(ctx context.Context, uniqueID string) (*paypal.OrderResult, error)
	CaptureOrder(ctx context.Context, orderID, uniqueID string) (*CaptureOutcome, error)
}

type checkoutService struct {
	repo    repository.LinkRepository
	gateway paypal.Gateway
	cache   *cache.Client
	links   LinkService
	sandbox bool
}

// NewCheckoutService creates a new checkout service. The gateway is an
// injected instance; an unconfigured deployment passes paypal.Disabled.
func NewCheckoutService(
	repo repository.LinkRepository,
	gateway paypal.Gateway,
	cacheClient *cache.Client,
	links LinkService,
	sandbox bool,
) CheckoutService {
	return &checkoutService{
		repo:    repo,
		gateway: gateway,
		cache:   cacheClient,
		links:   links,
		sandbox: sandbox,
	}
}

// CreateOrder builds a provider order for the link's current amounts.
// The link itself is not mutated; payment state only changes on capture.
func (s *checkoutService) CreateOrder(ctx context.Context, uniqueID string) (*paypal.OrderResult, error) {
	link, err := s.links.GetLink(ctx, uniqueID)
	if err != nil {
		return nil, err
	}

	input := paypal.OrderInput{
		ReferenceID: link.UniqueID,
		ItemName:    link.ProductName,
		ItemPrice:   link.Price,
		Shipping:    link.DeliveryCost,
		ReturnURL:   s.links.SuccessURL(link.UniqueID),
		CancelURL:   s.links.PaymentURL(link.UniqueID),
	}

	if s.sandbox {
		log.Printf("creating paypal order for link %s: %s, total %s", link.UniqueID, link.ProductName, link.TotalAmount().StringFixed(2))
	}

	result, err := s.gateway.CreateOrder(ctx, input)
	if err != nil {
		return nil, s.mapGatewayError("create order", err)
	}
	if s.sandbox {
		log.Printf("paypal order created for link %s: id=%s status=%s", link.UniqueID, result.OrderID, result.Status)
	}
	return result, nil
}

// CaptureOrder captures the provider order and marks the link paid when
// the provider reports COMPLETED. A capture against an already-paid
// link is a replay: it succeeds with the stored payment id and performs
// no provider call and no mutation.
func (s *checkoutService) CaptureOrder(ctx context.Context, orderID, uniqueID string) (*CaptureOutcome, error) {
	link, err := s.links.GetLink(ctx, uniqueID)
	if err != nil {
		return nil, err
	}
	if link.IsPaid {
		return replayedOutcome(link.PaymentID, link.PaidAt), nil
	}

	result, err := s.gateway.CaptureOrder(ctx, orderID)
	if err != nil {
		return nil, s.mapGatewayError("capture order", err)
	}
	if !result.Completed() {
		if s.sandbox {
			log.Printf("capture for link %s finished non-paid: status=%s", uniqueID, result.Status)
		}
		return nil, fmt.Errorf("%w: provider status %s", errors.ErrOrderNotCompleted, result.Status)
	}

	paidAt := time.Now().UTC()
	rows, err := s.repo.MarkPaid(ctx, uniqueID, orderID, paidAt)
	if err != nil {
		return nil, fmt.Errorf("mark paid: %w", err)
	}
	if rows == 0 {
		// A concurrent capture won the transition; report its result.
		current, err := s.links.GetLink(ctx, uniqueID)
		if err != nil {
			return nil, err
		}
		return replayedOutcome(current.PaymentID, current.PaidAt), nil
	}

	// The cached projection, if any, predates the paid transition.
	_ = s.cache.Delete(ctx, cache.StatusKey(uniqueID))

	return &CaptureOutcome{PaymentID: orderID, PaidAt: paidAt}, nil
}

func (s *checkoutService) mapGatewayError(op string, err error) error {
	if stderrors.Is(err, paypal.ErrNotConfigured) {
		log.Printf("%s rejected: %v", op, err)
		return errors.ErrPaymentNotConfigured
	}
	log.Printf("%s failed: %v", op, err)
	return errors.NewGatewayError(op, err.Error(), err)
}

func replayedOutcome(paymentID *string, paidAt *time.Time) *CaptureOutcome {
	outcome := &CaptureOutcome{Replayed: true}
	if paymentID != nil {
		outcome.PaymentID = *paymentID
	}
	if paidAt != nil {
		outcome.PaidAt = *paidAt
	}
	return outcome
}
