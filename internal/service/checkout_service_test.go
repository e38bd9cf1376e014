package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"linkpay/internal/cache"
	"linkpay/internal/errors"
	"linkpay/internal/model"
	"linkpay/internal/paypal"
)

func newTestCheckoutService(repo *MockLinkRepository, gateway paypal.Gateway) CheckoutService {
	links := NewLinkService(repo, (*cache.Client)(nil), testBaseURL)
	return NewCheckoutService(repo, gateway, (*cache.Client)(nil), links, true)
}

func pendingLink() *model.PaymentLink {
	return &model.PaymentLink{
		ProductName:    "Scarf",
		Price:          decimal.RequireFromString("20.00"),
		DeliveryCost:   decimal.RequireFromString("3.50"),
		ClientName:     "Amira",
		DeliveryMethod: "Mondial Relay",
		UniqueID:       "abc123XYZ0",
		CreatedAt:      time.Now().UTC().Add(-time.Hour),
	}
}

func TestCheckoutService_CreateOrder(t *testing.T) {
	t.Run("builds the order from stored amounts", func(t *testing.T) {
		mockRepo := new(MockLinkRepository)
		mockRepo.On("FindByUniqueID", mock.Anything, "abc123XYZ0").Return(pendingLink(), nil)

		mockGateway := new(MockGateway)
		mockGateway.On("CreateOrder", mock.Anything, mock.MatchedBy(func(input paypal.OrderInput) bool {
			return input.ReferenceID == "abc123XYZ0" &&
				input.ItemName == "Scarf" &&
				input.ItemPrice.Equal(decimal.RequireFromString("20.00")) &&
				input.Shipping.Equal(decimal.RequireFromString("3.50")) &&
				input.Total().Equal(decimal.RequireFromString("23.50")) &&
				input.ReturnURL == testBaseURL+"/payment/success/abc123XYZ0" &&
				input.CancelURL == testBaseURL+"/payment/abc123XYZ0"
		})).Return(&paypal.OrderResult{OrderID: "PAYPAL-ORDER-1", Status: "CREATED"}, nil)

		service := newTestCheckoutService(mockRepo, mockGateway)
		result, err := service.CreateOrder(context.Background(), "abc123XYZ0")

		assert.NoError(t, err)
		assert.Equal(t, "PAYPAL-ORDER-1", result.OrderID)
		assert.Equal(t, "CREATED", result.Status)
		// Order creation never mutates the link.
		mockRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		mockGateway.AssertExpectations(t)
	})

	t.Run("unknown token", func(t *testing.T) {
		mockRepo := new(MockLinkRepository)
		mockRepo.On("FindByUniqueID", mock.Anything, "missing000").Return(nil, gorm.ErrRecordNotFound)

		service := newTestCheckoutService(mockRepo, new(MockGateway))
		_, err := service.CreateOrder(context.Background(), "missing000")
		assert.ErrorIs(t, err, errors.ErrLinkNotFound)
	})

	t.Run("unconfigured gateway disables payments only", func(t *testing.T) {
		mockRepo := new(MockLinkRepository)
		mockRepo.On("FindByUniqueID", mock.Anything, "abc123XYZ0").Return(pendingLink(), nil)

		service := newTestCheckoutService(mockRepo, paypal.Disabled{Reason: "missing credentials"})
		_, err := service.CreateOrder(context.Background(), "abc123XYZ0")
		assert.ErrorIs(t, err, errors.ErrPaymentNotConfigured)
	})

	t.Run("provider failure surfaces as gateway error", func(t *testing.T) {
		mockRepo := new(MockLinkRepository)
		mockRepo.On("FindByUniqueID", mock.Anything, "abc123XYZ0").Return(pendingLink(), nil)

		mockGateway := new(MockGateway)
		mockGateway.On("CreateOrder", mock.Anything, mock.Anything).
			Return(nil, paypal.ErrRequestFailed)

		service := newTestCheckoutService(mockRepo, mockGateway)
		_, err := service.CreateOrder(context.Background(), "abc123XYZ0")

		var gw *errors.GatewayError
		assert.ErrorAs(t, err, &gw)
	})
}

func TestCheckoutService_CaptureOrder(t *testing.T) {
	t.Run("completed capture marks the link paid", func(t *testing.T) {
		mockRepo := new(MockLinkRepository)
		mockRepo.On("FindByUniqueID", mock.Anything, "abc123XYZ0").Return(pendingLink(), nil)
		mockRepo.On("MarkPaid", mock.Anything, "abc123XYZ0", "PAYPAL-ORDER-1", mock.AnythingOfType("time.Time")).
			Return(int64(1), nil)

		mockGateway := new(MockGateway)
		mockGateway.On("CaptureOrder", mock.Anything, "PAYPAL-ORDER-1").
			Return(&paypal.CaptureResult{OrderID: "PAYPAL-ORDER-1", Status: paypal.StatusCompleted}, nil)

		service := newTestCheckoutService(mockRepo, mockGateway)
		outcome, err := service.CaptureOrder(context.Background(), "PAYPAL-ORDER-1", "abc123XYZ0")

		assert.NoError(t, err)
		assert.Equal(t, "PAYPAL-ORDER-1", outcome.PaymentID)
		assert.False(t, outcome.Replayed)
		assert.False(t, outcome.PaidAt.IsZero())
		mockRepo.AssertExpectations(t)
	})

	t.Run("declined capture leaves the link unpaid", func(t *testing.T) {
		mockRepo := new(MockLinkRepository)
		mockRepo.On("FindByUniqueID", mock.Anything, "abc123XYZ0").Return(pendingLink(), nil)

		mockGateway := new(MockGateway)
		mockGateway.On("CaptureOrder", mock.Anything, "PAYPAL-ORDER-1").
			Return(&paypal.CaptureResult{OrderID: "PAYPAL-ORDER-1", Status: "DECLINED"}, nil)

		service := newTestCheckoutService(mockRepo, mockGateway)
		_, err := service.CaptureOrder(context.Background(), "PAYPAL-ORDER-1", "abc123XYZ0")

		assert.ErrorIs(t, err, errors.ErrOrderNotCompleted)
		mockRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("capture replay on a paid link is a no-op success", func(t *testing.T) {
		paymentID := "PAYPAL-ORDER-1"
		paidAt := time.Now().UTC().Add(-time.Minute)
		paid := pendingLink()
		paid.IsPaid = true
		paid.PaymentID = &paymentID
		paid.PaidAt = &paidAt

		mockRepo := new(MockLinkRepository)
		mockRepo.On("FindByUniqueID", mock.Anything, "abc123XYZ0").Return(paid, nil)

		mockGateway := new(MockGateway)

		service := newTestCheckoutService(mockRepo, mockGateway)
		outcome, err := service.CaptureOrder(context.Background(), "PAYPAL-ORDER-2", "abc123XYZ0")

		assert.NoError(t, err)
		assert.True(t, outcome.Replayed)
		// The stored payment id wins; the replayed order id is ignored.
		assert.Equal(t, paymentID, outcome.PaymentID)
		assert.Equal(t, paidAt, outcome.PaidAt)
		mockGateway.AssertNotCalled(t, "CaptureOrder", mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("concurrent capture losing the transition reports a replay", func(t *testing.T) {
		paymentID := "PAYPAL-ORDER-1"
		paidAt := time.Now().UTC()
		winner := pendingLink()
		winner.IsPaid = true
		winner.PaymentID = &paymentID
		winner.PaidAt = &paidAt

		mockRepo := new(MockLinkRepository)
		mockRepo.On("FindByUniqueID", mock.Anything, "abc123XYZ0").Return(pendingLink(), nil).Once()
		mockRepo.On("MarkPaid", mock.Anything, "abc123XYZ0", "PAYPAL-ORDER-2", mock.AnythingOfType("time.Time")).
			Return(int64(0), nil)
		mockRepo.On("FindByUniqueID", mock.Anything, "abc123XYZ0").Return(winner, nil).Once()

		mockGateway := new(MockGateway)
		mockGateway.On("CaptureOrder", mock.Anything, "PAYPAL-ORDER-2").
			Return(&paypal.CaptureResult{OrderID: "PAYPAL-ORDER-2", Status: paypal.StatusCompleted}, nil)

		service := newTestCheckoutService(mockRepo, mockGateway)
		outcome, err := service.CaptureOrder(context.Background(), "PAYPAL-ORDER-2", "abc123XYZ0")

		assert.NoError(t, err)
		assert.True(t, outcome.Replayed)
		assert.Equal(t, paymentID, outcome.PaymentID)
	})

	t.Run("unknown token", func(t *testing.T) {
		mockRepo := new(MockLinkRepository)
		mockRepo.On("FindByUniqueID", mock.Anything, "missing000").Return(nil, gorm.ErrRecordNotFound)

		service := newTestCheckoutService(mockRepo, new(MockGateway))
		_, err := service.CaptureOrder(context.Background(), "PAYPAL-ORDER-1", "missing000")
		assert.ErrorIs(t, err, errors.ErrLinkNotFound)
	})
}
