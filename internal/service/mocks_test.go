package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"linkpay/internal/model"
	"linkpay/internal/paypal"
)

// MockLinkRepository is a mock implementation of repository.LinkRepository.
type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) Create(ctx context.Context, link *model.PaymentLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockLinkRepository) Save(ctx context.Context, link *model.PaymentLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockLinkRepository) FindByUniqueID(ctx context.Context, uniqueID string) (*model.PaymentLink, error) {
	args := m.Called(ctx, uniqueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentLink), args.Error(1)
}

func (m *MockLinkRepository) ListRecent(ctx context.Context, limit int) ([]model.PaymentLink, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PaymentLink), args.Error(1)
}

func (m *MockLinkRepository) Delete(ctx context.Context, link *model.PaymentLink) error {
	args := m.Called(ctx, link)
	return args.Error(0)
}

func (m *MockLinkRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLinkRepository) MarkPaid(ctx context.Context, uniqueID, paymentID string, paidAt time.Time) (int64, error) {
	args := m.Called(ctx, uniqueID, paymentID, paidAt)
	return args.Get(0).(int64), args.Error(1)
}

// MockGateway is a mock implementation of paypal.Gateway.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateOrder(ctx context.Context, input paypal.OrderInput) (*paypal.OrderResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paypal.OrderResult), args.Error(1)
}

func (m *MockGateway) CaptureOrder(ctx context.Context, orderID string) (*paypal.CaptureResult, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paypal.CaptureResult), args.Error(1)
}

func (m *MockGateway) Configured() bool {
	return true
}
