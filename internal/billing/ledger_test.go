package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/contentforge/contentforge/internal/billing"
	"github.com/contentforge/contentforge/internal/plan"
	"github.com/contentforge/contentforge/internal/user"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Initialize(ctx context.Context, req billing.InitializeRequest) (*billing.Checkout, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Checkout), args.Error(1)
}

func (m *mockGateway) Verify(ctx context.Context, reference string) (*billing.Transaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Transaction), args.Error(1)
}

type mockPayments struct {
	mock.Mock
}

func (m *mockPayments) Create(ctx context.Context, p *billing.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) ByID(ctx context.Context, id bson.ObjectID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *mockUsers) ApplyPlan(ctx context.Context, id bson.ObjectID, change user.PlanChange) (*user.User, error) {
	args := m.Called(ctx, id, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func newLedger(gateway *mockGateway, payments *mockPayments, users *mockUsers) *billing.Ledger {
	return billing.NewLedger(gateway, payments, users, plan.DefaultCatalog(), nil)
}

func TestInitiateCheckout(t *testing.T) {
	t.Parallel()

	userID := bson.NewObjectID()

	t.Run("converts amount to minor units and embeds metadata", func(t *testing.T) {
		t.Parallel()

		gateway := new(mockGateway)
		gateway.On("Initialize", mock.Anything, billing.InitializeRequest{
			Email:       "buyer@example.com",
			AmountMinor: 5000,
			Metadata:    billing.CheckoutMetadata{UserID: userID.Hex(), Plan: plan.Premium},
		}).Return(&billing.Checkout{Reference: "ref_1", AuthorizationURL: "https://pay"}, nil)

		ledger := newLedger(gateway, new(mockPayments), new(mockUsers))
		checkout, err := ledger.InitiateCheckout(context.Background(), userID, "buyer@example.com", 50, plan.Premium)
		require.NoError(t, err)
		assert.Equal(t, "ref_1", checkout.Reference)
		gateway.AssertExpectations(t)
	})

	t.Run("rejects unknown plan without touching the gateway", func(t *testing.T) {
		t.Parallel()

		gateway := new(mockGateway)
		ledger := newLedger(gateway, new(mockPayments), new(mockUsers))

		_, err := ledger.InitiateCheckout(context.Background(), userID, "buyer@example.com", 50, plan.Plan("Enterprise"))
		assert.ErrorIs(t, err, billing.ErrInvalidPlan)
		gateway.AssertNotCalled(t, "Initialize", mock.Anything, mock.Anything)
	})
}

func TestVerifyCheckout(t *testing.T) {
	t.Parallel()

	userID := bson.NewObjectID()

	successTx := func() *billing.Transaction {
		return &billing.Transaction{
			Status:      "success",
			AmountMinor: 5000,
			Currency:    "NGN",
			Email:       "buyer@example.com",
			Metadata:    billing.CheckoutMetadata{UserID: userID.Hex(), Plan: plan.Premium},
		}
	}

	t.Run("records payment and applies the purchased plan", func(t *testing.T) {
		t.Parallel()

		gateway := new(mockGateway)
		gateway.On("Verify", mock.Anything, "ref_1").Return(successTx(), nil)

		payments := new(mockPayments)
		payments.On("Create", mock.Anything, mock.MatchedBy(func(p *billing.Payment) bool {
			return p.UserID == userID &&
				p.Reference == "ref_1" &&
				p.Amount == 50 &&
				p.Plan == plan.Premium &&
				p.Status == billing.StatusSuccess
		})).Return(nil)

		users := new(mockUsers)
		users.On("ByID", mock.Anything, userID).Return(&user.User{ID: userID}, nil)
		users.On("ApplyPlan", mock.Anything, userID, mock.MatchedBy(func(c user.PlanChange) bool {
			return c.Plan == plan.Premium &&
				c.Allotment == 100 &&
				c.ClearTrial &&
				c.NextBillingDate.After(time.Now().UTC().Add(29*24*time.Hour))
		})).Return(&user.User{ID: userID, SubscriptionPlan: plan.Premium, MonthlyRequestCount: 100}, nil)

		ledger := newLedger(gateway, payments, users)
		payment, updated, err := ledger.VerifyCheckout(context.Background(), "ref_1")
		require.NoError(t, err)
		assert.Equal(t, float64(50), payment.Amount)
		assert.Equal(t, plan.Premium, updated.SubscriptionPlan)
		assert.Equal(t, 100, updated.MonthlyRequestCount)
		payments.AssertExpectations(t)
		users.AssertExpectations(t)
	})

	t.Run("non-success status mutates nothing", func(t *testing.T) {
		t.Parallel()

		tx := successTx()
		tx.Status = "abandoned"
		gateway := new(mockGateway)
		gateway.On("Verify", mock.Anything, "ref_1").Return(tx, nil)
		payments := new(mockPayments)
		users := new(mockUsers)

		ledger := newLedger(gateway, payments, users)
		_, _, err := ledger.VerifyCheckout(context.Background(), "ref_1")
		assert.ErrorIs(t, err, billing.ErrPaymentNotSuccessful)
		payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		users.AssertNotCalled(t, "ApplyPlan", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("malformed metadata user id", func(t *testing.T) {
		t.Parallel()

		tx := successTx()
		tx.Metadata.UserID = "not-an-object-id"
		gateway := new(mockGateway)
		gateway.On("Verify", mock.Anything, "ref_1").Return(tx, nil)

		ledger := newLedger(gateway, new(mockPayments), new(mockUsers))
		_, _, err := ledger.VerifyCheckout(context.Background(), "ref_1")
		assert.ErrorIs(t, err, billing.ErrInvalidMetadata)
	})

	t.Run("unknown user leaves no payment behind", func(t *testing.T) {
		t.Parallel()

		gateway := new(mockGateway)
		gateway.On("Verify", mock.Anything, "ref_1").Return(successTx(), nil)
		payments := new(mockPayments)
		users := new(mockUsers)
		users.On("ByID", mock.Anything, userID).Return(nil, user.ErrNotFound)

		ledger := newLedger(gateway, payments, users)
		_, _, err := ledger.VerifyCheckout(context.Background(), "ref_1")
		assert.ErrorIs(t, err, user.ErrNotFound)
		payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	// Submitting the same reference twice records a second payment. This
	// pins down current behavior rather than promising idempotency.
	t.Run("duplicate reference records a second payment", func(t *testing.T) {
		t.Parallel()

		gateway := new(mockGateway)
		gateway.On("Verify", mock.Anything, "ref_1").Return(successTx(), nil).Twice()
		payments := new(mockPayments)
		payments.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()
		users := new(mockUsers)
		users.On("ByID", mock.Anything, userID).Return(&user.User{ID: userID}, nil)
		users.On("ApplyPlan", mock.Anything, userID, mock.Anything).Return(&user.User{ID: userID}, nil)

		ledger := newLedger(gateway, payments, users)
		_, _, err := ledger.VerifyCheckout(context.Background(), "ref_1")
		require.NoError(t, err)
		_, _, err = ledger.VerifyCheckout(context.Background(), "ref_1")
		require.NoError(t, err)
		payments.AssertNumberOfCalls(t, "Create", 2)
	})
}

func TestHandleWebhook(t *testing.T) {
	t.Parallel()

	userID := bson.NewObjectID()

	chargeSuccess := func() billing.WebhookEvent {
		var ev billing.WebhookEvent
		ev.Event = "charge.success"
		ev.Data.Reference = "ref_hook"
		ev.Data.Amount = 2000
		ev.Data.Currency = "NGN"
		ev.Data.Metadata = billing.CheckoutMetadata{UserID: userID.Hex(), Plan: plan.Basic}
		ev.Data.Customer.Email = "buyer@example.com"
		return ev
	}

	t.Run("charge.success applies the plan from event metadata", func(t *testing.T) {
		t.Parallel()

		payments := new(mockPayments)
		payments.On("Create", mock.Anything, mock.MatchedBy(func(p *billing.Payment) bool {
			return p.Amount == 20 && p.Plan == plan.Basic && p.Reference == "ref_hook"
		})).Return(nil)
		users := new(mockUsers)
		users.On("ByID", mock.Anything, userID).Return(&user.User{ID: userID}, nil)
		users.On("ApplyPlan", mock.Anything, userID, mock.MatchedBy(func(c user.PlanChange) bool {
			return c.Plan == plan.Basic && c.Allotment == 50
		})).Return(&user.User{ID: userID, SubscriptionPlan: plan.Basic}, nil)

		ledger := newLedger(new(mockGateway), payments, users)
		require.NoError(t, ledger.HandleWebhook(context.Background(), chargeSuccess()))
		payments.AssertExpectations(t)
		users.AssertExpectations(t)
	})

	t.Run("other events are ignored", func(t *testing.T) {
		t.Parallel()

		ev := chargeSuccess()
		ev.Event = "transfer.success"
		payments := new(mockPayments)

		ledger := newLedger(new(mockGateway), payments, new(mockUsers))
		require.NoError(t, ledger.HandleWebhook(context.Background(), ev))
		payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestFreeSignup(t *testing.T) {
	t.Parallel()

	userID := bson.NewObjectID()

	t.Run("due user moves to Free with a zero-amount payment", func(t *testing.T) {
		t.Parallel()

		past := time.Now().UTC().Add(-time.Hour)
		users := new(mockUsers)
		users.On("ByID", mock.Anything, userID).Return(
			&user.User{ID: userID, Email: "a@example.com", NextBillingDate: &past}, nil)
		users.On("ApplyPlan", mock.Anything, userID, mock.MatchedBy(func(c user.PlanChange) bool {
			return c.Plan == plan.Free && c.Allotment == 5 && c.ClearTrial
		})).Return(&user.User{ID: userID, SubscriptionPlan: plan.Free, MonthlyRequestCount: 5}, nil)

		payments := new(mockPayments)
		payments.On("Create", mock.Anything, mock.MatchedBy(func(p *billing.Payment) bool {
			return p.Amount == 0 && p.Currency == "usd" && p.Reference != "" && p.Plan == plan.Free
		})).Return(nil)

		ledger := newLedger(new(mockGateway), payments, users)
		updated, err := ledger.FreeSignup(context.Background(), userID)
		require.NoError(t, err)
		assert.Equal(t, plan.Free, updated.SubscriptionPlan)
		payments.AssertExpectations(t)
	})

	t.Run("not due while billing date is in the future", func(t *testing.T) {
		t.Parallel()

		future := time.Now().UTC().Add(24 * time.Hour)
		users := new(mockUsers)
		users.On("ByID", mock.Anything, userID).Return(&user.User{ID: userID, NextBillingDate: &future}, nil)
		payments := new(mockPayments)

		ledger := newLedger(new(mockGateway), payments, users)
		_, err := ledger.FreeSignup(context.Background(), userID)
		assert.ErrorIs(t, err, billing.ErrRenewalNotDue)
		payments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestShouldRenew_Boundary(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	past := now.Add(-time.Second)
	future := now.Add(time.Second)

	assert.True(t, billing.ShouldRenew(&user.User{}, now), "unset billing date is due")
	assert.True(t, billing.ShouldRenew(&user.User{NextBillingDate: &past}, now))
	// A billing date equal to now counts as due.
	assert.True(t, billing.ShouldRenew(&user.User{NextBillingDate: &now}, now))
	assert.False(t, billing.ShouldRenew(&user.User{NextBillingDate: &future}, now))
}
