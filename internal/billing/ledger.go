package billing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/contentforge/contentforge/internal/plan"
	"github.com/contentforge/contentforge/internal/user"
)

// billingCycle is the length of one paid period.
const billingCycle = 30 * 24 * time.Hour

// freeSignupCurrency labels the zero-amount payment recorded on free
// signup.
const freeSignupCurrency = "usd"

// gatewayStatusSuccess is the only transaction status the ledger accepts.
const gatewayStatusSuccess = "success"

// UserDirectory is the slice of user storage the ledger needs. Satisfied
// by user.Storage.
type UserDirectory interface {
	ByID(ctx context.Context, id bson.ObjectID) (*user.User, error)
	ApplyPlan(ctx context.Context, id bson.ObjectID, change user.PlanChange) (*user.User, error)
}

// PaymentWriter persists payment records. Satisfied by PaymentStore.
type PaymentWriter interface {
	Create(ctx context.Context, p *Payment) error
}

// WebhookEvent is the subset of a Paystack event the ledger acts on.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		Reference string           `json:"reference"`
		Amount    int64            `json:"amount"`
		Currency  string           `json:"currency"`
		Metadata  CheckoutMetadata `json:"metadata"`
		Customer  struct {
			Email string `json:"email"`
		} `json:"customer"`
	} `json:"data"`
}

// Ledger drives the three payment entry points. Checkout verification and
// the webhook converge on the same plan transition.
type Ledger struct {
	gateway  Gateway
	payments PaymentWriter
	users    UserDirectory
	catalog  *plan.Catalog
	log      *slog.Logger
}

func NewLedger(gateway Gateway, payments PaymentWriter, users UserDirectory, catalog *plan.Catalog, log *slog.Logger) *Ledger {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Ledger{gateway: gateway, payments: payments, users: users, catalog: catalog, log: log}
}

// InitiateCheckout creates a hosted gateway transaction for the given plan
// and amount (major units). The purchasing user and plan travel through
// the gateway as metadata; no local state changes until verification.
func (l *Ledger) InitiateCheckout(ctx context.Context, userID bson.ObjectID, email string, amount float64, p plan.Plan) (*Checkout, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlan, p)
	}

	checkout, err := l.gateway.Initialize(ctx, InitializeRequest{
		Email:       email,
		AmountMinor: int64(math.Round(amount * 100)),
		Metadata:    CheckoutMetadata{UserID: userID.Hex(), Plan: p},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize checkout: %w", err)
	}

	l.log.InfoContext(ctx, "checkout initiated",
		slog.String("user_id", userID.Hex()),
		slog.String("plan", p.String()),
		slog.String("reference", checkout.Reference))
	return checkout, nil
}

// VerifyCheckout queries the gateway for a transaction and, on success,
// records the payment and applies the purchased plan. Submitting the same
// reference twice records a second payment and re-applies the plan; the
// gateway reference is the caller's dedupe handle, not ours.
func (l *Ledger) VerifyCheckout(ctx context.Context, reference string) (*Payment, *user.User, error) {
	tx, err := l.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to verify transaction: %w", err)
	}
	if tx.Status != gatewayStatusSuccess {
		return nil, nil, fmt.Errorf("%w: status %q", ErrPaymentNotSuccessful, tx.Status)
	}
	return l.applyTransition(ctx, tx.Metadata, reference, tx.AmountMinor, tx.Currency, tx.Email)
}

// HandleWebhook applies a gateway-initiated charge.success event. Other
// event types are acknowledged and ignored. Signature verification is the
// transport layer's job; by the time an event reaches here it is trusted.
func (l *Ledger) HandleWebhook(ctx context.Context, event WebhookEvent) error {
	if event.Event != "charge.success" {
		l.log.DebugContext(ctx, "ignoring webhook event", slog.String("event", event.Event))
		return nil
	}

	_, _, err := l.applyTransition(ctx, event.Data.Metadata, event.Data.Reference,
		event.Data.Amount, event.Data.Currency, event.Data.Customer.Email)
	if err != nil {
		return fmt.Errorf("failed to process charge.success: %w", err)
	}
	return nil
}

// FreeSignup moves a user whose billing period has lapsed onto the Free
// plan, recording a zero-amount payment with a generated reference.
func (l *Ledger) FreeSignup(ctx context.Context, userID bson.ObjectID) (*user.User, error) {
	u, err := l.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ShouldRenew(u, time.Now().UTC()) {
		return nil, ErrRenewalNotDue
	}

	payment := &Payment{
		UserID:    userID,
		Email:     u.Email,
		Reference: uuid.NewString(),
		Amount:    0,
		Currency:  freeSignupCurrency,
		Plan:      plan.Free,
		Status:    StatusSuccess,
	}
	if err := l.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	updated, err := l.users.ApplyPlan(ctx, userID, user.PlanChange{
		Plan:            plan.Free,
		Allotment:       l.catalog.Allotment(plan.Free),
		NextBillingDate: time.Now().UTC().Add(billingCycle),
		PaymentID:       payment.ID,
		ClearTrial:      true,
	})
	if err != nil {
		return nil, err
	}

	l.log.InfoContext(ctx, "free plan applied", slog.String("user_id", userID.Hex()))
	return updated, nil
}

// ShouldRenew reports whether a new billing period may start: true when
// the next billing date is unset or is not in the future. A date equal to
// now counts as due.
func ShouldRenew(u *user.User, now time.Time) bool {
	return u.NextBillingDate == nil || !u.NextBillingDate.After(now)
}

func (l *Ledger) applyTransition(ctx context.Context, md CheckoutMetadata, reference string, amountMinor int64, currency, email string) (*Payment, *user.User, error) {
	userID, err := bson.ObjectIDFromHex(md.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: user id %q", ErrInvalidMetadata, md.UserID)
	}
	if !md.Plan.Valid() {
		return nil, nil, fmt.Errorf("%w: plan %q", ErrInvalidMetadata, md.Plan)
	}

	// Resolve the user before writing anything so a stale or forged
	// metadata blob cannot leave an orphaned payment behind.
	if _, err := l.users.ByID(ctx, userID); err != nil {
		return nil, nil, err
	}

	payment := &Payment{
		UserID:    userID,
		Email:     email,
		Reference: reference,
		Amount:    float64(amountMinor) / 100,
		Currency:  currency,
		Plan:      md.Plan,
		Status:    StatusSuccess,
	}
	if err := l.payments.Create(ctx, payment); err != nil {
		return nil, nil, fmt.Errorf("failed to record payment: %w", err)
	}

	updated, err := l.users.ApplyPlan(ctx, userID, user.PlanChange{
		Plan:            md.Plan,
		Allotment:       l.catalog.Allotment(md.Plan),
		NextBillingDate: time.Now().UTC().Add(billingCycle),
		PaymentID:       payment.ID,
		ClearTrial:      true,
	})
	if err != nil {
		return nil, nil, err
	}

	l.log.InfoContext(ctx, "plan applied",
		slog.String("user_id", userID.Hex()),
		slog.String("plan", md.Plan.String()),
		slog.String("reference", reference),
		slog.Float64("amount", payment.Amount))

	return payment, updated, nil
}
