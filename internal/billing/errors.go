package billing

import "errors"

var (
	// ErrPaymentNotSuccessful is returned when the gateway reports any
	// transaction status other than success.
	ErrPaymentNotSuccessful = errors.New("payment was not successful")

	// ErrInvalidSignature is returned when a webhook body does not match
	// its HMAC signature header.
	ErrInvalidSignature = errors.New("invalid webhook signature")

	// ErrRenewalNotDue is returned by free signup while the current
	// billing period is still running.
	ErrRenewalNotDue = errors.New("subscription renewal is not due yet")

	// ErrInvalidPlan is returned when a checkout names a plan outside the
	// known set.
	ErrInvalidPlan = errors.New("invalid subscription plan")

	// ErrInvalidMetadata is returned when gateway metadata cannot be
	// correlated back to a user.
	ErrInvalidMetadata = errors.New("invalid transaction metadata")
)
