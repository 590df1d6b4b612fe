package gateways

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/refund"
	"github.com/stripe/stripe-go/v82/transfer"
	"go.uber.org/zap"
)

// Stripe moves case fees and juror payouts through Stripe. Amounts are in cents.
type Stripe struct{}

// NewStripe sets the process wide Stripe key
func NewStripe(secretKey string) *Stripe {
	stripe.Key = secretKey
	return &Stripe{}
}

// Charge confirms an off-session payment intent against the customer's default payment method
func (s *Stripe) Charge(ctx context.Context, amount int64, currency, customerID, description string, metadata map[string]string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(currency),
		Description: stripe.String(description),
		Confirm:     stripe.Bool(true),
		OffSession:  stripe.Bool(true),
	}
	if customerID != "" {
		params.Customer = stripe.String(customerID)
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		zap.S().Errorw("stripe charge failed", "customer", customerID, "amount", amount, "error", err)
		return "", "", errors.Wrap(err, "stripe charge failed")
	}
	zap.S().Infow("stripe charge created", "paymentIntent", pi.ID, "status", pi.Status)
	return pi.ID, string(pi.Status), nil
}

// Payout transfers funds to a juror's connected account
func (s *Stripe) Payout(ctx context.Context, amount int64, currency, destination, description string) (string, error) {
	if destination == "" {
		return "", errors.New("juror has no connected payout account")
	}
	params := &stripe.TransferParams{
		Amount:      stripe.Int64(amount),
		Currency:    stripe.String(currency),
		Destination: stripe.String(destination),
		Description: stripe.String(description),
	}
	params.Context = ctx

	tr, err := transfer.New(params)
	if err != nil {
		zap.S().Errorw("stripe transfer failed", "destination", destination, "amount", amount, "error", err)
		return "", errors.Wrap(err, "stripe transfer failed")
	}
	return tr.ID, nil
}

// Refund returns amount of a captured payment intent
func (s *Stripe) Refund(ctx context.Context, externalID string, amount int64) (string, error) {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(externalID)}
	if amount > 0 {
		params.Amount = stripe.Int64(amount)
	}
	params.Context = ctx

	re, err := refund.New(params)
	if err != nil {
		zap.S().Errorw("stripe refund failed", "paymentIntent", externalID, "error", err)
		return "", errors.Wrap(err, "stripe refund failed")
	}
	return re.ID, nil
}
