package gateway

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/refund"
	"go.uber.org/zap"

	"github.com/clinlix/service-booking/internal/domain/booking"
)

// StripeRefundGateway executes refunds against Stripe payment intents.
// Amounts are integer minor currency units end to end, matching Stripe's wire
// format.
type StripeRefundGateway struct {
	logger *zap.Logger
}

// NewStripeRefundGateway configures the Stripe client with the given secret
// key and returns the gateway.
func NewStripeRefundGateway(secretKey string, logger *zap.Logger) *StripeRefundGateway {
	stripe.Key = secretKey
	return &StripeRefundGateway{logger: logger}
}

// Refund issues a partial or full refund against the payment intent. The
// refund currency is inherited from the original charge; the currency
// argument is kept for the audit log.
func (g *StripeRefundGateway) Refund(ctx context.Context, paymentReference string, amountCents int64, currency string) (*booking.RefundReceipt, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentReference),
		Amount:        stripe.Int64(amountCents),
	}
	params.Context = ctx

	r, err := refund.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe refund failed: %w", err)
	}

	g.logger.Info("refund issued",
		zap.String("payment_intent", paymentReference),
		zap.String("refund_id", r.ID),
		zap.Int64("amount_cents", amountCents),
		zap.String("currency", currency),
	)

	return &booking.RefundReceipt{
		RefundID:    r.ID,
		AmountCents: r.Amount,
		Currency:    string(r.Currency),
	}, nil
}
