package gateway

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/clinlix/service-booking/internal/domain/booking"
	"github.com/clinlix/service-booking/pkg/config"
)

// SMTPMailer sends transactional booking email over SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	sender string
	logger *zap.Logger
}

// NewSMTPMailer creates an SMTPMailer from the SMTP configuration.
func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		sender: cfg.Sender,
		logger: logger,
	}
}

// SendBookingDeclined informs the customer their booking was declined and
// names the reassignment deadline.
func (m *SMTPMailer) SendBookingDeclined(to, bookingNumber, reason string, reassignBy time.Time) error {
	subject := fmt.Sprintf("Booking %s was declined", bookingNumber)
	body := fmt.Sprintf(
		"Unfortunately your cleaner declined booking %s.\n\nReason: %s\n\n"+
			"You can pick a different cleaner until %s. After that the booking is cancelled automatically and you receive a full refund.\n",
		bookingNumber, reason, reassignBy.Format("Mon, 02 Jan 2006 15:04 MST"),
	)
	return m.send(to, subject, body)
}

// SendBookingCancelled confirms the cancellation and the refund issued.
func (m *SMTPMailer) SendBookingCancelled(to, bookingNumber string, refund booking.RefundQuote, currency string) error {
	subject := fmt.Sprintf("Booking %s was cancelled", bookingNumber)
	var refundLine string
	if refund.AmountCents > 0 {
		refundLine = fmt.Sprintf("A refund of %d%% (%s %d.%02d) is on its way back to your payment method.",
			refund.Percentage, currency, refund.AmountCents/100, refund.AmountCents%100)
	} else {
		refundLine = "No refund applies to this cancellation."
	}
	body := fmt.Sprintf("Your booking %s has been cancelled.\n\n%s\n", bookingNumber, refundLine)
	return m.send(to, subject, body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	m.logger.Debug("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}
