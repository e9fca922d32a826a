package notification

import (
	"context"
	"log"

	"github.com/pawpaw-commerce/fulfillment-go/internal/events"
	"github.com/pawpaw-commerce/fulfillment-go/internal/mail"
	"github.com/pawpaw-commerce/fulfillment-go/internal/rabbit"
)

// Handler consumes notification events and dispatches them through the mail
// transport. Delivery is best effort: malformed payloads, unknown types,
// render failures, and transport failures are all logged and the message is
// acknowledged — retrying a notification cannot make it more deliverable and
// the customer-facing flow must not block on it.
func Handler(mailer mail.Mailer, renderer *Renderer, logger *log.Logger) rabbit.HandlerFunc {
	return func(ctx context.Context, body []byte) error {
		n, err := events.DecodeNotification(body)
		if err != nil {
			logger.Printf("reject notification: %v", err)
			return nil
		}

		subject, html, err := renderer.Render(n)
		if err != nil {
			logger.Printf("render notification: %v", err)
			return nil
		}

		if err := mailer.Send(n.Addressee(), subject, html); err != nil {
			logger.Printf("send %s mail to %s: %v", n.Kind(), n.Addressee(), err)
			return nil
		}

		logger.Printf("email sent to %s (%s)", n.Addressee(), n.Kind())
		return nil
	}
}
