package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/webconf/checkout/internal/domain/catalog"
	"github.com/webconf/checkout/internal/domain/ordering"
	"github.com/webconf/checkout/internal/domain/shared"
	"github.com/webconf/checkout/internal/infrastructure/email"
)

// PassEmailHandler notifies attendees when an order is paid: every PASS
// line carries an email-kind option with the attendee's address, which
// may differ from the buyer's. One message goes out per pass.
type PassEmailHandler struct {
	orderRepo ordering.OrderRepository
	itemRepo  catalog.ItemRepository
	mailer    email.Mailer
	logger    *zap.Logger
}

// NewPassEmailHandler creates the pass notification handler
func NewPassEmailHandler(
	orderRepo ordering.OrderRepository,
	itemRepo catalog.ItemRepository,
	mailer email.Mailer,
	logger *zap.Logger,
) *PassEmailHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PassEmailHandler{
		orderRepo: orderRepo,
		itemRepo:  itemRepo,
		mailer:    mailer,
		logger:    logger,
	}
}

// Handle reacts to OrderPaid events from the event bus
func (h *PassEmailHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	paid, ok := event.(*ordering.OrderPaidEvent)
	if !ok {
		return nil
	}
	return h.NotifyAttendees(ctx, paid.OrderID)
}

// EventTypes returns the event types this handler subscribes to
func (h *PassEmailHandler) EventTypes() []string {
	return []string{ordering.EventTypeOrderPaid}
}

// NotifyAttendees emails every attendee address on the order's pass
// lines. A failed send is logged and does not block the remaining
// passes; the first error is returned once all sends were attempted.
func (h *PassEmailHandler) NotifyAttendees(ctx context.Context, orderID uuid.UUID) error {
	order, err := h.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	passes := order.PassItems()
	if len(passes) == 0 {
		return nil
	}

	emailOptions, err := h.emailOptionIDs(ctx, passes)
	if err != nil {
		return err
	}

	var sendErrs []error
	for idx := range passes {
		line := &passes[idx]
		for optIdx := range line.Options {
			opt := &line.Options[optIdx]
			if !emailOptions[opt.ItemOptionID] || opt.Value == "" {
				continue
			}
			msg := &email.Message{
				To:      opt.Value,
				Subject: fmt.Sprintf("Tu pase: %s", line.ItemName),
				HTML:    passEmailBody(line.ItemName, opt.Value),
			}
			if err := h.mailer.Send(ctx, msg); err != nil {
				h.logger.Error("failed to send pass email",
					zap.String("order_id", order.ID.String()),
					zap.String("to", opt.Value),
					zap.Error(err),
				)
				sendErrs = append(sendErrs, err)
			}
		}
	}
	return errors.Join(sendErrs...)
}

// emailOptionIDs resolves which option definitions on the purchased
// items are email-kind, so attendee addresses can be told apart from
// other option values on the same line
func (h *PassEmailHandler) emailOptionIDs(ctx context.Context, passes []ordering.OrderItem) (map[uuid.UUID]bool, error) {
	itemIDs := make([]uuid.UUID, 0, len(passes))
	for idx := range passes {
		itemIDs = append(itemIDs, passes[idx].ItemID)
	}
	items, err := h.itemRepo.FindByIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]bool)
	for idx := range items {
		for optIdx := range items[idx].Options {
			opt := &items[idx].Options[optIdx]
			if opt.Kind == catalog.OptionKindEmail {
				out[opt.ID] = true
			}
		}
	}
	return out, nil
}

func passEmailBody(itemName, attendee string) string {
	return fmt.Sprintf(`<p>¡Hola!</p>
<p>Este correo confirma tu pase <strong>%s</strong> registrado para %s.</p>
<p>Presentalo en la acreditación junto a tu documento.</p>
<p>¡Nos vemos!</p>`, itemName, attendee)
}
