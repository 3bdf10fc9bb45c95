package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/iliyamo/cinema-booking-session/internal/model"
	"github.com/iliyamo/cinema-booking-session/internal/session"
)

const bookingConfirmedQueueName = "booking.confirmed"

// ConfirmedPublisher is a session observer that publishes a
// booking.confirmed event whenever a submission resolves as confirmed or
// payment-pending.  Publish failures are logged and swallowed: an event
// is a notification, never part of the booking's correctness.
type ConfirmedPublisher struct {
	url string
	log *zap.Logger
}

// NewConfirmedPublisher builds a publisher against the configured
// broker.
func NewConfirmedPublisher(log *zap.Logger) *ConfirmedPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConfirmedPublisher{url: BrokerURL(), log: log}
}

// SelectionChanged implements session.Observer.  No event is published
// for selection churn.
func (p *ConfirmedPublisher) SelectionChanged([]session.PinnedSeat, uint32) {}

// SeatsEvicted implements session.Observer.
func (p *ConfirmedPublisher) SeatsEvicted([]session.EvictedSeat) {}

// BookingResolved implements session.Observer.
func (p *ConfirmedPublisher) BookingResolved(draft *session.Draft, res model.BookingResult) {
	if res.Status != model.BookingConfirmed && res.Status != model.BookingPaymentPending {
		return
	}
	seats := make([]string, 0, len(draft.Seats))
	for _, s := range draft.Seats {
		seats = append(seats, s.SeatID)
	}
	ev := BookingConfirmedEvent{
		BookingID:   res.BookingID,
		UserID:      draft.UserID,
		ShowtimeID:  draft.ShowtimeID,
		SeatLabels:  seats,
		TotalCents:  res.TotalCents,
		Status:      string(res.Status),
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.publish(ctx, ev); err != nil {
		p.log.Error("publish booking.confirmed failed",
			zap.String("booking_id", res.BookingID), zap.Error(err))
	}
}

// publish dials, declares the durable queue and sends one persistent
// message.  A connection per event is deliberate: confirmations are rare
// compared to seat traffic and a held-open channel is not worth the
// reconnect bookkeeping.
func (p *ConfirmedPublisher) publish(ctx context.Context, ev BookingConfirmedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(bookingConfirmedQueueName, true, false, false, false, nil); err != nil {
		return err
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"",                         // default exchange
		bookingConfirmedQueueName,  // routing key = queue name
		false,                      // mandatory
		false,                      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
