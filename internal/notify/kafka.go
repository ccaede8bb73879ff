package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/stkyrillos/parish-api/libs/kafkax"
)

// KafkaSink publishes booking events, one topic per event type, with W3C
// trace headers so downstream consumers join the request trace.
type KafkaSink struct {
	writer *kafka.Writer
}

func NewKafkaSink(brokers string) *KafkaSink {
	list := kafkax.SplitBrokers(brokers)
	if len(list) == 0 {
		return nil
	}
	return &KafkaSink{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers:  list,
			Balancer: &kafka.Hash{},
		}),
	}
}

func (s *KafkaSink) Send(ctx context.Context, e Event) error {
	payload, err := json.Marshal(map[string]any{
		"booking_id":          e.Booking.ID,
		"slot_id":             e.Booking.SlotID,
		"date":                e.Booking.Date,
		"time":                e.Booking.Time,
		"first_name":          e.Booking.FirstName,
		"last_name":           e.Booking.LastName,
		"email":               e.Booking.Email,
		"phone":               e.Booking.Phone,
		"confirmation_number": e.Booking.ConfirmationNumber,
		"occurred_at":         e.OccurredAt.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: e.Type,
		Key:   []byte(e.Booking.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(uuid.NewString())},
			{Key: "event_type", Value: []byte(e.Type)},
		},
	}
	msg.Headers = kafkax.InjectTraceHeaders(ctx, msg.Headers)
	return s.writer.WriteMessages(ctx, msg)
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
