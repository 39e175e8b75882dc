package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"warbler/internal/model"
	"warbler/internal/monitoring"
)

// EventWorker consumes domain events from the event queue, logging and
// counting each one.
type EventWorker struct {
	conn      *amqp.Connection
	queueName string
	log       logrus.FieldLogger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewEventWorker(conn *amqp.Connection, queueName string, log logrus.FieldLogger) *EventWorker {
	return &EventWorker{
		conn:      conn,
		queueName: queueName,
		log:       log,
	}
}

func (w *EventWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				w.handleDelivery(d)
			}
		}
	}()

	return nil
}

func (w *EventWorker) handleDelivery(d amqp.Delivery) {
	var event model.Event
	if err := json.Unmarshal(d.Body, &event); err != nil || event.Type == "" {
		w.log.WithError(err).Warn("worker decode event failed")
		monitoring.EventsConsumed.WithLabelValues("unknown", "malformed").Inc()
		_ = d.Nack(false, false)
		return
	}

	w.log.WithFields(logrus.Fields{
		"event":       event.Type,
		"actor_id":    event.ActorID,
		"subject_id":  event.SubjectID,
		"occurred_at": event.OccurredAt,
	}).Info("domain event")
	monitoring.EventsConsumed.WithLabelValues(string(event.Type), "ok").Inc()
	_ = d.Ack(false)
}

func (w *EventWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
