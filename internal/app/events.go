package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"warbler/internal/model"
)

const publishTimeout = 2 * time.Second

// EventPublisher receives domain events after the owning transaction commits.
type EventPublisher interface {
	Publish(ctx context.Context, event model.Event) error
}

// notifier is shared by the services: it stamps events with the service
// clock and publishes them without failing the already-committed operation.
type notifier struct {
	publisher EventPublisher
	log       logrus.FieldLogger
	now       func() time.Time
}

func newNotifier(publisher EventPublisher, log logrus.FieldLogger) notifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return notifier{
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (n notifier) emit(ctx context.Context, eventType model.EventType, actorID, subjectID uint) {
	if n.publisher == nil {
		return
	}
	event := model.Event{
		Type:       eventType,
		ActorID:    actorID,
		SubjectID:  subjectID,
		OccurredAt: n.now(),
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := n.publisher.Publish(pubCtx, event); err != nil {
		n.log.WithFields(logrus.Fields{
			"event":      eventType,
			"actor_id":   actorID,
			"subject_id": subjectID,
		}).WithError(err).Warn("publish event failed")
	}
}
