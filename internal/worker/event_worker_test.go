package worker

import (
	"encoding/json"
	"io"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warbler/internal/model"
)

type recordingAcker struct {
	acked    bool
	nacked   bool
	requeued bool
}

func (r *recordingAcker) Ack(tag uint64, multiple bool) error {
	r.acked = true
	return nil
}

func (r *recordingAcker) Nack(tag uint64, multiple, requeue bool) error {
	r.nacked = true
	r.requeued = requeue
	return nil
}

func (r *recordingAcker) Reject(tag uint64, requeue bool) error {
	r.nacked = true
	r.requeued = requeue
	return nil
}

func newTestWorker() (*EventWorker, *test.Hook) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	hook := test.NewLocal(log)
	return NewEventWorker(nil, "warbler.events", log), hook
}

func TestHandleDeliveryAcksEvent(t *testing.T) {
	w, hook := newTestWorker()
	body, err := json.Marshal(model.Event{
		Type:       model.EventFollowCreated,
		ActorID:    1,
		SubjectID:  2,
		OccurredAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	acker := &recordingAcker{}
	w.handleDelivery(amqp.Delivery{Acknowledger: acker, Body: body})

	assert.True(t, acker.acked)
	assert.False(t, acker.nacked)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, model.EventFollowCreated, hook.LastEntry().Data["event"])
}

func TestHandleDeliveryDropsMalformedBody(t *testing.T) {
	w, hook := newTestWorker()

	acker := &recordingAcker{}
	w.handleDelivery(amqp.Delivery{Acknowledger: acker, Body: []byte("{not json")})

	assert.False(t, acker.acked)
	assert.True(t, acker.nacked)
	assert.False(t, acker.requeued)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestHandleDeliveryDropsUntypedEvent(t *testing.T) {
	w, _ := newTestWorker()

	acker := &recordingAcker{}
	w.handleDelivery(amqp.Delivery{Acknowledger: acker, Body: []byte(`{"actor_id":1}`)})

	assert.True(t, acker.nacked)
}
