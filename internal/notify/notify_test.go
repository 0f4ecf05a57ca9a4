package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/campus-booking-backend/internal/logger"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type recordingNotifier struct {
	got []Notification
	err error
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) error {
	r.got = append(r.got, n)
	return r.err
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestKafkaNotifier_Notify(t *testing.T) {
	w := &fakeWriter{}
	n := newKafkaNotifier(w, "", logger.Nop())

	err := n.Notify(context.Background(), Notification{
		Event:     EventApproved,
		Recipient: "user@campus.edu",
		Subject:   "Booking Approved",
		Message:   "Your booking for Computer Lab A on 2026-01-15 has been approved.",
		BookingID: "book1",
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "user@campus.edu", string(msg.Key))
	assert.Equal(t, EventApproved, header(msg, HeaderEventType))
	assert.Equal(t, "campus-booking", header(msg, HeaderSource))
	assert.NotEmpty(t, header(msg, HeaderEventID))

	var decoded Notification
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "book1", decoded.BookingID)
	assert.False(t, decoded.SentAt.IsZero())

	require.NoError(t, n.Close())
	assert.True(t, w.closed)
}

func TestKafkaNotifier_Errors(t *testing.T) {
	t.Run("empty recipient", func(t *testing.T) {
		w := &fakeWriter{}
		err := newKafkaNotifier(w, "svc", logger.Nop()).Notify(context.Background(), Notification{})
		assert.ErrorIs(t, err, ErrEmptyRecipient)
		assert.Empty(t, w.msgs)
	})

	t.Run("writer failure", func(t *testing.T) {
		cause := errors.New("broker unavailable")
		w := &fakeWriter{err: cause}
		err := newKafkaNotifier(w, "svc", logger.Nop()).Notify(context.Background(), Notification{Recipient: "a@b.c"})
		assert.ErrorIs(t, err, cause)
	})
}

func TestNewKafkaNotifier_Validation(t *testing.T) {
	_, err := NewKafkaNotifier(KafkaConfig{Topic: "t"}, logger.Nop())
	assert.Error(t, err)

	_, err = NewKafkaNotifier(KafkaConfig{Brokers: []string{"localhost:9092"}}, logger.Nop())
	assert.Error(t, err)
}

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	failure := errors.New("sink down")
	a := &recordingNotifier{}
	b := &recordingNotifier{err: failure}
	c := &recordingNotifier{}

	err := Multi{a, b, c}.Notify(context.Background(), Notification{Recipient: "x"})

	assert.ErrorIs(t, err, failure)
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
	assert.Len(t, c.got, 1)
}

func TestLogNotifier_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(logger.New(logger.Config{Output: &buf}))

	require.NoError(t, n.Notify(context.Background(), Notification{
		Event:     EventDeclined,
		Recipient: "user@campus.edu",
		Subject:   "Booking Declined",
	}))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "notification", line["msg"])
	assert.Equal(t, EventDeclined, line["event"])
	assert.Equal(t, "user@campus.edu", line["recipient"])
}
