package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	require.NoError(t, r.PublishAppointment(context.Background(), AppointmentEvent{Type: AppointmentBooked, AppointmentID: "APT1"}))
	require.Len(t, r.Events(), 1)
	assert.Equal(t, "APT1", r.Events()[0].AppointmentID)

	r.Err = errors.New("broker down")
	assert.Error(t, r.PublishAppointment(context.Background(), AppointmentEvent{}))
	assert.Len(t, r.Events(), 1)
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.PublishAppointment(context.Background(), AppointmentEvent{}))
}

func TestCircuitBreakerTrips(t *testing.T) {
	cb := NewCircuitBreaker("test", time.Minute)
	fail := func() (interface{}, error) { return nil, errors.New("unreachable") }

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(fail)
		assert.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	_, err := cb.Execute(func() (interface{}, error) { return nil, nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
