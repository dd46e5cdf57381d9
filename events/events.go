package events

import (
	"context"
	"sync"
	"time"
)

const (
	AppointmentBooked       = "appointment.booked"
	AppointmentStatusChange = "appointment.status_changed"
	PrescriptionCreated     = "appointment.prescription_created"
)

// AppointmentEvent is the message body published after a committed change.
type AppointmentEvent struct {
	Type          string    `json:"type"`
	AppointmentID string    `json:"appointmentId"`
	Doctor        string    `json:"doctor"`
	Patient       string    `json:"patient"`
	From          string    `json:"from,omitempty"`
	To            string    `json:"to"`
	ActorRole     string    `json:"actorRole"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

type Publisher interface {
	PublishAppointment(ctx context.Context, evt AppointmentEvent) error
}

// Noop is used when no broker is configured.
type Noop struct{}

func (Noop) PublishAppointment(context.Context, AppointmentEvent) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	Err    error
	events []AppointmentEvent
}

func (r *Recorder) PublishAppointment(_ context.Context, evt AppointmentEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, evt)
	return nil
}

func (r *Recorder) Events() []AppointmentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]AppointmentEvent(nil), r.events...)
}
