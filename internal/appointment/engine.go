package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"medunit-portal/internal/domain"
)

// CancelPrompt is the question put to the patient before a cancellation.
const CancelPrompt = "Are you sure you want to cancel this appointment?"

var (
	// ErrCancellationDeclined is returned when the confirmation step says no.
	ErrCancellationDeclined = errors.New("cancellation not confirmed")
	// ErrRefreshFailed wraps a failed post-mutation refresh. The mutation
	// itself went through.
	ErrRefreshFailed = errors.New("refresh after update failed")
)

// Remote is the appointment side of the portal API.
type Remote interface {
	CreateAppointment(ctx context.Context, req BookingRequest) (domain.Appointment, error)
	ListAppointments(ctx context.Context) ([]domain.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id string, status domain.AppointmentStatus) (domain.Appointment, error)
	CancelAppointment(ctx context.Context, id string) error
}

// SessionReader exposes the current session snapshot.
type SessionReader interface {
	Session() domain.Session
}

// Confirmer asks the user an explicit yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Engine drives bookings and status changes. The server is the source of
// truth: every successful mutation is followed by a full Refresh and the
// local collection is never patched by hand.
type Engine struct {
	remote  Remote
	session SessionReader
	now     func() time.Time
	log     zerolog.Logger

	mu           sync.Mutex
	appointments []domain.Appointment
}

// Option customises an Engine.
type Option func(*Engine)

// WithClock replaces time.Now for booking-window checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

func NewEngine(remote Remote, session SessionReader, opts ...Option) *Engine {
	e := &Engine{
		remote:  remote,
		session: session,
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Appointments returns a copy of the last refreshed collection.
func (e *Engine) Appointments() []domain.Appointment {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Appointment, len(e.appointments))
	copy(out, e.appointments)
	return out
}

// Refresh replaces the collection with the server's role-scoped list.
func (e *Engine) Refresh(ctx context.Context) ([]domain.Appointment, error) {
	if _, err := e.actor(); err != nil {
		return nil, err
	}
	list, err := e.remote.ListAppointments(ctx)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.appointments = list
	e.mu.Unlock()
	return e.Appointments(), nil
}

// Book creates a pending appointment for the signed-in patient.
func (e *Engine) Book(ctx context.Context, req BookingRequest) (domain.Appointment, error) {
	claim, err := e.actor()
	if err != nil {
		return domain.Appointment{}, err
	}
	if claim.Role != domain.RolePatient {
		return domain.Appointment{}, domain.NewAuthError("only patients can book appointments")
	}

	req.Symptoms = strings.TrimSpace(req.Symptoms)
	if err := ValidateBooking(req, e.now()); err != nil {
		return domain.Appointment{}, err
	}

	created, err := e.remote.CreateAppointment(ctx, req)
	if err != nil {
		return domain.Appointment{}, err
	}
	e.log.Info().Str("appointment", created.ID).Str("doctor", req.DoctorID).Str("date", req.Date).Msg("appointment booked")

	if _, err := e.Refresh(ctx); err != nil {
		return created, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	if fresh, ok := e.find(created.ID); ok {
		return fresh, nil
	}
	return created, nil
}

// UpdateStatus moves appointment id to status on behalf of the signed-in
// actor, following the lifecycle table. Patients may only act on their own
// appointments; their cancellations are sent as withdrawals.
func (e *Engine) UpdateStatus(ctx context.Context, id string, status domain.AppointmentStatus) (domain.Appointment, error) {
	claim, err := e.actor()
	if err != nil {
		return domain.Appointment{}, err
	}

	current, ok := e.find(id)
	if !ok {
		if _, err := e.Refresh(ctx); err != nil {
			return domain.Appointment{}, err
		}
		if current, ok = e.find(id); !ok {
			return domain.Appointment{}, domain.NewValidationError("appointment", "not found")
		}
	}

	if claim.Role == domain.RolePatient && current.PatientID != claim.SubjectID {
		return domain.Appointment{}, domain.NewValidationError("appointment", "belongs to another patient")
	}
	if err := CheckTransition(current.Status, status, claim.Role); err != nil {
		return current, err
	}

	updated := current
	if claim.Role == domain.RolePatient {
		err = e.remote.CancelAppointment(ctx, id)
		updated.Status = domain.StatusCancelled
	} else {
		updated, err = e.remote.UpdateAppointmentStatus(ctx, id, status)
	}
	if err != nil {
		return current, err
	}
	e.log.Info().Str("appointment", id).Str("from", string(current.Status)).Str("to", string(status)).
		Str("actor", string(claim.Role)).Msg("appointment status changed")

	if _, err := e.Refresh(ctx); err != nil {
		return updated, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	if fresh, ok := e.find(id); ok {
		return fresh, nil
	}
	return updated, nil
}

// Cancel withdraws one of the signed-in patient's pending appointments after
// confirm agrees to CancelPrompt. Cancellation is irreversible, so a nil
// confirmer counts as "no".
func (e *Engine) Cancel(ctx context.Context, id string, confirm Confirmer) (domain.Appointment, error) {
	claim, err := e.actor()
	if err != nil {
		return domain.Appointment{}, err
	}
	if claim.Role != domain.RolePatient {
		return domain.Appointment{}, domain.NewAuthError("only patients can withdraw appointments")
	}
	if confirm == nil || !confirm.Confirm(CancelPrompt) {
		return domain.Appointment{}, ErrCancellationDeclined
	}
	return e.UpdateStatus(ctx, id, domain.StatusCancelled)
}

func (e *Engine) actor() (*domain.IdentityClaim, error) {
	s := e.session.Session()
	if !s.Ready {
		return nil, domain.NewAuthError("session is still loading")
	}
	if s.Claim == nil {
		return nil, domain.NewAuthError("not signed in")
	}
	return s.Claim, nil
}

func (e *Engine) find(id string) (domain.Appointment, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, a := range e.appointments {
		if a.ID == id {
			return a, true
		}
	}
	return domain.Appointment{}, false
}
