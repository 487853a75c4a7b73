package appointment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medunit-portal/internal/domain"
)

// fakeRemote behaves like the API service: it owns the appointments and
// returns a fresh copy on every list.
type fakeRemote struct {
	appointments map[string]domain.Appointment
	order        []string
	patientID    string

	lists, creates, patches, deletes int
	listErr                          error
}

func newFakeRemote(patientID string) *fakeRemote {
	return &fakeRemote{appointments: map[string]domain.Appointment{}, patientID: patientID}
}

func (f *fakeRemote) put(a domain.Appointment) {
	if _, ok := f.appointments[a.ID]; !ok {
		f.order = append(f.order, a.ID)
	}
	f.appointments[a.ID] = a
}

func (f *fakeRemote) CreateAppointment(_ context.Context, req BookingRequest) (domain.Appointment, error) {
	f.creates++
	a := domain.Appointment{
		ID:        fmt.Sprintf("a-%d", len(f.order)+1),
		PatientID: f.patientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		TimeSlot:  req.TimeSlot,
		Symptoms:  req.Symptoms,
		Status:    domain.StatusPending,
	}
	f.put(a)
	return a, nil
}

func (f *fakeRemote) ListAppointments(context.Context) ([]domain.Appointment, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Appointment, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.appointments[id])
	}
	return out, nil
}

func (f *fakeRemote) UpdateAppointmentStatus(_ context.Context, id string, status domain.AppointmentStatus) (domain.Appointment, error) {
	f.patches++
	a, ok := f.appointments[id]
	if !ok {
		return domain.Appointment{}, &domain.RemoteError{StatusCode: 404, Message: "Appointment not found"}
	}
	a.Status = status
	f.put(a)
	return a, nil
}

func (f *fakeRemote) CancelAppointment(_ context.Context, id string) error {
	f.deletes++
	a := f.appointments[id]
	a.Status = domain.StatusCancelled
	f.put(a)
	return nil
}

type fixedSession domain.Session

func (s fixedSession) Session() domain.Session { return domain.Session(s) }

func signedIn(id string, role domain.Role) fixedSession {
	return fixedSession{Ready: true, Claim: &domain.IdentityClaim{SubjectID: id, Role: role}}
}

var today = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

func newEngine(remote Remote, s SessionReader) *Engine {
	return NewEngine(remote, s, WithClock(func() time.Time { return today }))
}

func yes(string) bool { return true }

func TestBook_ThirtyDaysAheadIsPending(t *testing.T) {
	remote := newFakeRemote("p-1")
	e := newEngine(remote, signedIn("p-1", domain.RolePatient))

	a, err := e.Book(context.Background(), BookingRequest{
		DoctorID: "d-1", Date: "2026-11-17", TimeSlot: "09:00 AM", Symptoms: "  headache ",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, a.Status)
	assert.Equal(t, "headache", a.Symptoms)
	assert.Equal(t, 1, remote.creates)
	assert.Equal(t, 1, remote.lists, "booking must be followed by a refresh")
	assert.Len(t, e.Appointments(), 1)
}

func TestBook_OutsideWindowCreatesNothing(t *testing.T) {
	remote := newFakeRemote("p-1")
	e := newEngine(remote, signedIn("p-1", domain.RolePatient))

	for _, date := range []string{"2026-10-17", "2026-10-18", "2026-11-18"} {
		_, err := e.Book(context.Background(), BookingRequest{DoctorID: "d-1", Date: date, TimeSlot: "09:00 AM", Symptoms: "x"})
		assert.True(t, domain.IsValidation(err), date)
	}
	assert.Zero(t, remote.creates)
	assert.Zero(t, remote.lists)
}

func TestBook_RequiresReadyPatient(t *testing.T) {
	remote := newFakeRemote("p-1")
	req := BookingRequest{DoctorID: "d-1", Date: "2026-10-20", TimeSlot: "09:00 AM", Symptoms: "x"}

	for _, s := range []fixedSession{
		{Ready: false},
		{Ready: true},
		signedIn("d-1", domain.RoleDoctor),
		signedIn("a-1", domain.RoleAdmin),
	} {
		_, err := newEngine(remote, s).Book(context.Background(), req)
		assert.True(t, domain.IsAuth(err))
	}
	assert.Zero(t, remote.creates)
}

func TestBook_RefreshFailureStillReturnsAppointment(t *testing.T) {
	remote := newFakeRemote("p-1")
	remote.listErr = &domain.RemoteError{StatusCode: 503, Message: "unavailable"}
	e := newEngine(remote, signedIn("p-1", domain.RolePatient))

	a, err := e.Book(context.Background(), BookingRequest{DoctorID: "d-1", Date: "2026-10-20", TimeSlot: "09:00 AM", Symptoms: "x"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRefreshFailed))
	assert.True(t, domain.IsRemote(err))
	assert.Equal(t, domain.StatusPending, a.Status)
}

func TestUpdateStatus_DoctorApprovesThenCannotRevert(t *testing.T) {
	remote := newFakeRemote("p-1")
	remote.put(domain.Appointment{ID: "a-1", PatientID: "p-1", DoctorID: "d-1", Status: domain.StatusPending})
	e := newEngine(remote, signedIn("d-1", domain.RoleDoctor))
	_, err := e.Refresh(context.Background())
	require.NoError(t, err)

	a, err := e.UpdateStatus(context.Background(), "a-1", domain.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, a.Status)
	assert.Equal(t, 1, remote.patches)
	assert.Equal(t, 2, remote.lists)

	_, err = e.UpdateStatus(context.Background(), "a-1", domain.StatusPending)
	assert.True(t, domain.IsInvalidTransition(err))
	assert.Equal(t, 1, remote.patches)
	assert.Equal(t, domain.StatusApproved, remote.appointments["a-1"].Status)
}

func TestUpdateStatus_PatientCannotCancelCompleted(t *testing.T) {
	remote := newFakeRemote("p-1")
	remote.put(domain.Appointment{ID: "a-1", PatientID: "p-1", DoctorID: "d-1", Status: domain.StatusCompleted})
	e := newEngine(remote, signedIn("p-1", domain.RolePatient))

	_, err := e.UpdateStatus(context.Background(), "a-1", domain.StatusCancelled)
	assert.True(t, domain.IsInvalidTransition(err))
	assert.Zero(t, remote.deletes)
	assert.Equal(t, domain.StatusCompleted, remote.appointments["a-1"].Status)
}

func TestUpdateStatus_PatientWithdrawUsesDelete(t *testing.T) {
	remote := newFakeRemote("p-1")
	remote.put(domain.Appointment{ID: "a-1", PatientID: "p-1", DoctorID: "d-1", Status: domain.StatusPending})
	e := newEngine(remote, signedIn("p-1", domain.RolePatient))

	a, err := e.UpdateStatus(context.Background(), "a-1", domain.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, a.Status)
	assert.Equal(t, 1, remote.deletes)
	assert.Zero(t, remote.patches)
}

func TestUpdateStatus_PatientCannotTouchOthers(t *testing.T) {
	remote := newFakeRemote("p-1")
	remote.put(domain.Appointment{ID: "a-1", PatientID: "p-2", DoctorID: "d-1", Status: domain.StatusPending})
	e := newEngine(remote, signedIn("p-1", domain.RolePatient))

	_, err := e.UpdateStatus(context.Background(), "a-1", domain.StatusCancelled)
	assert.True(t, domain.IsValidation(err))
	assert.Zero(t, remote.deletes)
}

func TestUpdateStatus_UnknownAppointment(t *testing.T) {
	remote := newFakeRemote("p-1")
	e := newEngine(remote, signedIn("d-1", domain.RoleDoctor))

	_, err := e.UpdateStatus(context.Background(), "missing", domain.StatusApproved)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, 1, remote.lists)
}

func TestUpdateStatus_RemoteErrorLeavesStateAlone(t *testing.T) {
	remote := newFakeRemote("p-1")
	e := newEngine(remote, signedIn("d-1", domain.RoleDoctor))
	remote.put(domain.Appointment{ID: "a-1", DoctorID: "d-1", Status: domain.StatusPending})
	_, err := e.Refresh(context.Background())
	require.NoError(t, err)
	delete(remote.appointments, "a-1")

	_, err = e.UpdateStatus(context.Background(), "a-1", domain.StatusApproved)
	assert.True(t, domain.IsRemote(err))
	assert.Equal(t, 1, remote.lists)
}

func TestCancel_RequiresConfirmation(t *testing.T) {
	remote := newFakeRemote("p-1")
	remote.put(domain.Appointment{ID: "a-1", PatientID: "p-1", Status: domain.StatusPending})
	e := newEngine(remote, signedIn("p-1", domain.RolePatient))

	var asked string
	_, err := e.Cancel(context.Background(), "a-1", ConfirmFunc(func(p string) bool { asked = p; return false }))
	assert.ErrorIs(t, err, ErrCancellationDeclined)
	assert.Equal(t, CancelPrompt, asked)

	_, err = e.Cancel(context.Background(), "a-1", nil)
	assert.ErrorIs(t, err, ErrCancellationDeclined)
	assert.Zero(t, remote.deletes)

	a, err := e.Cancel(context.Background(), "a-1", ConfirmFunc(yes))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, a.Status)
	assert.Equal(t, 1, remote.deletes)
}

func TestCancel_DoctorIsNotAPatient(t *testing.T) {
	e := newEngine(newFakeRemote("p-1"), signedIn("d-1", domain.RoleDoctor))
	_, err := e.Cancel(context.Background(), "a-1", ConfirmFunc(yes))
	assert.True(t, domain.IsAuth(err))
}

func TestRefresh_RequiresSession(t *testing.T) {
	_, err := newEngine(newFakeRemote("p-1"), fixedSession{Ready: true}).Refresh(context.Background())
	assert.True(t, domain.IsAuth(err))
}
