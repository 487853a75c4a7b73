package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"slices"

	"medunit-portal/internal/appointment"
	"medunit-portal/internal/domain"
)

// Doctors lists bookable doctors. The list is cached for DoctorsTTL; callers
// get their own copy.
func (c *Client) Doctors(ctx context.Context) ([]domain.Person, error) {
	if cached, ok := c.cache.Get(doctorsKey); ok {
		return slices.Clone(cached.([]domain.Person)), nil
	}
	var out []domain.Person
	if err := c.do(ctx, http.MethodGet, "/appointments/doctors", nil, &out); err != nil {
		return nil, err
	}
	c.cache.SetDefault(doctorsKey, slices.Clone(out))
	return out, nil
}

func (c *Client) CreateAppointment(ctx context.Context, req appointment.BookingRequest) (domain.Appointment, error) {
	var out domain.Appointment
	err := c.do(ctx, http.MethodPost, "/appointments", req, &out)
	return out, err
}

// ListAppointments returns the caller's role-scoped appointments.
func (c *Client) ListAppointments(ctx context.Context) ([]domain.Appointment, error) {
	var out []domain.Appointment
	if err := c.do(ctx, http.MethodGet, "/appointments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type statusRequest struct {
	Status domain.AppointmentStatus `json:"status"`
}

func (c *Client) UpdateAppointmentStatus(ctx context.Context, id string, status domain.AppointmentStatus) (domain.Appointment, error) {
	var out domain.Appointment
	err := c.do(ctx, http.MethodPatch, "/appointments/"+url.PathEscape(id), statusRequest{Status: status}, &out)
	return out, err
}

// CancelAppointment withdraws one of the patient's own appointments.
func (c *Client) CancelAppointment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/appointments/"+url.PathEscape(id), nil, nil)
}

var _ appointment.Remote = (*Client)(nil)
