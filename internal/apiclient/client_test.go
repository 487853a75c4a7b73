package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medunit-portal/internal/appointment"
	"medunit-portal/internal/domain"
	"medunit-portal/internal/session"
)

func writeEnvelope(w http.ResponseWriter, status int, data any, errMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{"status": status, "message": "ok"}
	if data != nil {
		body["data"] = data
	}
	if errMsg != "" {
		body["message"] = "An error occurred"
		body["error"] = errMsg
	}
	_ = json.NewEncoder(w).Encode(body)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api", WithTokenSource(func() string { return "tok-1" }))
}

func TestLogin(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		var body loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "amina@campus.edu", body.Email)
		writeEnvelope(w, http.StatusOK, map[string]any{"token": "a.b.c", "role": "Doctor"}, "")
	})

	res, err := c.Login(context.Background(), "amina@campus.edu", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "a.b.c", res.Token)
	assert.Equal(t, domain.RoleDoctor, res.Role)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, nil, "Invalid email or password")
	})

	_, err := c.Login(context.Background(), "x@y.z", "bad")
	require.Error(t, err)
	assert.True(t, domain.IsAuth(err))
	assert.True(t, domain.IsRemote(err))
	assert.Equal(t, "Invalid email or password", domain.Message(err))
}

func TestErrorMessageFallbacks(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"error field", 400, `{"status":400,"message":"An error occurred","error":"Time slot already booked"}`, "Time slot already booked"},
		{"message only", 409, `{"status":409,"message":"conflict here"}`, "conflict here"},
		{"not json", 502, `<html>bad gateway</html>`, "request failed: bad gateway"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := c.ListAppointments(context.Background())
			var remote *domain.RemoteError
			require.ErrorAs(t, err, &remote)
			assert.Equal(t, tc.status, remote.StatusCode)
			assert.Equal(t, tc.want, remote.Message)
		})
	}
}

func TestUnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := New(srv.URL).ListAppointments(context.Background())
	var remote *domain.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Zero(t, remote.StatusCode)
	assert.Error(t, remote.Err)
}

func TestBearerTokenAndAppointments(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/appointments":
			var req appointment.BookingRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "d-1", req.DoctorID)
			writeEnvelope(w, http.StatusCreated, domain.Appointment{ID: "a-1", DoctorID: req.DoctorID, Status: domain.StatusPending}, "")
		case r.Method == http.MethodPatch && r.URL.Path == "/api/appointments/a-1":
			var req statusRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			writeEnvelope(w, http.StatusOK, domain.Appointment{ID: "a-1", Status: req.Status}, "")
		case r.Method == http.MethodDelete && r.URL.Path == "/api/appointments/a-1":
			writeEnvelope(w, http.StatusOK, nil, "")
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	})
	ctx := context.Background()

	created, err := c.CreateAppointment(ctx, appointment.BookingRequest{DoctorID: "d-1", Date: "2026-10-19", TimeSlot: "09:00 AM", Symptoms: "x"})
	require.NoError(t, err)
	assert.Equal(t, "a-1", created.ID)

	updated, err := c.UpdateAppointmentStatus(ctx, "a-1", domain.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, updated.Status)

	require.NoError(t, c.CancelAppointment(ctx, "a-1"))
}

func TestDoctorsAreCached(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeEnvelope(w, http.StatusOK, []domain.Person{{ID: "d-1", Name: "Dr. Otieno", Specialization: "General"}}, "")
	})

	for i := 0; i < 3; i++ {
		doctors, err := c.Doctors(context.Background())
		require.NoError(t, err)
		require.Len(t, doctors, 1)
	}
	assert.Equal(t, 1, calls)
}

func TestDoctorsReturnsCopy(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeEnvelope(w, http.StatusOK, []domain.Person{{ID: "d-1", Name: "Dr. Otieno"}}, "")
	})

	first, err := c.Doctors(context.Background())
	require.NoError(t, err)
	first[0].Name = "changed"

	second, err := c.Doctors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dr. Otieno", second[0].Name)
	second[0].Name = "changed again"

	third, err := c.Doctors(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Dr. Otieno", third[0].Name)
	assert.Equal(t, 1, calls)
}

func TestForbiddenIsAuthError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusForbidden, nil, "You do not have permission to access this resource.")
	})
	_, err := c.AdminStats(context.Background())
	assert.True(t, domain.IsAuth(err))
}

func TestProfileOrClaim(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, nil, "")
	})
	claim := domain.IdentityClaim{SubjectID: "p-1", Role: domain.RolePatient, Email: "kip@campus.edu"}

	p, ok := c.ProfileOrClaim(context.Background(), claim)
	assert.False(t, ok)
	assert.Equal(t, "kip@campus.edu", p.Name)
	assert.Equal(t, "kip@campus.edu", p.Email)
}

func TestResetPasswordValidatesFirst(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	err := c.ResetPassword(context.Background(), session.ResetPasswordPayload{
		Token: "t", Email: "kip@campus.edu", NewPassword: "secret1", ConfirmPassword: "secret2",
	})
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, "passwords do not match", domain.Message(err))
	assert.False(t, called)
}

func TestForgotPasswordSendsRole(t *testing.T) {
	var bodies []map[string]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/forgot-password", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		writeEnvelope(w, http.StatusOK, ResetTicket{ResetToken: "rt-1"}, "")
	})

	ticket, err := c.ForgotPassword(context.Background(), "amina@campus.edu", domain.RoleDoctor)
	require.NoError(t, err)
	assert.Equal(t, "rt-1", ticket.ResetToken)
	_, err = c.ForgotPassword(context.Background(), "amina@campus.edu", "")
	require.NoError(t, err)

	assert.Equal(t, []map[string]string{
		{"email": "amina@campus.edu", "role": "doctor"},
		{"email": "amina@campus.edu", "role": "patient"},
	}, bodies)
}

func TestCreateRecordSendsEmptyPrescription(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []any{}, body["prescription"])
		writeEnvelope(w, http.StatusCreated, domain.MedicalRecord{ID: "r-1", Diagnosis: "flu"}, "")
	})
	rec, err := c.CreateRecord(context.Background(), NewRecord{PatientID: "p-1", Diagnosis: "flu"})
	require.NoError(t, err)
	assert.Equal(t, "r-1", rec.ID)
}
