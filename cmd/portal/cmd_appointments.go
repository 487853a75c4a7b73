package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"medunit-portal/internal/apiclient"
	"medunit-portal/internal/appointment"
	"medunit-portal/internal/domain"
)

func (a *app) doctorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctors",
		Short: "List doctors available for booking",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard("/book-appointment", domain.RolePatient); err != nil {
				return err
			}
			doctors, err := a.client.Doctors(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(doctors, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tSPECIALIZATION")
				for _, d := range doctors {
					fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.Name, d.Specialization)
				}
			})
		},
	}
}

type slotList struct {
	First string   `json:"first" yaml:"first"`
	Last  string   `json:"last" yaml:"last"`
	Slots []string `json:"slots" yaml:"slots"`
}

func (a *app) slotsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "slots",
		Short: "Show bookable dates and time slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			first, last := appointment.BookingWindow(time.Now())
			out := slotList{First: domain.FormatDate(first), Last: domain.FormatDate(last), Slots: domain.TimeSlots}
			return a.render(out, func(w io.Writer) {
				fmt.Fprintf(w, "Dates:\t%s to %s\n", out.First, out.Last)
				fmt.Fprintf(w, "Slots:\t%s\n", strings.Join(out.Slots, ", "))
			})
		},
	}
}

func (a *app) bookCmd() *cobra.Command {
	var req appointment.BookingRequest
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard("/book-appointment", domain.RolePatient); err != nil {
				return err
			}
			appt, err := a.engine.Book(cmd.Context(), req)
			if err != nil && !errors.Is(err, appointment.ErrRefreshFailed) {
				return bookingError(err, req)
			}
			if err != nil {
				a.log.Warn().Err(err).Msg("booked, but the list could not be reloaded")
			}
			return a.render(appt, func(w io.Writer) {
				fmt.Fprintf(w, "Appointment booked successfully.\n")
				writeAppointment(w, appt)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.DoctorID, "doctor", "", "doctor ID (see: portal doctors)")
	f.StringVar(&req.Date, "date", "", "day, YYYY-MM-DD (see: portal slots)")
	f.StringVar(&req.TimeSlot, "slot", "", `time slot, for example "09:00 AM"`)
	f.StringVar(&req.Symptoms, "symptoms", "", "what brings you in")
	return cmd
}

func (a *app) appointmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "appointments",
		Short: "List your appointments",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard("/appointments", domain.RolePatient, domain.RoleDoctor, domain.RoleAdmin); err != nil {
				return err
			}
			list, err := a.engine.Refresh(cmd.Context())
			if err != nil {
				return err
			}
			role := a.claim().Role
			return a.render(list, func(w io.Writer) {
				if len(list) == 0 {
					fmt.Fprintln(w, "No appointments")
					return
				}
				fmt.Fprintln(w, "ID\tDATE\tSLOT\tSTATUS\tWITH\tACTIONS")
				for _, appt := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
						appt.ID, appt.Date, appt.TimeSlot, appt.Status, counterpart(appt, role), actions(appt, role))
				}
			})
		},
	}
}

func (a *app) approveCmd() *cobra.Command {
	return a.statusCmd("approve", "Approve a pending appointment", domain.StatusApproved)
}

func (a *app) completeCmd() *cobra.Command {
	return a.statusCmd("complete", "Mark an approved appointment completed", domain.StatusCompleted)
}

func (a *app) statusCmd(use, short string, to domain.AppointmentStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <appointment-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard("/doctor-dashboard", domain.RoleDoctor); err != nil {
				return err
			}
			appt, err := a.engine.UpdateStatus(cmd.Context(), args[0], to)
			return a.afterMutation(appt, err, "Appointment "+string(to))
		},
	}
}

func (a *app) cancelCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "cancel <appointment-id>",
		Short: "Cancel an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard("/appointments", domain.RolePatient, domain.RoleDoctor); err != nil {
				return err
			}
			confirm := appointment.ConfirmFunc(a.confirm)
			if yes {
				confirm = func(string) bool { return true }
			}

			var (
				appt domain.Appointment
				err  error
			)
			if a.claim().Role == domain.RolePatient {
				appt, err = a.engine.Cancel(cmd.Context(), args[0], confirm)
			} else if confirm(appointment.CancelPrompt) {
				appt, err = a.engine.UpdateStatus(cmd.Context(), args[0], domain.StatusCancelled)
			} else {
				err = appointment.ErrCancellationDeclined
			}
			if errors.Is(err, appointment.ErrCancellationDeclined) {
				a.printf("Cancellation aborted\n")
				return nil
			}
			return a.afterMutation(appt, err, "Appointment cancelled")
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

// bookingError turns the service's slot and doctor rejections into advice.
func bookingError(err error, req appointment.BookingRequest) error {
	var remote *domain.RemoteError
	switch {
	case errors.As(err, &remote) && remote.Conflict():
		return domain.NewValidationError("slot", fmt.Sprintf("%s on %s is already taken, see: portal slots", req.TimeSlot, req.Date))
	case apiclient.IsNotFound(err):
		return domain.NewValidationError("doctor", fmt.Sprintf("no doctor with ID %q, see: portal doctors", req.DoctorID))
	}
	return err
}

// afterMutation reports a status change. A failed reload after a successful
// change is a warning, not a failure.
func (a *app) afterMutation(appt domain.Appointment, err error, done string) error {
	if err != nil && !errors.Is(err, appointment.ErrRefreshFailed) {
		return err
	}
	if err != nil {
		a.log.Warn().Err(err).Msg("updated, but the list could not be reloaded")
	}
	return a.render(appt, func(w io.Writer) {
		fmt.Fprintf(w, "%s.\n", done)
		writeAppointment(w, appt)
	})
}

func writeAppointment(w io.Writer, appt domain.Appointment) {
	fmt.Fprintf(w, "ID:\t%s\n", appt.ID)
	fmt.Fprintf(w, "Date:\t%s %s\n", appt.Date, appt.TimeSlot)
	fmt.Fprintf(w, "Status:\t%s\n", appt.Status)
	if appt.Doctor != nil {
		fmt.Fprintf(w, "Doctor:\t%s\n", appt.Doctor.Name)
	}
	if appt.Symptoms != "" {
		fmt.Fprintf(w, "Symptoms:\t%s\n", appt.Symptoms)
	}
}

// counterpart names the other party of an appointment for role.
func counterpart(appt domain.Appointment, role domain.Role) string {
	p := appt.Doctor
	if role == domain.RoleDoctor {
		p = appt.Patient
	}
	if p == nil {
		return "-"
	}
	return p.Name
}

// actions lists the commands role may run on appt.
func actions(appt domain.Appointment, role domain.Role) string {
	var out []string
	for _, to := range appointment.NextStatuses(appt.Status, role) {
		switch to {
		case domain.StatusApproved:
			out = append(out, "approve")
		case domain.StatusCompleted:
			out = append(out, "complete")
		case domain.StatusCancelled:
			out = append(out, "cancel")
		}
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ",")
}
