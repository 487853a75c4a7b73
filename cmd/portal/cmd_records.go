package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"medunit-portal/internal/apiclient"
	"medunit-portal/internal/dashboard"
	"medunit-portal/internal/domain"
)

func (a *app) recordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "records",
		Short: "List medical records",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard("/medical-records", domain.RolePatient, domain.RoleDoctor); err != nil {
				return err
			}
			records, err := a.client.Records(cmd.Context())
			if err != nil {
				return err
			}
			role := a.claim().Role
			return a.render(records, func(w io.Writer) {
				if len(records) == 0 {
					fmt.Fprintln(w, "No medical records")
					return
				}
				for _, rec := range records {
					writeRecord(w, rec, role)
					fmt.Fprintln(w)
				}
			})
		},
	}
}

func writeRecord(w io.Writer, rec domain.MedicalRecord, role domain.Role) {
	fmt.Fprintf(w, "Record:\t%s\n", rec.ID)
	fmt.Fprintf(w, "Date:\t%s\n", rec.CreatedAt.Local().Format(domain.DateLayout))
	other, label := rec.Doctor, "Doctor"
	if role == domain.RoleDoctor {
		other, label = rec.Patient, "Patient"
	}
	if other != nil {
		fmt.Fprintf(w, "%s:\t%s\n", label, other.Name)
	}
	fmt.Fprintf(w, "Diagnosis:\t%s\n", rec.Diagnosis)
	for i, item := range rec.Prescription {
		fmt.Fprintf(w, "  %d.\t%s, %s\n", i+1, item.Medicine, item.Dosage)
	}
	if rec.Notes != "" {
		fmt.Fprintf(w, "Notes:\t%s\n", rec.Notes)
	}
}

func (a *app) patientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patients",
		Short: "List patients (doctors)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard("/medical-records", domain.RoleDoctor); err != nil {
				return err
			}
			patients, err := a.client.Patients(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(patients, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSTUDENT ID")
				for _, p := range patients {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Email, p.StudentID)
				}
			})
		},
	}
}

func (a *app) addRecordCmd() *cobra.Command {
	var (
		rec apiclient.NewRecord
		rx  []string
	)
	cmd := &cobra.Command{
		Use:   "add-record",
		Short: "Write a medical record for a patient (doctors)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard("/medical-records", domain.RoleDoctor); err != nil {
				return err
			}
			items, err := parsePrescription(rx)
			if err != nil {
				return err
			}
			rec.Prescription = items
			if strings.TrimSpace(rec.PatientID) == "" {
				return domain.NewValidationError("patient", "is required")
			}
			if strings.TrimSpace(rec.Diagnosis) == "" {
				return domain.NewValidationError("diagnosis", "is required")
			}
			created, err := a.client.CreateRecord(cmd.Context(), rec)
			if err != nil {
				return err
			}
			return a.render(created, func(w io.Writer) {
				fmt.Fprintln(w, "Medical record created.")
				writeRecord(w, created, domain.RoleDoctor)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&rec.PatientID, "patient", "", "patient ID (see: portal patients)")
	f.StringVar(&rec.Diagnosis, "diagnosis", "", "diagnosis")
	f.StringArrayVar(&rx, "rx", nil, `prescription line "Medicine:Dosage", repeatable`)
	f.StringVar(&rec.Notes, "notes", "", "additional notes")
	return cmd
}

// parsePrescription reads "Medicine:Dosage" lines in order.
func parsePrescription(lines []string) ([]domain.PrescriptionItem, error) {
	items := make([]domain.PrescriptionItem, 0, len(lines))
	for _, line := range lines {
		medicine, dosage, ok := strings.Cut(line, ":")
		medicine, dosage = strings.TrimSpace(medicine), strings.TrimSpace(dosage)
		if !ok || medicine == "" || dosage == "" {
			return nil, domain.NewValidationError("rx", fmt.Sprintf("%q must look like Medicine:Dosage", line))
		}
		items = append(items, domain.PrescriptionItem{Medicine: medicine, Dosage: dosage})
	}
	return items, nil
}

func (a *app) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show counts and notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard("/dashboard", domain.RolePatient, domain.RoleDoctor); err != nil {
				return err
			}
			var (
				appts   []domain.Appointment
				records []domain.MedicalRecord
			)
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() (err error) {
				appts, err = a.engine.Refresh(ctx)
				return err
			})
			g.Go(func() (err error) {
				records, err = a.client.Records(ctx)
				return err
			})
			if err := g.Wait(); err != nil {
				return err
			}

			sum := dashboard.Summarize(a.claim().Role, appts, records, time.Now())
			return a.render(sum, func(w io.Writer) {
				fmt.Fprintf(w, "Upcoming:\t%d\n", sum.UpcomingCount)
				fmt.Fprintf(w, "Today:\t%d\n", sum.TodayCount)
				fmt.Fprintf(w, "Pending:\t%d\n", sum.PendingCount)
				fmt.Fprintf(w, "Recent records:\t%d\n", sum.RecentRecordCount)
				for _, n := range sum.Notifications {
					mark := " "
					if n.Urgent {
						mark = "!"
					}
					fmt.Fprintf(w, "%s %s\n", mark, n.Message)
				}
			})
		},
	}
}
