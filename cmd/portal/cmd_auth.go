package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"medunit-portal/internal/domain"
	"medunit-portal/internal/session"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			password = a.readSecret(password, "Password")
			claim, err := a.store.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			a.printf("Signed in as %s (%s)\n", claim.Email, claim.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Logout(); err != nil {
				return err
			}
			a.printf("Signed out\n")
			return nil
		},
	}
}

func (a *app) registerCmd() *cobra.Command {
	var p session.RegisterPayload
	var role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a patient or doctor account",
		RunE: func(cmd *cobra.Command, args []string) error {
			p.Role, _ = domain.ParseRole(role)
			p.Password = a.readSecret(p.Password, "Password")
			p.ConfirmPassword = a.readSecret(p.ConfirmPassword, "Confirm password")
			if err := a.store.Register(cmd.Context(), p); err != nil {
				return err
			}
			a.printf("Registration successful. Sign in with: portal login --email %s\n", p.Email)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.Name, "name", "", "full name")
	f.StringVar(&p.Email, "email", "", "email")
	f.StringVar(&p.Password, "password", "", "password, at least 6 characters (prompted when empty)")
	f.StringVar(&p.ConfirmPassword, "confirm", "", "password again (prompted when empty)")
	f.StringVar(&role, "role", string(domain.RolePatient), "patient or doctor")
	f.StringVar(&p.StudentID, "student-id", "", "student ID (patients)")
	f.StringVar(&p.Specialization, "specialization", "", "specialization (doctors)")
	return cmd
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard("/profile"); err != nil {
				return err
			}
			profile, _ := a.client.ProfileOrClaim(cmd.Context(), a.claim())
			return a.render(profile, func(w io.Writer) {
				fmt.Fprintf(w, "Name:\t%s\n", profile.Name)
				fmt.Fprintf(w, "Email:\t%s\n", profile.Email)
				fmt.Fprintf(w, "Role:\t%s\n", a.claim().Role)
				if profile.StudentID != "" {
					fmt.Fprintf(w, "Student ID:\t%s\n", profile.StudentID)
				}
				if profile.Specialization != "" {
					fmt.Fprintf(w, "Specialization:\t%s\n", profile.Specialization)
				}
			})
		},
	}
}

func (a *app) forgotPasswordCmd() *cobra.Command {
	var email, role string
	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Request a password reset token",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, _ := domain.ParseRole(role)
			if !r.In(domain.RolePatient, domain.RoleDoctor) {
				return domain.NewValidationError("role", "must be patient or doctor")
			}
			ticket, err := a.client.ForgotPassword(cmd.Context(), email, r)
			if err != nil {
				return err
			}
			return a.render(ticket, func(w io.Writer) {
				fmt.Fprintln(w, "If an account exists for this email, a reset link has been generated.")
				if ticket.ResetToken != "" {
					fmt.Fprintf(w, "Reset token:\t%s\n", ticket.ResetToken)
					fmt.Fprintf(w, "Reset URL:\t%s\n", ticket.ResetURL)
				}
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&role, "role", string(domain.RolePatient), "account role: patient or doctor")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (a *app) resetPasswordCmd() *cobra.Command {
	var p session.ResetPasswordPayload
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password with a reset token",
		RunE: func(cmd *cobra.Command, args []string) error {
			p.NewPassword = a.readSecret(p.NewPassword, "New password")
			p.ConfirmPassword = a.readSecret(p.ConfirmPassword, "Confirm password")
			if err := a.client.ResetPassword(cmd.Context(), p); err != nil {
				return err
			}
			a.printf("Password reset. You can now sign in.\n")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&p.Token, "token", "", "reset token")
	f.StringVar(&p.Email, "email", "", "account email")
	f.StringVar(&p.NewPassword, "password", "", "new password (prompted when empty)")
	f.StringVar(&p.ConfirmPassword, "confirm", "", "new password again (prompted when empty)")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show portal counters (admin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.guard("/admin", domain.RoleAdmin); err != nil {
				return err
			}
			stats, err := a.client.AdminStats(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(stats, func(w io.Writer) {
				fmt.Fprintf(w, "Patients:\t%d\n", stats.Patients)
				fmt.Fprintf(w, "Doctors:\t%d\n", stats.Doctors)
				fmt.Fprintf(w, "Appointments:\t%d\n", stats.Appointments)
			})
		},
	}
}
