package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"medunit-portal/internal/apiclient"
	"medunit-portal/internal/appointment"
	"medunit-portal/internal/domain"
	"medunit-portal/internal/gate"
	"medunit-portal/internal/session"
	"medunit-portal/pkg/logger"
)

// app is what every command works with once the session is loaded.
type app struct {
	cfg    *Config
	in     *bufio.Reader
	out    io.Writer
	log    zerolog.Logger
	client *apiclient.Client
	store  *session.Store
	engine *appointment.Engine
}

func newRootCmd(cfg *Config, stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{cfg: cfg, in: bufio.NewReader(stdin), out: stdout}

	root := &cobra.Command{
		Use:           "portal",
		Short:         "Campus medical unit portal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch a.cfg.Out {
			case "text", "json", "yaml":
			default:
				return domain.NewValidationError("out", "must be text, json or yaml")
			}
			a.log = logger.Init(logger.Options{Level: a.cfg.LogLevel, Pretty: true, Output: stderr, Component: "cli"})
			a.client = apiclient.New(a.cfg.APIURL,
				apiclient.WithHTTPClient(&http.Client{Timeout: a.cfg.Timeout}),
				apiclient.WithLogger(a.log))
			a.store = session.NewStore(session.NewFileTokenStore(a.cfg.TokenFile), a.client, session.WithLogger(a.log))
			a.client.SetTokenSource(a.store.Token)
			a.engine = appointment.NewEngine(a.client, a.store, appointment.WithLogger(a.log))
			return a.store.Initialize(cmd.Context())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfg.APIURL, "api-url", a.cfg.APIURL, "portal API base URL (env PORTAL_API_URL)")
	pf.StringVar(&a.cfg.TokenFile, "token-file", a.cfg.TokenFile, "where the sign-in token is kept (env PORTAL_TOKEN_FILE)")
	pf.StringVar(&a.cfg.Out, "out", a.cfg.Out, "output format: text|json|yaml (env PORTAL_OUT)")
	pf.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (env PORTAL_LOG_LEVEL)")

	root.AddCommand(
		a.loginCmd(), a.logoutCmd(), a.registerCmd(), a.whoamiCmd(),
		a.forgotPasswordCmd(), a.resetPasswordCmd(),
		a.doctorsCmd(), a.slotsCmd(), a.bookCmd(), a.appointmentsCmd(),
		a.approveCmd(), a.completeCmd(), a.cancelCmd(),
		a.recordsCmd(), a.patientsCmd(), a.addRecordCmd(),
		a.dashboardCmd(), a.statsCmd(),
	)
	return root
}

// guard runs the access gate for a protected view.
func (a *app) guard(location string, roles ...domain.Role) error {
	d := gate.Evaluate(a.store.Session(), location, roles...)
	if d.Outcome == gate.Redirect {
		a.log.Debug().Str("location", location).Str("target", d.Target).Msg("access denied")
	}
	return d.Err()
}

// claim is only valid after guard succeeded.
func (a *app) claim() domain.IdentityClaim {
	return *a.store.Session().Claim
}

// render prints v as json or yaml, or calls text for the human format.
func (a *app) render(v any, text func(w io.Writer)) error {
	switch a.cfg.Out {
	case "json":
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// confirm asks a yes/no question on the input stream. Anything but y/yes is no.
func (a *app) confirm(prompt string) bool {
	a.printf("%s [y/N]: ", prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// readSecret returns flagValue or asks for it.
func (a *app) readSecret(flagValue, prompt string) string {
	if flagValue != "" {
		return flagValue
	}
	a.printf("%s: ", prompt)
	line, _ := a.in.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
