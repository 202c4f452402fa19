// Command mellow is the command line client for the Mellow API: account
// signup and login, the profile image, and the venue deals feed.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"mellow/internal/client"
	"mellow/internal/logging"
	"mellow/internal/session"
)

const defaultServer = "http://localhost:3001"

// readPassword is replaced in tests.
var readPassword = term.ReadPassword

type app struct {
	server     string
	sessionDir string
	verbose    bool

	sessions *session.Manager
	flow     *client.Flow
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "mellow",
		Short:         "Find bars, clubs and restaurants with deals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context())
		},
	}

	server := os.Getenv("MELLOW_SERVER")
	if server == "" {
		server = defaultServer
	}
	root.PersistentFlags().StringVar(&a.server, "server", server, "API base URL")
	root.PersistentFlags().StringVar(&a.sessionDir, "session-dir", "", "directory holding the saved session (default: user config dir)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log diagnostics to stderr")

	root.AddCommand(
		newSignupCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProfileCmd(a),
		newDealsCmd(a),
	)
	return root
}

func (a *app) init(ctx context.Context) error {
	dir := a.sessionDir
	if dir == "" {
		var err error
		if dir, err = session.DefaultDir(); err != nil {
			return err
		}
	}

	logger := zap.NewNop()
	if a.verbose {
		l, err := logging.New("debug", "console")
		if err != nil {
			return err
		}
		logger = l
	}

	a.sessions = session.NewManager(session.NewFileStore(dir))
	if err := a.sessions.Load(ctx); err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	a.flow = client.NewFlow(client.NewAPI(a.server), a.sessions, logger)
	return nil
}

// promptPassword returns flagValue or reads a password from the terminal.
func promptPassword(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(pw)), nil
}

// userMessage is what the user sees for err: server messages verbatim.
func userMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, session.ErrNoSession) {
		return "Not logged in. Run `mellow login` first."
	}
	return err.Error()
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", userMessage(err))
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
