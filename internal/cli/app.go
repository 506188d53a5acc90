// Package cli is the caltrack command line client.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/caltrack/caltrack-go/internal/api"
	"github.com/caltrack/caltrack-go/internal/config"
	"github.com/caltrack/caltrack-go/internal/model"
	"github.com/caltrack/caltrack-go/internal/session"
	"github.com/caltrack/caltrack-go/internal/state"
	"golang.org/x/term"
)

var (
	errNotLoggedIn  = errors.New("not logged in, run `caltrack login` first")
	errAdminOnly    = errors.New("this command is available to admins only")
	errPremiumOnly  = errors.New("the calorie calculator is available to premium accounts only")
	errInactiveUser = errors.New("your account is suspended")
)

// App is everything a command needs.
type App struct {
	Config  config.Client
	Store   state.Store
	API     *api.Client
	Session *session.Manager
	Now     func() time.Time

	in     io.Reader
	lines  *bufio.Reader
	out    io.Writer
	errOut io.Writer
	closer func() error
}

// Open creates the app from the client settings, with state in SQLite.
func Open(ctx context.Context, cfg config.Client) (*App, error) {
	store, err := state.OpenSQLite(ctx, cfg.StatePath)
	if err != nil {
		return nil, err
	}
	client := api.NewClient(cfg.APIURL, &http.Client{Timeout: cfg.Timeout})
	app := New(cfg, store, client, os.Stdin, os.Stdout, os.Stderr)
	app.closer = store.Close
	return app, nil
}

// New wires an app around the given store and client.
func New(cfg config.Client, store state.Store, client *api.Client, in io.Reader, out, errOut io.Writer) *App {
	app := &App{
		Config: cfg,
		Store:  store,
		API:    client,
		Now:    time.Now,
		in:     in,
		out:    out,
		errOut: errOut,
	}

	app.Session = session.NewManager(client, store,
		session.WithClock(func() time.Time { return app.Now() }),
		session.WithLogger(slog.Default()),
		session.WithNotifier(notifier{out: out, errOut: errOut}),
		session.WithOnLogout(func(context.Context) error {
			_, err := fmt.Fprintln(errOut, "Session ended. Run `caltrack login` to sign in again.")
			return err
		}),
	)
	client.SetTokenSource(app.Session.BearerToken)
	client.OnUnauthorized(app.Session.Logout)
	return app
}

func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}

// user returns the logged-in user or errNotLoggedIn.
func (a *App) user() (model.User, error) {
	u := a.Session.CurrentUser()
	if u == nil {
		return model.User{}, errNotLoggedIn
	}
	return *u, nil
}

// readSecret prompts for a password without echo on a terminal, or reads a line
// from piped input.
func (a *App) readSecret(label string) (string, error) {
	fmt.Fprint(a.errOut, label+": ")
	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.errOut)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
		}
		return string(raw), nil
	}

	if a.lines == nil {
		a.lines = bufio.NewReader(a.in)
	}
	line, err := a.lines.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// notifier prints session outcomes.
type notifier struct {
	out    io.Writer
	errOut io.Writer
}

func (n notifier) Success(msg string) { fmt.Fprintln(n.out, msg) }
func (n notifier) Error(msg string)   { fmt.Fprintln(n.errOut, "error: "+msg) }

// reportedError marks an error the notifier already showed.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err}
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, app *App, args []string) int {
	root := NewRootCmd(app)
	root.SetArgs(args)
	root.SetIn(app.in)
	root.SetOut(app.out)
	root.SetErr(app.errOut)

	if err := root.ExecuteContext(ctx); err != nil {
		var r reportedError
		if !errors.As(err, &r) {
			fmt.Fprintln(app.errOut, "error: "+session.Message(err))
		}
		return 1
	}
	return 0
}
