package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/config"
	"github.com/dmitrijs2005/gophsocial/internal/client/credstore"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophsocial/internal/client/session"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
)

// sessionService is the part of session.Manager the CLI drives.
type sessionService interface {
	State() models.State
	RestoreSession(ctx context.Context) error
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, req models.RegisterRequest) error
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, upd models.ProfileUpdate) error
	UploadProfilePicture(ctx context.Context, filename string, r io.Reader) (string, error)
	RefreshIdentity(ctx context.Context) error
	VerifyEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

var _ sessionService = (*session.Manager)(nil)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	client  *client.HTTPClient
	session sessionService
	reader  *bufio.Reader
	out     io.Writer

	mu    sync.Mutex
	route session.Route
}

// NewApp opens the credential database and builds the transport and the
// session manager. The manager is registered as the transport's teardown
// handler before anything is sent.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	store := credstore.New(metadata.NewSQLiteRepository(db))

	apiClient, err := client.NewHTTPClient(c.APIBaseURL, store,
		client.WithTimeout(c.RequestTimeout),
		client.WithRateLimit(c.RequestsPerSecond),
		client.WithLogger(logger),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &App{
		config: c,
		logger: logger,
		db:     db,
		client: apiClient,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	m := session.NewManager(apiClient, store, a, logger)
	apiClient.SetUnauthorizedHandler(m)
	a.session = m

	return a, nil
}

// Navigate implements session.Navigator by switching the current view.
func (a *App) Navigate(_ context.Context, route session.Route) {
	a.mu.Lock()
	changed := a.route != route
	a.route = route
	a.mu.Unlock()

	if changed {
		fmt.Fprintf(a.out, "-> %s\n", route)
	}
}

func (a *App) currentRoute() session.Route {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

func (a *App) isLoggedIn() bool {
	return a.session.State().IsAuthenticated()
}

// Run restores the stored session and then serves the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to gophsocial CLI (type 'help' for commands)")

	if err := a.session.RestoreSession(ctx); err != nil {
		a.logger.Warn(ctx, "stored session could not be restored", "error", err)
	}

	if a.isLoggedIn() {
		a.Navigate(ctx, session.RouteDashboard)
	} else {
		a.Navigate(ctx, session.RouteLogin)
	}

	a.Root(ctx)
}

func (a *App) Close() {
	if a.client != nil {
		_ = a.client.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

// reportFailure prints the reason the session manager recorded for err.
func (a *App) reportFailure(err error) error {
	msg := a.session.State().LastError
	if msg == "" {
		msg = err.Error()
	}
	fmt.Fprintln(a.out, "Error:", msg)
	return err
}
