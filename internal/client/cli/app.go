package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/avdeenkov/shopsync/internal/client/api"
	"github.com/avdeenkov/shopsync/internal/client/bus"
	"github.com/avdeenkov/shopsync/internal/client/cart"
	"github.com/avdeenkov/shopsync/internal/client/config"
	"github.com/avdeenkov/shopsync/internal/client/session"
	"github.com/avdeenkov/shopsync/internal/client/storage"
	"github.com/avdeenkov/shopsync/internal/logging"
)

// App wires the client together: durable storage, the event bus and
// cross-process watcher, the session manager and the cart sync engine.
type App struct {
	config  *config.Config
	log     logging.Logger
	repo    *storage.SQLiteRepository
	bus     *bus.MemBus
	watcher *bus.StorageWatcher
	api     api.Client
	session *session.Manager
	cart    *cart.Engine
	reader  *bufio.Reader
}

func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	repo, err := storage.Open(ctx, c.StorageDSN)
	if err != nil {
		return nil, err
	}

	b := bus.NewMemBus(8)
	watcher := bus.NewStorageWatcher(repo, b, c.WatchInterval, log)

	apiClient := api.NewHTTPClient(c.ServerBaseURL, c.HTTPTimeout)

	creds := session.NewCredentialStore(repo, b, log)
	mgr := session.NewManager(apiClient, creds, b, log)

	engine := cart.NewEngine(cart.NewStore(), repo, apiClient, mgr, cart.DefaultRetryPolicy, log)

	return &App{
		config:  c,
		log:     log,
		repo:    repo,
		bus:     b,
		watcher: watcher,
		api:     apiClient,
		session: mgr,
		cart:    engine,
		reader:  bufio.NewReader(os.Stdin),
	}, nil
}

// Run starts the background machinery and enters the REPL. It returns when
// the user exits or stdin closes, after flushing any pending cart push.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.session.Start(ctx)
	go a.watcher.Run(ctx)
	a.cart.Load(ctx)

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)

	a.cart.Flush()
	a.session.Stop()
	cancel()
	_ = a.bus.Close()
	_ = a.api.Close()
	if err := a.repo.Close(); err != nil {
		a.log.Warn(ctx, "closing local store", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

// getStatus renders the prompt suffix: "(email role)" when signed in,
// "(anonymous)" otherwise.
func (a *App) getStatus() string {
	s := a.session.Current()
	if s.Credential == nil {
		return "(anonymous)"
	}
	return "(" + s.Credential.User.Email + " " + string(s.Credential.User.Role) + ")"
}
