package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	goredis "github.com/redis/go-redis/v9"

	cataloginadapter "granth/internal/modules/catalog/adapter/in"
	catalogoutadapter "granth/internal/modules/catalog/adapter/out"
	catalogout "granth/internal/modules/catalog/port/out"
	catalogservice "granth/internal/modules/catalog/service"
	catalogusecase "granth/internal/modules/catalog/usecase"
	engagementinadapter "granth/internal/modules/engagement/adapter/in"
	engagementoutadapter "granth/internal/modules/engagement/adapter/out"
	engagementout "granth/internal/modules/engagement/port/out"
	engagementservice "granth/internal/modules/engagement/service"
	engagementusecase "granth/internal/modules/engagement/usecase"
	viewerinadapter "granth/internal/modules/viewer/adapter/in"
	vieweroutadapter "granth/internal/modules/viewer/adapter/out"
	viewerdomain "granth/internal/modules/viewer/domain"
	viewerservice "granth/internal/modules/viewer/service"
	viewerusecase "granth/internal/modules/viewer/usecase"
	"granth/internal/platform/clock"
	"granth/internal/platform/config"
	"granth/internal/platform/httpserver"
	"granth/internal/platform/id"
	"granth/internal/platform/identity"
	"granth/internal/platform/logging"
	"granth/internal/platform/migration"
	"granth/internal/platform/postgres"
	"granth/internal/platform/redis"
	"granth/internal/platform/sqlite"
	uiapp "granth/internal/ui/app"
)

// drainTimeout bounds how long shutdown waits for queued engagement writes.
const drainTimeout = 5 * time.Second

type App struct {
	Config config.Config
	User   identity.User
	Log    *slog.Logger

	CatalogCLI     cataloginadapter.CLIHandler
	CatalogHTTP    cataloginadapter.HTTPHandler
	EngagementCLI  engagementinadapter.CLIHandler
	EngagementHTTP engagementinadapter.HTTPHandler
	ViewerCLI      viewerinadapter.CLIHandler
	ViewerTUI      viewerinadapter.TUIHandler

	writer  *engagementservice.Writer
	closers []func()
}

// NewLogger builds the process logger. The TUI owns the terminal, so it logs
// to the vault's log file instead of stderr.
func NewLogger(cfg config.Config, toFile bool) (*slog.Logger, io.Closer, error) {
	var out io.Writer = os.Stderr
	var closer io.Closer = io.NopCloser(nil)
	if toFile {
		f, err := logging.OpenFile(cfg.LogPath)
		if err != nil {
			return nil, nil, err
		}
		out, closer = f, f
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, out)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return log, closer, nil
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	user, err := identity.Resolve(cfg.Identity.UserID, cfg.Identity.AccessToken, cfg.Identity.JWTSecret)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, User: user, Log: log}

	bookStore, engagementStore, err := app.openStores(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	bookCache, err := app.openCache(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	clk := clock.SystemClock{}
	ids := id.UUIDv7{}

	catalogUC := catalogusecase.NewInteractor(catalogservice.NewBookService(clk, bookStore, bookCache, log))

	app.writer = engagementservice.NewWriter(log, 0)
	engagementSvc := engagementservice.NewEngagementService(clk, engagementStore)
	trackers := engagementservice.NewTrackerFactory(clk, ids, engagementSvc, app.writer,
		engagementoutadapter.NewVaultJournal(cfg.VaultPath), log)
	engagementUC := engagementusecase.NewInteractor(engagementSvc, trackers)

	viewerUC := viewerusecase.NewInteractor(viewerservice.NewViewerService(
		viewerservice.Config{
			Gestures: viewerdomain.GestureConfig{
				SwipeThreshold:  cfg.Gesture.SwipeThreshold,
				TapSlop:         cfg.Gesture.TapSlop,
				DoubleTapWindow: time.Duration(cfg.Gesture.DoubleTapMS) * time.Millisecond,
			},
			LoadTimeout: cfg.LoadTimeout(),
		},
		vieweroutadapter.NewCatalogResolver(catalogUC),
		vieweroutadapter.NewHTTPLoader(&http.Client{}, cfg.HTTP.MaxPDFBytes, log),
		vieweroutadapter.NewEngagementTracker(engagementUC, user.ID),
		log,
	))

	app.CatalogCLI = cataloginadapter.NewCLIHandler(catalogUC)
	app.CatalogHTTP = cataloginadapter.NewHTTPHandler(catalogUC)
	app.EngagementCLI = engagementinadapter.NewCLIHandler(engagementUC, user.ID)
	app.EngagementHTTP = engagementinadapter.NewHTTPHandler(engagementUC)
	app.ViewerCLI = viewerinadapter.NewCLIHandler(viewerUC)
	app.ViewerTUI = viewerinadapter.NewTUIHandler(viewerUC)
	return app, nil
}

// Close drains pending engagement writes, then releases the stores.
func (a *App) Close() {
	if a.writer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		if err := a.writer.Close(ctx); err != nil {
			a.Log.Warn("engagement_drain_failed", slog.Any("error", err))
		}
		cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// OpenTarget names the book the TUI opens on start; empty opens the Books tab.
type OpenTarget struct {
	Slug string
	URL  string
	Page int
}

func RunTUI(app *App, target OpenTarget) error {
	model := uiapp.NewModel(app.CatalogCLI, app.EngagementCLI, app.ViewerTUI)
	if target.Slug != "" || target.URL != "" {
		model = model.OpenOnStart(target.Slug, target.URL, target.Page)
	}
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := program.Run()
	return err
}

// Serve runs the JSON API until ctx is cancelled.
func Serve(ctx context.Context, app *App) error {
	srv := httpserver.New(app.Config.HTTP.ListenAddr, app.Log, authenticator(app.Config),
		httpserver.Mount{Prefix: "/books", Routes: app.CatalogHTTP.Routes()},
		httpserver.Mount{Prefix: "/me", Routes: app.EngagementHTTP.Routes()},
	)
	return srv.Run(ctx)
}

// Migrate applies the hosted schema. The sqlite stores create their own tables.
func Migrate(cfg config.Config, log *slog.Logger) error {
	if cfg.Store.Backend != config.BackendPostgres {
		log.Info("migration_skipped", slog.String("backend", cfg.Store.Backend))
		return nil
	}
	return migration.RunUp(cfg.Store.DatabaseURL, log)
}

// authenticator verifies bearer tokens when a secret is configured and
// otherwise acts for the configured local reader.
func authenticator(cfg config.Config) httpserver.Authenticator {
	return func(token string) (identity.User, error) {
		if token != "" {
			return identity.FromToken(token, cfg.Identity.JWTSecret)
		}
		if cfg.Identity.JWTSecret != "" {
			return identity.User{}, errors.New("bearer token required")
		}
		return identity.Resolve(cfg.Identity.UserID, "", "")
	}
}

func (a *App) openStores(ctx context.Context) (catalogout.BookStore, engagementout.Store, error) {
	switch a.Config.Store.Backend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, a.Config.Store.DatabaseURL, a.Log)
		if err != nil {
			return nil, nil, err
		}
		a.addCloser(pool.Close)
		return catalogoutadapter.NewPostgresBookStore(pool), engagementoutadapter.NewPostgresStore(pool), nil
	default:
		db, err := sqlite.Open(ctx, a.Config.DBPath)
		if err != nil {
			return nil, nil, err
		}
		a.addCloser(func() { closeDB(db, a.Log) })
		books, err := catalogoutadapter.NewSQLiteBookStore(ctx, db)
		if err != nil {
			return nil, nil, fmt.Errorf("new book store: %w", err)
		}
		engagement, err := engagementoutadapter.NewSQLiteStore(ctx, db)
		if err != nil {
			return nil, nil, fmt.Errorf("new engagement store: %w", err)
		}
		return books, engagement, nil
	}
}

func (a *App) openCache(ctx context.Context) (catalogout.BookCache, error) {
	switch a.Config.Cache.Kind {
	case config.CacheRedis:
		client, err := redis.NewClient(ctx, a.Config.Cache.RedisURL, a.Config.Cache.Timeout, a.Log)
		if err != nil {
			return nil, err
		}
		a.addCloser(func() { closeRedis(client, a.Log) })
		return catalogoutadapter.NewRedisBookCache(client, a.Config.CacheTTL()), nil
	case config.CacheNone:
		return nil, nil
	default:
		return catalogoutadapter.NewMemoryBookCache(a.Config.Cache.Size, a.Config.CacheTTL()), nil
	}
}

func (a *App) addCloser(fn func()) { a.closers = append(a.closers, fn) }

func closeDB(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Warn("sqlite_close_failed", slog.Any("error", err))
	}
}

func closeRedis(client *goredis.Client, log *slog.Logger) {
	if err := client.Close(); err != nil {
		log.Warn("redis_close_failed", slog.Any("error", err))
	}
}
