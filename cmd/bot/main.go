package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vkorchagin/workers-bot/internal/bot"
	"github.com/vkorchagin/workers-bot/internal/config"
	"github.com/vkorchagin/workers-bot/internal/dialog"
	"github.com/vkorchagin/workers-bot/internal/domain/reminders"
	"github.com/vkorchagin/workers-bot/internal/domain/tasks"
	"github.com/vkorchagin/workers-bot/internal/domain/users"
	"github.com/vkorchagin/workers-bot/internal/infra/db"
	httpx "github.com/vkorchagin/workers-bot/internal/infra/http"
	"github.com/vkorchagin/workers-bot/internal/infra/logger"
	"github.com/vkorchagin/workers-bot/internal/observability"
	"github.com/vkorchagin/workers-bot/internal/storage/fstore"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/subosito/gotenv"
)

// repos собирает хранилища под выбранный бэкенд.
type repos struct {
	tasks     tasks.Repo
	users     users.Repo
	reminders reminders.Repo
	states    dialog.Repo
	ping      func(ctx context.Context) error
	close     func()
}

func runMigrations(dsn string) error {
	sqlDB, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() { _ = sqlDB.Close() }()
	return goose.Up(sqlDB, "migrations")
}

func openPostgres(ctx context.Context, cfg config.Config, log *slog.Logger) (*repos, error) {
	if err := runMigrations(cfg.Postgres.DSN); err != nil {
		return nil, err
	}
	log.Info("migrations applied")

	pool, err := db.Connect(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	return &repos{
		tasks:     tasks.NewPGRepo(pool),
		users:     users.NewPGRepo(pool),
		reminders: reminders.NewPGRepo(pool),
		states:    dialog.NewPGRepo(pool),
		ping:      pool.Ping,
		close:     pool.Close,
	}, nil
}

func openFile(cfg config.Config) (*repos, error) {
	open := func(name string) (*fstore.Store, error) {
		return fstore.Open(filepath.Join(cfg.Storage.Dir, name+".json"))
	}
	tasksSt, err := open("tasks")
	if err != nil {
		return nil, err
	}
	usersSt, err := open("users")
	if err != nil {
		return nil, err
	}
	remSt, err := open("reminders")
	if err != nil {
		return nil, err
	}
	statesSt, err := open("dialog_states")
	if err != nil {
		return nil, err
	}
	return &repos{
		tasks:     tasks.NewFileRepo(tasksSt),
		users:     users.NewFileRepo(usersSt),
		reminders: reminders.NewFileRepo(remSt),
		states:    dialog.NewFileRepo(statesSt),
		ping:      func(context.Context) error { return nil },
		close:     func() {},
	}, nil
}

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("config/example.yaml")
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var r *repos
	switch cfg.Storage.Driver {
	case "file":
		r, err = openFile(cfg)
	default:
		r, err = openPostgres(ctx, cfg, log)
	}
	if err != nil {
		log.Error("storage init failed", "driver", cfg.Storage.Driver, "err", err)
		return
	}
	defer r.close()
	log.Info("storage ready", "driver", cfg.Storage.Driver)

	metrics := observability.New(prometheus.DefaultRegisterer)
	taskSvc := tasks.NewService(r.tasks, log, metrics)

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Error("telegram auth failed", "err", err)
		return
	}
	log.Info("telegram authorized", "account", api.Self.UserName)

	b := bot.New(api, log, r.users, r.states, taskSvc, r.reminders,
		cfg.Telegram.AdminChatID, metrics)
	taskSvc.SetNotifier(b)

	srv := httpx.New(cfg.HTTP.Addr, &httpx.Handler{
		Tasks:     taskSvc,
		Users:     r.users,
		Reminders: r.reminders,
		Log:       log,
		Ping:      r.ping,
	}, cfg.Metrics.Enabled)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	go func() {
		if err := b.Run(ctx, 30); err != nil {
			log.Error("bot stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
}
