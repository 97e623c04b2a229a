package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/ykvlv/sidekick-bot/internal/buddy"
	"github.com/ykvlv/sidekick-bot/internal/config"
	"github.com/ykvlv/sidekick-bot/internal/ledger"
	"github.com/ykvlv/sidekick-bot/internal/scheduler"
	"github.com/ykvlv/sidekick-bot/internal/store"
	"github.com/ykvlv/sidekick-bot/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.Repo
	router  *telegram.Router
	sched   *scheduler.Scheduler
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, bot: bot, httpSrv: srv}, nil
}

// wire builds the services on top of an opened repo.
func (a *App) wire() {
	owner := store.NewOwner(a.repo)
	l := ledger.New()
	gw := telegram.NewGateway(a.bot, a.log)

	pairing := buddy.New(buddy.Config{
		CodeTTL:    a.cfg.BuddyCodeTTL,
		ConfirmTTL: a.cfg.BuddyConfirmTTL,
	}, gw, buddyLinker{owner: owner, ledger: l}, a.log.Named("buddy"))

	a.router = telegram.NewRouter(gw, a.log, owner, l, pairing, telegram.Timeouts{
		Prompt:  a.cfg.PromptTimeout,
		Journal: a.cfg.JournalTimeout,
		Code:    a.cfg.BuddyCodeTTL,
	})
	a.sched = scheduler.New(owner, l, a.log.Named("scheduler"), gw, scheduler.Config{
		Interval: a.cfg.TickInterval,
		Catchup:  a.cfg.CatchupWindow,
	})
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting sidekick-bot",
		zap.String("http", a.cfg.HTTPAddr),
		zap.Duration("tick", a.cfg.TickInterval),
	)

	// Open SQLite and run migrations.
	repo, err := store.OpenSQLite(ctx, a.cfg.DBPath)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready")

	a.wire()

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.sched.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.bot.StopReceivingUpdates()

			// Create a short-lived shutdown context and cancel it immediately after use.
			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			if a.repo != nil {
				_ = a.repo.Close()
			}
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}
