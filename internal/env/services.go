package environment

import (
	"context"
	"log/slog"
	"time"

	"anomonus-bot/internal/api"
	"anomonus-bot/internal/config"
	"anomonus-bot/internal/infra/telegram"
	"anomonus-bot/internal/mapsite"
	"anomonus-bot/internal/stories/legacy"
	"anomonus-bot/internal/stories/links"
	"anomonus-bot/internal/stories/reconcile"
	"anomonus-bot/internal/stories/tiers"
	tgrouter "anomonus-bot/internal/telegram"
	"anomonus-bot/internal/telegram/flows/activatesub"
	"anomonus-bot/internal/telegram/flows/buysub"
	"anomonus-bot/internal/telegram/flows/linkaccount"
	"anomonus-bot/internal/telegram/states"
	"anomonus-bot/internal/workers"
	"anomonus-bot/internal/workers/failurereport"

	"github.com/pkg/errors"
)

type Services struct {
	TelegramRouter *tgrouter.Router
	Dispatcher     *telegram.Dispatcher
	APIHandler     *api.Handler
	Legacy         *legacy.Service
	WorkerService  *workers.Manager
}

func newServices(_ context.Context, clients *Clients, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	var s Services

	if clients.TelegramBot == nil {
		return nil, errors.New("telegram bot is not initialized")
	}

	tierService, err := tiers.NewService(cfg.TiersFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load subscription tiers")
	}
	logger.Info("Subscription tiers loaded", slog.Any("tiers", tierService.IDs()))

	authority := mapsite.NewService(clients.MapSite, time.Now, logger.WithGroup("mapsite"))
	linkService := links.NewService(clients.Store)
	legacyService := legacy.NewService(clients.Store, logger)
	reconcileService := reconcile.NewService(clients.Store, time.Now, logger)

	stateManager := states.NewManager()
	adminChecker := tgrouter.NewAdminChecker(cfg.Telegram.AdminIDs)

	buySubHandler := buysub.NewHandler(
		clients.TelegramBot,
		authority,
		linkService,
		tierService,
		buysub.Config{
			Currency:          cfg.Payments.Currency,
			ProviderToken:     cfg.Payments.ProviderToken,
			Title:             cfg.Payments.InvoiceTitle,
			Description:       cfg.Payments.InvoiceDescription,
			StarsURL:          cfg.Links.StarsURL,
			VerifyPreCheckout: cfg.Payments.VerifyPreCheckout,
		},
		logger,
	)

	linkAccountHandler := linkaccount.NewHandler(
		clients.TelegramBot,
		stateManager,
		authority,
		linkService,
		tierService,
		buySubHandler,
		logger,
	)

	activateSubHandler := activatesub.NewHandler(
		clients.TelegramBot,
		authority,
		linkService,
		tierService,
		reconcileService,
		logger,
	)

	s.TelegramRouter = tgrouter.NewRouter(
		clients.TelegramBot,
		stateManager,
		linkService,
		linkAccountHandler,
		buySubHandler,
		activateSubHandler,
		tgrouter.Links{
			TermsURL:      cfg.Links.TermsURL,
			PaySupportURL: cfg.Links.PaySupportURL,
			SupportURL:    cfg.Links.SupportURL,
		},
		logger,
	)
	s.Dispatcher = telegram.NewDispatcher(s.TelegramRouter, cfg.Telegram.Workers, logger.WithGroup("dispatcher"))

	s.APIHandler = api.NewHandler(authority, legacyService, logger.WithGroup("api"))
	s.Legacy = legacyService

	var jobs []workers.Worker
	if cfg.Reconcile.Enabled {
		jobs = append(jobs, failurereport.NewWorker(
			reconcileService,
			clients.TelegramBot,
			adminChecker.AdminIDs(),
			cfg.Reconcile.Schedule,
			logger.WithGroup("failure_report"),
		))
	}
	s.WorkerService = workers.NewManager(logger, jobs...)

	return &s, nil
}
