package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bingitech/pressroom/internal/agent"
	"github.com/bingitech/pressroom/internal/brand"
	"github.com/bingitech/pressroom/internal/cli"
	"github.com/bingitech/pressroom/internal/db"
	"github.com/bingitech/pressroom/internal/ledger"
	"github.com/bingitech/pressroom/internal/notify"
	"github.com/bingitech/pressroom/internal/platform"
	"github.com/bingitech/pressroom/internal/provider"
	"github.com/bingitech/pressroom/internal/repository"
	"github.com/bingitech/pressroom/internal/service"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
)

func main() {
	err := run()
	switch {
	case err == nil:
	case errors.Is(err, cli.ErrPartialRun):
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Local .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	dbPath := os.Getenv("PRESSROOM_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".pressroom", "pressroom.db")
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	draftRepo := repository.NewSQLiteDraftRepo(database)
	costRepo := repository.NewSQLiteCostEntryRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	// Provider clients share one config and observer.
	provCfg := provider.LoadConfig()
	var provObserver provider.Observer = provider.NoopObserver{}
	var ucObservers []service.UseCaseObserver
	if os.Getenv("PRESSROOM_LOG_CALLS") != "" {
		provObserver = provider.NewLogObserver(os.Stderr)
		ucObservers = append(ucObservers, service.NewLogUseCaseObserver(os.Stderr))
	}

	textPlatform := envOr("PRESSROOM_TEXT_PLATFORM", "micro-blog")
	visualPlatform := envOr("PRESSROOM_VISUAL_PLATFORM", "micro-blog")
	agents := []agent.Agent{
		agent.NewTextAgent(provider.NewTextClient(provCfg, provObserver), provCfg, textPlatform),
		agent.NewVisualAgent(provider.NewImageClient(provCfg, provObserver), provCfg, visualPlatform),
	}

	webhook := notify.NewClient(os.Getenv("DISCORD_WEBHOOK_URL"))
	platClient := platform.NewClientFromEnv()

	configPath := envOr("PRESSROOM_BRAND_CONFIG", "./brand.json")

	app := &cli.App{
		Orchestrator: service.NewOrchestrator(agents, draftRepo, draftRepo, costRepo, uow, ucObservers...),
		Review:       service.NewReviewGate(draftRepo, webhook, ucObservers...),
		Publisher:    service.NewPublisher(draftRepo, platClient),
		Status:       service.NewStatusService(draftRepo),
		Ledger:       ledger.New(costRepo),
		Notifier:     webhook,

		LoadConfig: func() (*brand.Config, error) { return brand.Load(configPath) },
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}

	return cli.NewRootCmd(app).Execute()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
