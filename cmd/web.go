package cmd

import (
	"context"
	"os/signal"
	"syscall"

	httpserver "github.com/OliveiraNt/polyglot/internal/adapters/http"
	"github.com/OliveiraNt/polyglot/internal/application"
	"github.com/OliveiraNt/polyglot/internal/config"
	"github.com/OliveiraNt/polyglot/internal/infrastructure/kafka"
	"github.com/OliveiraNt/polyglot/internal/infrastructure/repository"
	"github.com/OliveiraNt/polyglot/internal/utils"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the language catalog over HTTP",
	Long: `Load the language manifest, watch it for changes and serve the catalog,
the translation status page and reload events. This is the default command.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	config.InitI18n()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return StartWeb(ctx, cfg)
}

// StartWeb loads the catalog and runs the HTTP server, the manifest watcher
// and the optional Kafka relay until ctx is cancelled.
func StartWeb(ctx context.Context, cfg config.FileConfig) error {
	repo := repository.NewCatalogRepository(cfg.Manifest)
	defer repo.Close()

	var (
		pub   *kafka.Publisher
		relay *application.ReloadRelay
	)
	if cfg.Kafka.Enabled() {
		var err error
		pub, err = kafka.NewPublisher(cfg.Kafka)
		if err != nil {
			return err
		}
		defer pub.Close()
		utils.Logger.Info("kafka publisher enabled",
			"brokers", cfg.Kafka.Brokers,
			"topic", cfg.Kafka.Topic,
			"auth", cfg.Kafka.GetAuthType(),
		)
		if err := pub.EnsureTopic(ctx); err != nil {
			utils.Logger.Warn("could not ensure reload topic", "err", err)
		}
		relay = application.NewReloadRelay(pub)
		repo.Subscribe(relay.Handle)
	}

	// A broken manifest at startup is not fatal: the API answers 503 until a
	// reload succeeds.
	if err := repo.LoadFromFile(); err != nil {
		utils.Logger.Error("failed to load language manifest", "manifest", cfg.Manifest, "err", err)
	}

	if cfg.Watch {
		if err := repo.Watch(); err != nil {
			return err
		}
		utils.Logger.Info("watching language files", "manifest", cfg.Manifest)
	}

	languageService := application.NewLanguageService(repo)
	server := httpserver.New(languageService, repo)
	if pub != nil {
		server.WithBrokerHealth(pub)
	}
	utils.Logger.Info("HTTP UI starting", "addr", cfg.HTTP.Addr)

	g, gctx := errgroup.WithContext(ctx)
	if relay != nil {
		g.Go(func() error { return relay.Run(gctx) })
	}
	g.Go(func() error { return server.Run(gctx, cfg.HTTP.Addr) })
	g.Go(func() error {
		<-gctx.Done()
		return repo.Close()
	})

	return g.Wait()
}
