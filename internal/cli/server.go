package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"quiz-attempt-service/internal/app"
	"quiz-attempt-service/internal/auth"
	"quiz-attempt-service/internal/bank"
	"quiz-attempt-service/internal/config"
	"quiz-attempt-service/internal/events"
	transport "quiz-attempt-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log.Level)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	if cfg.Quiz.SeedSample {
		if err := bank.Seed(ctx, b.store, bank.SampleQuizzes()); err != nil {
			return err
		}
		logger.Info().Int("quizzes", len(bank.SampleQuizzes())).Msg("sample quizzes seeded")
	}
	quizRepo := b.quizRepository(cfg, logger)

	broker := events.NewBroker()
	publisher := events.Fanout{broker}
	if cfg.NATS.URL != "" {
		nc, err := nats.Connect(cfg.NATS.URL, nats.Name("quiz-attempt-service"))
		if err != nil {
			return err
		}
		defer nc.Close()
		relay := events.NewNATSRelay(nc, cfg.NATS.Subject, logger)
		if err := relay.Forward(ctx, broker); err != nil {
			return err
		}
		publisher = append(publisher, relay)
		logger.Info().Str("subject", cfg.NATS.Subject).Msg("nats relay enabled")
	}

	validate := validator.New()
	attempts := app.NewAttemptService(b.store, quizRepo, validate, logger,
		app.WithEvents(publisher),
		app.WithStrictFinalize(cfg.StrictFinalize()),
	)
	profiles := app.NewProfileService(b.store, validate, publisher, logger)
	tokens := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, config.TTLDuration(cfg.Auth.TokenTTL, 12*time.Hour))

	router := transport.NewRouter(
		transport.RouterConfig{Tokens: tokens, AllowedOrigins: cfg.Server.AllowedOrigins, Logger: logger},
		transport.NewHandler(attempts, profiles, quizRepo, logger),
		transport.NewWSHandler(broker, logger),
	)

	// no WriteTimeout: it would also cut hijacked websocket connections
	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", finalPort).Bool("strict_finalize", cfg.StrictFinalize()).Msg("starting quiz service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info().Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
