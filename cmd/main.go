package main

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"intent-chat/ai"
	"intent-chat/api"
	"intent-chat/errors"
	"intent-chat/moderation"
	"intent-chat/observability"
	"intent-chat/repositories"
	"intent-chat/services"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer (database cleanup included)
// executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Model: load persisted weights for this corpus, or train once now.
	// Training failures are fatal: the process must not serve requests
	// without a model.
	classifier, err := loadOrTrainClassifier(config, repositories.NewModelRepository(db), log)
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrModelUnavailable, err)
	}

	// 4. Search index (bluge)
	searchRepository, err := repositories.NewSearchRepository(config.BlugeFilepath, log)
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = searchRepository.Close()
	}()

	// 5. Moderation
	censoredChar, err := CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}
	moderator, err := moderation.NewModerator(config.CensoredWordList(), censoredChar)
	if err != nil {
		return fmt.Errorf("building moderator failed: %w", err)
	}

	// 6. Services & API
	userRepository := repositories.NewUserRepository(db)
	ledgerRepository := repositories.NewLedgerRepository(db, log)
	chatRepository := repositories.NewChatRepository(db, log, config.LimitRecords)
	monitoring := observability.NewMonitoringManager(log)

	authService := services.NewAuthService(userRepository, config.InitialTokens, config.AuthTokenDuration)
	chatService := services.NewChatService(
		classifier, ai.NewTemplateResponder(), moderator,
		ledgerRepository, chatRepository, searchRepository,
		log, config.MessageCost, config.MaxContentLength,
	)

	handler := api.NewHandler(authService, chatService, userRepository, ledgerRepository, monitoring, log)
	router := api.NewRouter(handler)

	// 7. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 8. HTTP Server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: router}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && !goerrors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 9. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("Program stopped cleanly")

	return nil
}

// loadOrTrainClassifier keys persisted weights by a hash of the corpus, so a
// restart only retrains when the corpus changed (or when FORCE_RETRAIN asks
// for it).
func loadOrTrainClassifier(config Config, models repositories.IModelRepository, log *slog.Logger) (*ai.Classifier, error) {
	corpus, err := ai.LoadCorpus(config.CorpusFilepath)
	if err != nil {
		return nil, err
	}

	trainingConfig := ai.TrainingConfig{
		HiddenSize:   config.HiddenSize,
		Epochs:       config.TrainingEpochs,
		LearningRate: config.LearningRate,
		Seed:         config.TrainingSeed,
	}

	hash := ai.CorpusHash(corpus)
	if !config.ForceRetrain {
		if weights, err := models.Load(hash); err == nil {
			classifier, err := ai.RestoreClassifier(corpus, weights, trainingConfig, log)
			if err == nil {
				log.Info("Restored trained model", "corpus_hash", hash[:12])
				return classifier, nil
			}
			log.Warn("Persisted weights unusable, retraining", "err", err)
		}
	}

	classifier, err := ai.TrainClassifier(corpus, trainingConfig, log)
	if err != nil {
		return nil, err
	}

	weights, err := classifier.Weights()
	if err != nil {
		return nil, err
	}
	if err := models.Save(hash, weights); err != nil {
		// Persisting is an optimisation; serving can start without it.
		log.Warn("Saving trained weights failed", "err", err)
	}
	return classifier, nil
}
