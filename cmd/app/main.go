package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/PabloTorresOyarzun/sgdparser/internal/azure"
	"github.com/PabloTorresOyarzun/sgdparser/internal/cache"
	"github.com/PabloTorresOyarzun/sgdparser/internal/config"
	"github.com/PabloTorresOyarzun/sgdparser/internal/converter"
	logpkg "github.com/PabloTorresOyarzun/sgdparser/internal/logger"
	"github.com/PabloTorresOyarzun/sgdparser/internal/metrics"
	"github.com/PabloTorresOyarzun/sgdparser/internal/orchestrator"
	"github.com/PabloTorresOyarzun/sgdparser/internal/sgd"
	"github.com/PabloTorresOyarzun/sgdparser/internal/statuscheck"
	"github.com/PabloTorresOyarzun/sgdparser/internal/web"
	"github.com/PabloTorresOyarzun/sgdparser/internal/workers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	_ = logpkg.Init(logpkg.Options{
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	})
	defer logpkg.Close()

	metrics.Init()

	ctx := context.Background()

	var repo *cache.Repository
	if cfg.Cache.Enabled {
		var err error
		repo, err = cache.Connect(ctx, cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("connecting cache database")
		}
		defer repo.Close()
	} else {
		log.Warn().Msg("result cache disabled")
	}

	azureClient := azure.NewClient(cfg.Azure)
	sgdClient := sgd.NewClient(cfg.Dispatch)

	libre := converter.NewLibreOffice(cfg.Converter)
	if err := libre.Initialize(); err != nil {
		log.Warn().Err(err).Msg("libreoffice unavailable, spreadsheet conversion disabled")
	}
	defer libre.Shutdown()

	pool := workers.NewPool(cfg.Pipeline.WorkerPoolSize())
	pipeline := orchestrator.NewPipeline(cfg.Pipeline, cfg.Azure.CustomModelID, azureClient, azureClient, pool)
	batch := orchestrator.NewBatch(pipeline, libre, cfg.Pipeline)

	checker := statuscheck.New(statuscheck.Options{
		Database:    dbPinger(repo),
		Azure:       azureClient,
		ModelID:     cfg.Azure.CustomModelID,
		DispatchURL: cfg.Dispatch.BaseURL,
		Converter:   libre,
	})

	var results web.ResultCache
	if repo != nil {
		results = repo
	}
	server := web.NewServer(cfg, batch, sgdClient, results, checker)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: server.Routes(),
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

// dbPinger keeps a nil repository out of the status checker without
// handing it a typed-nil interface.
func dbPinger(repo *cache.Repository) statuscheck.Pinger {
	if repo == nil {
		return nil
	}
	return repo
}
