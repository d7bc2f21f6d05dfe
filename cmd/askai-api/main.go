// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"askai/internal/ai"
	"askai/internal/config"
	httptransport "askai/internal/http"
	"askai/internal/infra"
	"askai/internal/maps"
	"askai/internal/modules/askai"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	provider, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
	if err != nil {
		log.Fatal().Err(err).Msg("init gemini")
	}
	defer provider.Close()

	var resolver askai.DestinationResolver
	if cfg.AI.MapsKey != "" {
		places, err := maps.NewPlacesService(cfg.AI.MapsKey)
		if err != nil {
			log.Fatal().Err(err).Msg("init places")
		}
		resolver = places
	}

	store := askai.NewStore(dbPool)
	publisher := askai.NewPublisher(redisClient)
	askSvc := askai.NewService(store, provider, publisher, resolver)

	router := httptransport.NewRouter(httptransport.ServerDeps{
		AskAI:     askSvc,
		Events:    publisher,
		AuthToken: cfg.Auth.Token,
		KeepAlive: time.Duration(cfg.Stream.KeepAliveSeconds) * time.Second,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", cfg.HTTP.Addr).Msg("askai api listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("serve")
	}
}
