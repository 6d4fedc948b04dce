// Command metacontextd runs the HTTP transport wrapper around a single
// meta-context engine instance: callers upsert knowledge objects and lanes,
// then request synthesized working memory or a full LLM completion grounded
// in it.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog/log"

	"metacontext/internal/fanout"
	"metacontext/internal/metacontext"
	"metacontext/internal/observability"
	"metacontext/internal/tokenizer"
	"metacontext/internal/transport"
	"metacontext/internal/version"
)

func main() {
	observability.InitLogger("", envOr("LOG_LEVEL", "info"))
	log.Info().Str("version", version.Version).Msg("metacontextd: starting")

	anthropicKey := os.Getenv("ANTHROPIC_API_KEY")
	model := envOr("ANTHROPIC_MODEL", string(anthropic.ModelClaude3_7SonnetLatest))
	sdk := anthropic.NewClient(option.WithAPIKey(anthropicKey))

	ctx := metacontext.CreateDefaultContext("metacontextd", metacontext.WithTokenizer(tokenizer.New(sdk, model)))

	if pub, err := fanout.NewKafkaEventPublisher(kafkaConfigFromEnv()); err != nil {
		log.Warn().Err(err).Msg("metacontextd: kafka publisher disabled")
	} else if pub != nil {
		pub.Subscribe(ctx.Hooks())
		defer pub.Close()
	}

	addr := envOr("METACONTEXTD_ADDR", ":8080")
	srv := &http.Server{
		Addr:    addr,
		Handler: transport.NewServer(ctx, sdk, model),
	}

	go func() {
		log.Info().Str("addr", addr).Msg("metacontextd: listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("metacontextd: server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("metacontextd: graceful shutdown failed")
	}
}

func kafkaConfigFromEnv() fanout.Config {
	enabled, _ := strconv.ParseBool(os.Getenv("METACONTEXT_KAFKA_ENABLED"))
	return fanout.Config{
		Enabled: enabled,
		Brokers: envOr("METACONTEXT_KAFKA_BROKERS", "localhost:9092"),
		Topic:   envOr("METACONTEXT_KAFKA_TOPIC", "metacontext.events"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
