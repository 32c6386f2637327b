package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v9"

	"github.com/dskvich/chatgpt-websocket-bot/pkg/api/handler"
	"github.com/dskvich/chatgpt-websocket-bot/pkg/api/middleware"
	"github.com/dskvich/chatgpt-websocket-bot/pkg/fileprocessor"
	"github.com/dskvich/chatgpt-websocket-bot/pkg/logger"
	"github.com/dskvich/chatgpt-websocket-bot/pkg/openai"
	"github.com/dskvich/chatgpt-websocket-bot/pkg/repository"
	"github.com/dskvich/chatgpt-websocket-bot/pkg/services"
	"github.com/dskvich/chatgpt-websocket-bot/pkg/workers"
)

type Config struct {
	OpenAIToken             string        `env:"OPEN_AI_TOKEN,required"`
	Addr                    string        `env:"ADDR" envDefault:":8000"`
	GptModel                string        `env:"GPT_MODEL" envDefault:"gpt-4o-mini"`
	SystemPrompt            string        `env:"SYSTEM_PROMPT"`
	AttachmentTTL           time.Duration `env:"ATTACHMENT_TTL" envDefault:"10m"`
	AttachmentSweepInterval time.Duration `env:"ATTACHMENT_SWEEP_INTERVAL" envDefault:"1m"`
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))

	if err := runMain(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func runMain() error {
	workerGroup, err := setupWorkers()
	if err != nil {
		return err
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGHUP)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return workerGroup.Start(ctx)
}

func setupWorkers() (workers.Group, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}

	var worker workers.Worker
	var workerGroup workers.Group

	openAIClient, err := openai.NewClient(cfg.OpenAIToken)
	if err != nil {
		return nil, fmt.Errorf("creating open ai client: %w", err)
	}

	attachmentRepository := repository.NewAttachmentRepository(cfg.AttachmentTTL)
	processor := fileprocessor.NewProcessor()

	chatService := services.NewChatService(
		openAIClient,
		attachmentRepository,
		cfg.GptModel,
		cfg.SystemPrompt,
	)

	indexHandler := handler.NewIndex()
	uploadHandler := handler.NewUpload(processor, attachmentRepository)
	chatHandler := handler.NewChat(chatService)

	mux := http.NewServeMux()
	mux.Handle("/", middleware.RequestID(http.HandlerFunc(indexHandler.ServeHome)))
	mux.Handle("/uploadfile", middleware.RequestID(http.HandlerFunc(uploadHandler.UploadFile)))
	mux.Handle("/ws", middleware.RequestID(http.HandlerFunc(chatHandler.Connect)))

	if worker, err = workers.NewHTTPServer(cfg.Addr, mux); err == nil {
		workerGroup = append(workerGroup, worker)
	} else {
		return nil, err
	}

	if worker, err = workers.NewAttachmentJanitor(attachmentRepository, cfg.AttachmentSweepInterval); err == nil {
		workerGroup = append(workerGroup, worker)
	} else {
		return nil, err
	}

	return workerGroup, nil
}
