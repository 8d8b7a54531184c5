package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/caarlos0/env/v11"

	"llm-chat-proxy/handler"
	"llm-chat-proxy/internal/integrations/generation"
	"llm-chat-proxy/internal/integrations/paramstore"
	"llm-chat-proxy/internal/usecase"
)

type Config struct {
	// LLMAPIURL is the generation endpoint, or "ssm:<parameter name>".
	LLMAPIURL string `env:"LLM_API_URL" envDefault:"https://example-generation-host.invalid/generate"`
}

func main() {
	ctx := context.Background()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// ---- Configuration (read only here) ----
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		slog.Error("failed to parse environment", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	genOpts := []generation.Option{generation.WithLogger(logger)}
	if name, ok := paramstore.ParseRef(cfg.LLMAPIURL); ok {
		awsCfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			slog.Error("failed to load AWS config", "err", err)
			os.Exit(1)
		}
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			slog.Error("failed to create SSM client", "err", err)
			os.Exit(1)
		}
		slog.Info("generation endpoint will be read from parameter store", "parameter", name)
		genOpts = append(genOpts, generation.WithParamStore(ssmClient))
	}

	genClient, err := generation.NewClient(cfg.LLMAPIURL, genOpts...)
	if err != nil {
		slog.Error("failed to create generation client", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	chatService, err := usecase.NewChatService(genClient, logger)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(chatService, logger)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
