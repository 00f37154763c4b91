package main

import (
	"context"
	"fmt"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/spf13/cobra"

	"github.com/ascend-ai/ascend"
	"github.com/ascend-ai/ascend/config"
	"github.com/ascend-ai/ascend/core"
	"github.com/ascend-ai/ascend/history"
	"github.com/ascend-ai/ascend/history/sqlite"
	"github.com/ascend-ai/ascend/logging"
	"github.com/ascend-ai/ascend/model"
	anthropicmodel "github.com/ascend-ai/ascend/model/anthropic"
	geminimodel "github.com/ascend-ai/ascend/model/gemini"
	openaimodel "github.com/ascend-ai/ascend/model/openai"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "ascend",
	Short:         "Multi-agent academic assistant",
	Long:          "Ascend dispatches typed tasks to a coordinator, planner, notewriter and advisor sharing one LLM backend.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (env vars use the ASCEND_ prefix)")
}

// buildLogger builds the structured logger from config.
func buildLogger() logging.Logger {
	return logging.NewSlogLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, false)
}

// buildBackend constructs the configured model provider.
func buildBackend(ctx context.Context) (model.Model, error) {
	switch cfg.Provider {
	case config.ProviderMock:
		return model.NewMock(), nil

	case config.ProviderGemini:
		return geminimodel.NewModel(ctx, func(o *geminimodel.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.Temperature = cfg.Temperature
			o.MaxTokens = int32(cfg.MaxTokens)
			o.APIKey = cfg.APIKey
		})

	case config.ProviderOpenAI:
		client := openaisdk.NewClient(option.WithAPIKey(cfg.APIKey))
		return openaimodel.NewModelFromClient(&client, func(o *openaimodel.Options) {
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = int64(cfg.MaxTokens)
		}), nil

	case config.ProviderAnthropic:
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if cfg.Model != "" {
				o.Model = anthropicsdk.Model(cfg.Model)
			}
			o.Temperature = cfg.Temperature
			o.MaxTokens = int64(cfg.MaxTokens)
			o.APIKey = cfg.APIKey
		}), nil

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// buildHistory constructs the configured history store. The returned closer
// is a no-op for the in-memory backend.
func buildHistory(ctx context.Context) (core.HistoryStore, func() error, error) {
	switch cfg.HistoryBackend {
	case "sqlite":
		store, err := sqlite.Open(ctx, cfg.HistoryPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return history.NewInMemoryStore(), func() error { return nil }, nil
	}
}

// buildApp wires the full assistant from config.
func buildApp(ctx context.Context) (*ascend.Ascend, func() error, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	backend, err := buildBackend(ctx)
	if err != nil {
		return nil, nil, err
	}
	store, closeStore, err := buildHistory(ctx)
	if err != nil {
		return nil, nil, err
	}

	app, err := ascend.New(backend, func(o *ascend.Options) {
		o.RetryPolicy = cfg.RetryPolicy()
		o.History = store
		o.Logger = buildLogger()
	})
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return app, closeStore, nil
}
