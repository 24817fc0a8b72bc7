// cmd/server/main.go
package main

import (
	"log"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/sozercan/ollama-sentiment/internal/analyzer"
	"github.com/sozercan/ollama-sentiment/internal/config"
	"github.com/sozercan/ollama-sentiment/internal/llm"
	"github.com/sozercan/ollama-sentiment/internal/logging"
	"github.com/sozercan/ollama-sentiment/internal/ollama"
	"github.com/sozercan/ollama-sentiment/internal/server"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "server",
		Short:        "Sentiment analysis request handler backed by Ollama",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logCloser, err := logging.Setup(cfg.Log)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ollamaClient, err := ollama.NewClient(cfg.Ollama.URL, &http.Client{})
	if err != nil {
		return err
	}

	var llmProvider llm.Provider
	switch cfg.Ollama.API {
	case config.OllamaAPIOpenAI:
		llmProvider = llm.NewOpenAI(cfg.Ollama.URL, &http.Client{})
	default:
		llmProvider = llm.NewOllama(ollamaClient)
	}

	var puller analyzer.Puller
	if cfg.Ollama.AutoPull {
		puller = ollamaClient
	}

	a := analyzer.New(ollamaClient, llmProvider, puller, analyzer.Options{
		DefaultModel:    cfg.Ollama.DefaultModel,
		Candidates:      cfg.Ollama.Candidates,
		ProbeTimeout:    cfg.Ollama.ProbeTimeout,
		GenerateTimeout: cfg.Ollama.GenerateTimeout,
		AutoPull:        cfg.Ollama.AutoPull,
		PullTimeout:     cfg.Ollama.PullTimeout,
	})

	srv := server.New(*cfg, a)
	slog.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port, "ollama", cfg.Ollama.URL, "api", cfg.Ollama.API)
	return srv.Run()
}
