// cmd/client/main.go
package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sozercan/ollama-sentiment/internal/config"
	"github.com/sozercan/ollama-sentiment/internal/logging"
	"github.com/sozercan/ollama-sentiment/internal/ollama"
	"github.com/sozercan/ollama-sentiment/internal/view"
)

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:          "client",
		Short:        "Front-end for the sentiment analysis service",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")

	rootCmd.AddCommand(serveCmd(), analyzeCmd(), statusCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("client failed: %v", err)
	}
}

// setup loads configuration, configures logging and builds the view client.
// The returned closer releases the log output.
func setup() (*config.Config, *view.Client, io.Closer, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	logCloser, err := logging.Setup(cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}

	ollamaClient, err := ollama.NewClient(cfg.Ollama.URL, &http.Client{})
	if err != nil {
		logCloser.Close()
		return nil, nil, nil, err
	}

	client := view.NewClient(view.ClientOptions{
		BackendURL:    cfg.Client.BackendURL,
		Timeout:       cfg.Client.Timeout,
		StatusTimeout: cfg.Client.StatusTimeout,
		DisplayModel:  cfg.Client.DisplayModel,
	}, &http.Client{}, ollamaClient)

	return cfg, client, logCloser, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser front-end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, closer, err := setup()
			if err != nil {
				return err
			}
			defer closer.Close()

			return view.NewPage(cfg.Client, client).Run()
		},
	}
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [text...]",
		Short: "Analyze the sentiment of text",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, closer, err := setup()
			if err != nil {
				return err
			}
			defer closer.Close()

			msg := client.Analyze(cmd.Context(), strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	var check string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the backend server and Ollama",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var msgs []view.Message
			switch check {
			case view.CheckBackend, view.CheckOllama, view.CheckAll:
			default:
				return fmt.Errorf("unknown check %q", check)
			}

			_, client, closer, err := setup()
			if err != nil {
				return err
			}
			defer closer.Close()

			if check == view.CheckBackend || check == view.CheckAll {
				msgs = append(msgs, client.CheckBackend(cmd.Context()))
			}
			if check == view.CheckOllama || check == view.CheckAll {
				msgs = append(msgs, client.CheckOllama(cmd.Context())...)
			}

			for _, m := range msgs {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&check, "check", view.CheckAll, "what to check: backend, ollama or all")

	return cmd
}
