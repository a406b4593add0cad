package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"servegate/internal/config"
	"servegate/internal/httpapi"
	"servegate/internal/registryclient"
	"servegate/internal/serving"
	"servegate/internal/sink"
)

var version = "dev"

func main() {
	root := buildRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "servegated",
		Short:         "Model-serving request dispatcher daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var (
		addr       string
		configPath string
		modelName  string
		loadMode   string
		corsOrigin string
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the model over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Config{}
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				cfg = loaded
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if modelName != "" {
				cfg.ModelName = modelName
			}
			if loadMode != "" {
				cfg.LoadMode = loadMode
			}
			if cfg.Addr == "" {
				cfg.Addr = ":8080"
			}
			if cfg.ModelName == "" {
				cfg.ModelName = "echo"
			}
			if corsOrigin != "" {
				httpapi.SetCORSOptions(true, splitCSV(corsOrigin),
					[]string{"GET", "POST"}, []string{"Content-Type", "X-Request-ID"})
			}
			return run(cfg)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", envOr("SERVEGATE_ADDR", ""), "HTTP listen address, e.g. :8080")
	serveCmd.Flags().StringVar(&configPath, "config", envOr("SERVEGATE_CONFIG", ""), "Path to a yaml/json/toml config file")
	serveCmd.Flags().StringVar(&modelName, "model-name", "", "Name of the served model, optionally name:version")
	serveCmd.Flags().StringVar(&loadMode, "load-mode", "", "Model load mode: sync|async")
	serveCmd.Flags().StringVar(&corsOrigin, "cors-origins", "", "Comma-separated allowed CORS origins (enables CORS)")
	root.AddCommand(serveCmd)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the servegated version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	})

	return root
}

func run(cfg config.Config) error {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		logger = logger.Level(lvl)
	}

	hostname, _ := os.Hostname()
	host := serving.HostContext{
		Project:         cfg.Project,
		FunctionName:    cfg.FunctionName,
		FunctionTag:     cfg.FunctionTag,
		FunctionUID:     cfg.FunctionUID,
		WorkerID:        cfg.WorkerID,
		Hostname:        hostname,
		TrackModels:     cfg.TrackModels,
		MockMode:        cfg.MockMode,
		ForceMonitoring: cfg.ForceMonitoring,
		Verbose:         cfg.Verbose,
	}
	if cfg.FunctionName != "" {
		host.FunctionURI = cfg.Project + "/" + cfg.FunctionName
	}

	var out serving.Sink
	switch {
	case cfg.SinkURL != "":
		out = sink.NewHTTP(cfg.SinkURL, cfg.SinkToken)
	case cfg.SinkPath != "":
		out = sink.NewFile(cfg.SinkPath)
	}
	host.StreamEnabled = out != nil

	var registry serving.RegistryClient
	if cfg.RegistryURL != "" {
		registry = registryclient.New(cfg.RegistryURL, cfg.RegistryToken)
	}

	server := serving.NewWithConfig(serving.Config{
		Name:            cfg.ModelName,
		Model:           newEchoModel(),
		Protocol:        cfg.Protocol,
		InputPath:       cfg.InputPath,
		ResultPath:      cfg.ResultPath,
		DisableSharding: cfg.DisableSharding,
		Host:            host,
		Registry:        registry,
		Sink:            out,
		SampleRate:      cfg.SampleRate,
		BatchSize:       cfg.BatchSize,
		Logger:          logger,
	})
	defer server.Close()

	mode := serving.LoadAsync
	if strings.EqualFold(cfg.LoadMode, string(serving.LoadSync)) {
		mode = serving.LoadSync
	}
	if err := server.RunLoad(context.Background(), mode); err != nil {
		return err
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	httpapi.SetBaseContext(baseCtx)
	httpapi.SetLogger(logger)
	if cfg.MaxBodyBytes > 0 {
		httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	}

	mux := httpapi.NewMux(server)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Str("model", cfg.ModelName).Msg("servegated listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	cancelBase()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated list, trimming spaces and dropping
// empty items.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
