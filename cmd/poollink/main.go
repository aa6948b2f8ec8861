package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/poad/poollink/internal/config"
	"github.com/poad/poollink/internal/directory"
	"github.com/poad/poollink/internal/http/server"
	"github.com/poad/poollink/internal/observability/logger"
)

// Inyectadas por -ldflags en el build de release.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	// .env es opcional; en contenedores la config viene por env directo.
	_ = godotenv.Load()

	var configPath string

	root := &cobra.Command{
		Use:   "poollink",
		Short: "Cross-provider identity reconciliation service",
	}
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "ruta al YAML de configuración (opcional)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Arranca el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Valida la configuración y la conectividad con el directorio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), configPath)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Imprime la versión",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("poollink %s (%s)\n", version, commit)
		},
	}

	root.AddCommand(serveCmd, checkCmd, versionCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log := logger.New(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "poollink",
		Version:     version,
	})
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := server.Build(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("wiring: %w", err)
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      app.Handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		// Espera el bookkeeping en vuelo antes de soltar el proceso.
		return app.Close()
	})

	return g.Wait()
}

func runCheck(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	dir, err := directory.NewCognito(ctx, directory.CognitoConfig{
		Region:          cfg.Directory.Region,
		UserPoolID:      cfg.Directory.UserPoolID,
		ClientID:        cfg.Directory.ClientID,
		Endpoint:        cfg.Directory.Endpoint,
		AccessKeyID:     cfg.Directory.AccessKeyID,
		SecretAccessKey: cfg.Directory.SecretAccessKey,
	})
	if err != nil {
		return fmt.Errorf("directory client: %w", err)
	}

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := dir.ListAccountsByEmail(checkCtx, "connectivity-probe@invalid"); err != nil {
		return fmt.Errorf("directory unreachable: %w", err)
	}

	fmt.Println("ok")
	return nil
}
