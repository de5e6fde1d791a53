package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/spf13/cobra"

	"signup-portal/pkg/common/client"
	"signup-portal/pkg/common/config"
	"signup-portal/pkg/common/metrics"
	"signup-portal/pkg/core/signup/notify"
	"signup-portal/pkg/core/signup/reference"
	"signup-portal/pkg/core/signup/service"
	"signup-portal/pkg/core/signup/submission"
	"signup-portal/pkg/web/handler"
	"signup-portal/pkg/web/router"
)

const (
	appName = "signup-portal"
	Version = "0.1.0"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Sign-up form service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(serveCmd(), versionCmd())
	return cmd
}

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load reference data and serve the sign-up page",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Address = addr
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Config file path (JSON or YAML)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.address")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	hlog.SetLevel(cfg.HlogLevel())

	httpClient, err := client.New(cfg.Reference.Timeout, cfg.Submission.Timeout, nil)
	if err != nil {
		return fmt.Errorf("create http client: %w", err)
	}

	m := metrics.New()
	remote := reference.NewRemote(httpClient, cfg.Reference.URL, cfg.Reference.Timeout, m)

	// Startup mode fails fast: no page is served without reference data.
	var provider reference.Provider = remote
	if !cfg.Reference.FetchOnRequest {
		data, err := remote.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("load reference data: %w", err)
		}
		provider = reference.NewStatic(data)
	}

	svc := service.NewSignupService(
		submission.NewClient(httpClient, cfg.Submission.URL, cfg.Submission.Timeout),
		m,
		service.Options{
			Timeout:      cfg.Submission.Timeout,
			RequireValid: cfg.Submission.RequireValid,
			Timing: notify.Timing{
				Success: cfg.Notifications.SuccessAutoClose,
				Error:   cfg.Notifications.ErrorAutoClose,
			},
		},
	)

	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(int(cfg.Middleware.Security.MaxBodySize)),
		server.WithExitWaitTime(cfg.Server.ShutdownTimeout),
	)

	if err := router.RegisterAPIs(h, cfg, router.Dependencies{
		Signup:  handler.NewSignupHandler(provider, svc),
		Health:  handler.NewHealthCheckHandler(provider, cfg.Reference.Timeout),
		Metrics: m,
	}); err != nil {
		return err
	}

	// Drain background posts before exit.
	h.OnShutdown = append(h.OnShutdown, func(ctx context.Context) {
		if err := svc.Wait(ctx); err != nil {
			hlog.Warnf("shutdown with submissions still in flight: %v", err)
		}
	})

	hlog.Infof("%s %s listening on %s", appName, Version, cfg.Server.Address)
	h.Spin()
	return nil
}
