package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rewol/rewol/internal/config"
	"github.com/rewol/rewol/internal/hosts"
	"github.com/rewol/rewol/internal/probe"
	"github.com/rewol/rewol/internal/proxy"
	"github.com/rewol/rewol/internal/wol"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the proxy",
	Long: `Run the proxy: start the background host monitor and serve the
/status and /wol endpoints.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if configFile == "" {
		log.Error().Msg("config file is required")
		return cmd.Help()
	}

	parser := config.NewParser()
	cfg, err := parser.LoadProxyFile(configFile)
	if err != nil {
		log.Error().Err(err).Str("file", configFile).Msg("failed to load config")
		return err
	}

	log.Info().
		Str("config", configFile).
		Int("port", cfg.Port).
		Int("hosts", len(cfg.Hosts)).
		Msg("configuration loaded")

	// Raw ICMP needs privileges; fail now, not on the first probe cycle.
	pinger, err := probe.NewICMPPinger()
	if err != nil {
		log.Error().Err(err).Msg("ICMP probing unavailable")
		return err
	}

	table := hosts.NewTable(cfg.Hosts)
	monitor := probe.NewMonitor(table, pinger, cfg.CheckInterval, cfg.ProbeTimeout, log.Logger)
	dispatcher := wol.New(table, log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("received signal, shutting down")
		cancel()
	}()

	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		monitor.Run(ctx)
	}()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: proxy.NewServer(cfg, table, dispatcher, log.Logger).Router(),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("proxy listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			return err
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
		<-monitorDone
	}

	log.Info().Msg("proxy stopped")
	return nil
}
