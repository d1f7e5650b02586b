package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dkaiser/bankd/internal/admin"
	"github.com/dkaiser/bankd/internal/bank"
	"github.com/dkaiser/bankd/internal/logging"
	"github.com/dkaiser/bankd/internal/observability"
	"github.com/dkaiser/bankd/internal/server"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "bankd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to bankd config (toml)")
	addr := flag.String("addr", "", "listen address, overrides config")
	flag.Parse()

	logging.ConfigureRuntime()
	observability.RegisterMetrics()

	cfg := defaultServiceConfig()
	if *configPath != "" {
		loaded, err := loadServiceConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	ledger := bank.NewLedger(cfg.MaxAccounts)
	srv := server.New(server.Config{
		Addr:       cfg.Addr,
		Workers:    cfg.Workers,
		AcceptRate: cfg.AcceptRate,
	}, server.NewRouter(ledger), log.Logger)

	if err := srv.Listen(); err != nil {
		return err
	}

	if cfg.AdminAddr != "" {
		adminSrv := admin.New(cfg.AdminAddr, ledger, cfg.CorsOrigins)
		go func() {
			if err := adminSrv.Serve(); err != nil {
				log.Error().Err(err).Msg("admin server stopped")
			}
		}()
	}

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		sig := <-ch
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		srv.Close()
	}()

	return srv.Serve()
}
