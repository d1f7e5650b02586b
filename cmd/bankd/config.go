package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/dkaiser/bankd/internal/bank"
	"github.com/dkaiser/bankd/internal/server"
)

type serviceConfig struct {
	Addr        string
	Workers     int
	MaxAccounts int
	AcceptRate  float64
	AdminAddr   string
	CorsOrigins []string
}

func defaultServiceConfig() serviceConfig {
	return serviceConfig{
		Addr:        ":5001",
		Workers:     server.DefaultWorkers,
		MaxAccounts: bank.DefaultMaxAccounts,
	}
}

type fileConfig struct {
	Addr        string   `toml:"addr"`
	Workers     int      `toml:"workers"`
	MaxAccounts int      `toml:"max_accounts"`
	AcceptRate  float64  `toml:"accept_rate"`
	AdminAddr   string   `toml:"admin_addr"`
	CorsOrigins []string `toml:"cors_origins"`
}

func loadServiceConfig(path string) (serviceConfig, error) {
	cfg := defaultServiceConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return serviceConfig{}, fmt.Errorf("load bankd config: %w", err)
	}

	if meta.IsDefined("addr") {
		if addr := strings.TrimSpace(raw.Addr); addr != "" {
			cfg.Addr = addr
		}
	}

	if meta.IsDefined("workers") {
		if raw.Workers <= 0 {
			return serviceConfig{}, fmt.Errorf("workers must be positive, got %d", raw.Workers)
		}
		cfg.Workers = raw.Workers
	}

	if meta.IsDefined("max_accounts") {
		if raw.MaxAccounts <= 0 {
			return serviceConfig{}, fmt.Errorf("max_accounts must be positive, got %d", raw.MaxAccounts)
		}
		cfg.MaxAccounts = raw.MaxAccounts
	}

	if meta.IsDefined("accept_rate") {
		if raw.AcceptRate < 0 {
			return serviceConfig{}, fmt.Errorf("accept_rate must not be negative, got %v", raw.AcceptRate)
		}
		cfg.AcceptRate = raw.AcceptRate
	}

	if meta.IsDefined("admin_addr") {
		cfg.AdminAddr = strings.TrimSpace(raw.AdminAddr)
	}

	if meta.IsDefined("cors_origins") {
		cfg.CorsOrigins = normalizeOrigins(raw.CorsOrigins)
	}

	return cfg, nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
