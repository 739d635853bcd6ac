package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/liftedinit/powchain/internal/hasher"
	"github.com/liftedinit/powchain/internal/ledger"
)

type MineConfig struct {
	Difficulty       int
	Blocks           uint
	Transactions     []string
	Input            string
	Workers          uint
	Timeout          time.Duration
	HashAlgorithm    string
	EnablePrometheus bool
	PrometheusAddr   string
}

func (c MineConfig) Validate() error {
	h, err := hasher.New(c.HashAlgorithm)
	if err != nil {
		return err
	}

	if err := ledger.ValidateDifficulty(h, c.Difficulty); err != nil {
		return err
	}

	if c.Workers == 0 {
		return fmt.Errorf("workers must be at least 1")
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}

	if c.Input != "" {
		if len(c.Transactions) > 0 {
			return fmt.Errorf("cannot set --input and --tx flags together")
		}
		if _, err := os.Stat(c.Input); err != nil {
			return fmt.Errorf("input file: %w", err)
		}
	} else if c.Blocks == 0 {
		return fmt.Errorf("blocks must be at least 1")
	}

	for _, tx := range c.Transactions {
		if _, err := ledger.ParseTransaction(tx); err != nil {
			return err
		}
	}

	if c.EnablePrometheus && c.PrometheusAddr == "" {
		return fmt.Errorf("missing Prometheus address")
	}

	return nil
}

// Hasher returns the hasher named by HashAlgorithm. Call Validate first.
func (c MineConfig) Hasher() hasher.Hasher {
	h, err := hasher.New(c.HashAlgorithm)
	if err != nil {
		return hasher.Default()
	}
	return h
}

func LoadMineConfigFromCLI() MineConfig {
	return MineConfig{
		Difficulty:       viper.GetInt("difficulty"),
		Blocks:           viper.GetUint("blocks"),
		Transactions:     viper.GetStringSlice("tx"),
		Input:            viper.GetString("input"),
		Workers:          viper.GetUint("workers"),
		Timeout:          viper.GetDuration("timeout"),
		HashAlgorithm:    viper.GetString("hash"),
		EnablePrometheus: viper.GetBool("enable-prometheus"),
		PrometheusAddr:   viper.GetString("prometheus-addr"),
	}
}
