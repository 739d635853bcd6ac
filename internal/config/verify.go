package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/liftedinit/powchain/internal/hasher"
	"github.com/liftedinit/powchain/internal/ledger"
)

type VerifyConfig struct {
	Difficulty    int
	HashAlgorithm string
}

func (c VerifyConfig) Validate() error {
	h, err := hasher.New(c.HashAlgorithm)
	if err != nil {
		return err
	}
	if err := ledger.ValidateDifficulty(h, c.Difficulty); err != nil {
		return fmt.Errorf("invalid --difficulty: %w", err)
	}
	return nil
}

func LoadVerifyConfigFromCLI() VerifyConfig {
	return VerifyConfig{
		Difficulty:    viper.GetInt("verify-difficulty"),
		HashAlgorithm: viper.GetString("verify-hash"),
	}
}
