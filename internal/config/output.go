package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// OutputConfig is the destination directory shared by the json and tsv outputs.
type OutputConfig struct {
	Output string
}

func (c OutputConfig) Validate() error {
	if c.Output == "" {
		return fmt.Errorf("missing output directory")
	}
	if fi, err := os.Stat(c.Output); err == nil && !fi.IsDir() {
		return fmt.Errorf("output path %s is not a directory", c.Output)
	}
	return nil
}

func LoadJSONConfigFromCLI() OutputConfig {
	return OutputConfig{
		Output: viper.GetString("json-out"),
	}
}

func LoadTSVConfigFromCLI() OutputConfig {
	return OutputConfig{
		Output: viper.GetString("tsv-out"),
	}
}
