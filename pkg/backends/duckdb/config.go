package duckdb

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds DuckDB-specific options.
// Parsed from core.Config.Options using mapstructure.
type Params struct {
	// MemoryLimit caps the memory DuckDB may use (e.g. "4GB").
	MemoryLimit string `mapstructure:"memory_limit"`

	// Threads sets the number of worker threads.
	Threads int `mapstructure:"threads"`
}

func parseParams(options map[string]string) (*Params, error) {
	params := &Params{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           params,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build options decoder: %w", err)
	}

	if err := decoder.Decode(options); err != nil {
		return nil, fmt.Errorf("failed to parse duckdb options: %w", err)
	}
	return params, nil
}
