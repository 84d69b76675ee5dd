package sqlite

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds SQLite-specific options.
// Parsed from core.Config.Options using mapstructure.
type Params struct {
	// JournalMode sets PRAGMA journal_mode (e.g. WAL, TRUNCATE).
	JournalMode string `mapstructure:"journal_mode"`

	// BusyTimeoutMS sets PRAGMA busy_timeout, in milliseconds.
	BusyTimeoutMS int `mapstructure:"busy_timeout_ms"`

	// ForeignKeys enables PRAGMA foreign_keys.
	ForeignKeys bool `mapstructure:"foreign_keys"`
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
		return nil, fmt.Errorf("failed to parse sqlite options: %w", err)
	}
	return params, nil
}
