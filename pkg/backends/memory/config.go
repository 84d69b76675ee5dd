package memory

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds memory-backend options.
// Parsed from core.Config.Options using mapstructure.
type Params struct {
	// Sheets is the number of sheets the table starts with (default 1).
	Sheets int `mapstructure:"sheets"`
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
		return nil, fmt.Errorf("failed to parse memory options: %w", err)
	}
	return params, nil
}
