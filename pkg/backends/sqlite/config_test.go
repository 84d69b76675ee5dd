package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	tests := []struct {
		name    string
		options map[string]string
		want    Params
		wantErr bool
	}{
		{
			name:    "nil options",
			options: nil,
			want:    Params{},
		},
		{
			name: "all options",
			options: map[string]string{
				"journal_mode":    "WAL",
				"busy_timeout_ms": "5000",
				"foreign_keys":    "true",
			},
			want: Params{JournalMode: "WAL", BusyTimeoutMS: 5000, ForeignKeys: true},
		},
		{
			name:    "invalid timeout",
			options: map[string]string{"busy_timeout_ms": "soon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseParams(tt.options)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}
