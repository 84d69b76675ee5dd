package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabular-labs/tabular/pkg/core"
	"github.com/tabular-labs/tabular/pkg/table"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   core.Config
		expected string
	}{
		{
			name: "basic connection",
			config: core.Config{
				Host:     "localhost",
				Port:     5432,
				Database: "testdb",
				Username: "user",
				Password: "pass",
			},
			expected: "host=localhost port=5432 dbname=testdb sslmode=disable user=user password=pass",
		},
		{
			name: "with custom sslmode",
			config: core.Config{
				Host:     "prod.example.com",
				Port:     5432,
				Database: "proddb",
				Username: "admin",
				Options:  map[string]string{"sslmode": "require"},
			},
			expected: "host=prod.example.com port=5432 dbname=proddb sslmode=require user=admin",
		},
		{
			name: "defaults",
			config: core.Config{
				Database: "mydb",
			},
			expected: "host=localhost port=5432 dbname=mydb sslmode=disable",
		},
		{
			name: "custom port",
			config: core.Config{
				Host:     "db.example.com",
				Port:     5433,
				Database: "analytics",
				Username: "analyst",
			},
			expected: "host=db.example.com port=5433 dbname=analytics sslmode=disable user=analyst",
		},
		{
			name: "with schema",
			config: core.Config{
				Database: "mydb",
				Schema:   "events",
			},
			expected: "host=localhost port=5432 dbname=mydb sslmode=disable search_path=events",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsn := buildDSN(tt.config)
			assert.Equal(t, tt.expected, dsn)
		})
	}
}

func TestOpenRequiresTableName(t *testing.T) {
	_, err := Open(context.Background(), core.Config{Database: "mydb"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table not specified")
}

func TestDollarPlaceholder(t *testing.T) {
	assert.Equal(t, "$1", dollarPlaceholder(1))
	assert.Equal(t, "$12", dollarPlaceholder(12))
}

func TestTypeDDLMapping(t *testing.T) {
	assert.Equal(t, "BIGINT", typeDDL(core.NewColumn("a", core.Integer)))
	assert.Equal(t, "BIGINT", typeDDL(core.NewColumn("b", core.DateTime)))
	assert.Equal(t, "DOUBLE PRECISION", typeDDL(core.NewColumn("c", core.Double)))
	assert.Equal(t, "DECIMAL(38,2)", typeDDL(core.NewColumn("d", core.Double, core.WithDecimals(2))))
	assert.Equal(t, "BYTEA", typeDDL(core.NewColumn("e", core.Blob)))
	assert.Equal(t, "TEXT", typeDDL(core.NewColumn("f", core.TextKey)))
}

func TestScanTypeMapping(t *testing.T) {
	assert.Equal(t, core.Integer, scanType("bigint"))
	assert.Equal(t, core.Double, scanType("double precision"))
	assert.Equal(t, core.Double, scanType("numeric"))
	assert.Equal(t, core.Blob, scanType("bytea"))
	assert.Equal(t, core.Text, scanType("character varying"))
}

func TestRegistered(t *testing.T) {
	assert.True(t, table.IsRegistered("postgres"))
}
