package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator_Validate(t *testing.T) {
	validator := NewValidator()

	validConsole := ConsoleDetails{
		Name:    "dispatch-console",
		Runtime: "local",
		Port:    8080,
		Timeout: "5s",
		Logging: LoggingConf{Enabled: true, Level: "info", Format: "console"},
	}
	httpBackend := BackendConf{
		Type: "http",
		HTTP: HTTPBackend{BaseURL: "http://localhost:8585"},
	}

	tests := []struct {
		name    string
		cfg     *ConsoleConfig
		wantErr bool
	}{
		{
			name:    "Valid Config",
			cfg:     &ConsoleConfig{Version: "1.0", Console: validConsole, Backend: httpBackend},
			wantErr: false,
		},
		{
			name:    "Unknown Backend Type",
			cfg:     &ConsoleConfig{Version: "1.0", Console: validConsole, Backend: BackendConf{Type: "mongo"}},
			wantErr: true,
		},
		{
			name:    "HTTP Backend Without URL",
			cfg:     &ConsoleConfig{Version: "1.0", Console: validConsole, Backend: BackendConf{Type: "http"}},
			wantErr: true,
		},
		{
			name:    "SQLite Without DSN",
			cfg:     &ConsoleConfig{Version: "1.0", Console: validConsole, Backend: BackendConf{Type: "sqlite"}},
			wantErr: true,
		},
		{
			name: "Local Runtime Without Port",
			cfg: &ConsoleConfig{
				Version: "1.0",
				Console: ConsoleDetails{Name: "c", Runtime: "local", Timeout: "1s"},
				Backend: BackendConf{Type: "memory"},
			},
			wantErr: true,
		},
		{
			name: "Lambda Runtime Without Port",
			cfg: &ConsoleConfig{
				Version: "1.0",
				Console: ConsoleDetails{Name: "c", Runtime: "lambda", Timeout: "1s"},
				Backend: BackendConf{Type: "memory"},
			},
			wantErr: false,
		},
		{
			name: "Duplicated Guard IDs",
			cfg: &ConsoleConfig{
				Version: "1.0", Console: validConsole, Backend: httpBackend,
				Guards: []GuardConf{
					{ID: "g1", Expr: "draft.defaultDelay >= 0"},
					{ID: "g1", Expr: "true"},
				},
			},
			wantErr: true,
		},
		{
			name: "Guard Does Not Compile",
			cfg: &ConsoleConfig{
				Version: "1.0", Console: validConsole, Backend: httpBackend,
				Guards: []GuardConf{{ID: "g1", Expr: "draft.("}},
			},
			wantErr: true,
		},
		{
			name: "Invalidation Queue Without Redis",
			cfg: &ConsoleConfig{
				Version: "1.0", Console: validConsole, Backend: httpBackend,
				Cache: CacheConf{InvalidationSQS: "https://sqs.us-east-1.amazonaws.com/1/q"},
			},
			wantErr: true,
		},
		{
			name: "Invalid Timeout",
			cfg: &ConsoleConfig{
				Version: "1.0",
				Console: ConsoleDetails{Name: "c", Runtime: "lambda", Timeout: "cinco"},
				Backend: BackendConf{Type: "memory"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDurations(t *testing.T) {
	assert.Equal(t, "30s", ConsoleDetails{}.GetTimeout().String())
	assert.Equal(t, "2s", ConsoleDetails{Timeout: "2s"}.GetTimeout().String())
	assert.Equal(t, "10s", HTTPBackend{Timeout: "x"}.GetTimeout().String())
	assert.Equal(t, "5m0s", RedisConf{}.GetTTL().String())
}

func TestRuleGuards(t *testing.T) {
	cfg := &ConsoleConfig{Guards: []GuardConf{{ID: "a", Expr: "true", Msg: "m"}}}
	g := cfg.RuleGuards()
	assert.Len(t, g, 1)
	assert.Equal(t, "m", g[0].Message)
}
