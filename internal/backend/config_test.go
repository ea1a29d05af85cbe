package backend

import (
	"strings"
	"testing"

	"financas/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	appCfg := &config.Config{
		DataBackend:   "sqlite",
		SQLiteDBPath:  "./data/test.db",
		AMQPURL:       "amqp://localhost",
		AMQPExchange:  "financas",
		AMQPQueue:     "sync_transactions",
		DataDirectory: "data",
	}
	cfg, err := FromAppConfig(appCfg)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend {
		t.Errorf("Type = %s, want %s", cfg.Type, SQLiteBackend)
	}
	if cfg.SQLiteDBPath != "./data/test.db" || cfg.AMQPURL != "amqp://localhost" {
		t.Errorf("sqlite settings not carried over: %+v", cfg)
	}
}

func TestFromAppConfigRejectsUnknownBackend(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	_, err := FromAppConfig(&config.Config{DataBackend: "postgres"})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	// The message lists the valid choices.
	for _, bt := range GetBackendTypes() {
		if !strings.Contains(err.Error(), bt.String()) {
			t.Errorf("error %q does not mention %s", err, bt)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		errorString string
	}{
		{
			name: "valid sqlite",
			cfg:  Config{Type: SQLiteBackend, SQLiteDBPath: "./data/test.db"},
		},
		{
			name:        "sqlite without path",
			cfg:         Config{Type: SQLiteBackend},
			errorString: "database path is required",
		},
		{
			name: "valid sheets",
			cfg:  Config{Type: SheetsBackend, GoogleSpreadsheetID: "sheet-id"},
		},
		{
			name:        "sheets without spreadsheet id",
			cfg:         Config{Type: SheetsBackend},
			errorString: "Spreadsheet ID is required",
		},
		{
			name: "memory needs nothing",
			cfg:  Config{Type: MemoryBackend},
		},
		{
			name:        "unknown type",
			cfg:         Config{Type: "redis"},
			errorString: "invalid backend type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.errorString == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.errorString)
			}
			if !strings.Contains(err.Error(), tt.errorString) {
				t.Errorf("Validate() = %q, want it to contain %q", err, tt.errorString)
			}
		})
	}
}
