package config

import "testing"

func TestLoadDebugDefaults(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		debugVar  string
		wantDebug bool
	}{
		{"dev defaults on", "dev", "", true},
		{"test defaults on", "test", "", true},
		{"prod defaults off", "prod", "", false},
		{"prod override on", "prod", "true", true},
		{"dev override off", "dev", "false", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENVIRONMENT", tt.env)
			t.Setenv("DEBUG", tt.debugVar)
			cfg := Load()
			if cfg.Debug != tt.wantDebug {
				t.Errorf("Debug = %v, want %v", cfg.Debug, tt.wantDebug)
			}
		})
	}
}

func TestLoadDefaultModel(t *testing.T) {
	t.Setenv("DEFAULT_MODEL", "")
	if got := Load().DefaultModel; got != "gpt-4o-mini" {
		t.Errorf("DefaultModel = %q, want built-in fallback", got)
	}

	t.Setenv("DEFAULT_MODEL", "mock-gpt")
	if got := Load().DefaultModel; got != "mock-gpt" {
		t.Errorf("DefaultModel = %q, want override", got)
	}
}
