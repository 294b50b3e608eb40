package core

import (
	"context"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfigValidateRejectsBadValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.API.MaxPages = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero max pages")
	}

	cfg = DefaultConfig()
	cfg.Match.MinScore = 150
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for out-of-range min score")
	}
}

func TestGoOptionsResolverRuntimeWins(t *testing.T) {
	defaults := DefaultConfig()
	loaded := Config{}
	loaded.API.Token = "from-config"
	loaded.API.RequestTimeout = 5 * time.Second

	runtime := Config{}
	runtime.API.Token = "from-runtime"

	resolved, err := (GoOptionsResolver{}).Resolve(defaults, loaded, runtime)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.API.Token != "from-runtime" {
		t.Fatalf("expected runtime token to win, got %q", resolved.API.Token)
	}
	if resolved.API.RequestTimeout != 5*time.Second {
		t.Fatalf("expected loaded timeout to survive, got %v", resolved.API.RequestTimeout)
	}
	if resolved.API.MaxPages != defaults.API.MaxPages {
		t.Fatalf("expected defaults to fill unset fields")
	}
}

func TestCfgxConfigProviderAppliesDefaults(t *testing.T) {
	provider := NewCfgxConfigProvider(staticRawConfigLoader{Values: map[string]any{
		"api": map[string]any{
			"token": "abc",
		},
	}})
	cfg, err := provider.Load(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.API.Token != "abc" {
		t.Fatalf("expected loaded token, got %q", cfg.API.Token)
	}
	if cfg.ServiceName != "fleetbridge" {
		t.Fatalf("expected default service name, got %q", cfg.ServiceName)
	}
}

func TestServiceBuilderResolveConfig(t *testing.T) {
	runtime := Config{}
	runtime.Match.MinScore = 90
	builder := NewServiceBuilder(runtime)
	cfg, err := builder.ResolveConfig(context.Background())
	if err != nil {
		t.Fatalf("resolve config: %v", err)
	}
	if cfg.Match.MinScore != 90 {
		t.Fatalf("expected runtime min score, got %d", cfg.Match.MinScore)
	}
}
