package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadDefaultsAndEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("MONGODB_DATABASE", "giveaways_test")
	t.Setenv("SCHEDULER_LIFECYCLESPEC", "@every 30s")
	t.Setenv("LOCKS_LEASETTL", "45s")
	t.Setenv("DRAW_SEED", "42")
	t.Setenv("DRAW_ALLOCATIONTIMEOUT", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != "4000" {
		t.Errorf("Server.Port = %q, want default 4000", cfg.Server.Port)
	}
	if cfg.MongoDB.Database != "giveaways_test" {
		t.Errorf("MongoDB.Database = %q", cfg.MongoDB.Database)
	}
	if cfg.Scheduler.LifecycleSpec != "@every 30s" {
		t.Errorf("Scheduler.LifecycleSpec = %q", cfg.Scheduler.LifecycleSpec)
	}
	if cfg.Locks.LeaseTTL != 45*time.Second {
		t.Errorf("Locks.LeaseTTL = %v", cfg.Locks.LeaseTTL)
	}
	if cfg.Draw.Seed != 42 {
		t.Errorf("Draw.Seed = %d", cfg.Draw.Seed)
	}
	if cfg.Draw.AllocationTimeout != 90*time.Second {
		t.Errorf("Draw.AllocationTimeout = %v", cfg.Draw.AllocationTimeout)
	}
	if cfg.Locks.Backend != "mongo" {
		t.Errorf("Locks.Backend = %q", cfg.Locks.Backend)
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("IMPORT_BATCH", "250")
	t.Setenv("IMPORT_DRY_RUN", "true")

	if got := GetEnvAsInt("IMPORT_BATCH", 10); got != 250 {
		t.Errorf("GetEnvAsInt = %d", got)
	}
	if got := GetEnvAsInt("IMPORT_MISSING", 10); got != 10 {
		t.Errorf("GetEnvAsInt default = %d", got)
	}
	if !GetEnvAsBool("IMPORT_DRY_RUN", false) {
		t.Error("GetEnvAsBool = false")
	}
	if GetEnvAsBool("IMPORT_MISSING", false) {
		t.Error("GetEnvAsBool default = true")
	}
	if got := GetEnv("IMPORT_MISSING", "x"); got != "x" {
		t.Errorf("GetEnv = %q", got)
	}
}
