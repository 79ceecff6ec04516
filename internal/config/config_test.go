package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsWithoutConfigFile(t *testing.T) {
	t.Setenv("CONFIG_ENV", "nonexistent")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Port)
	}
	if cfg.PongWait != 45*time.Second || cfg.PingPeriod != 25*time.Second {
		t.Errorf("keepalive = %s/%s, want 45s/25s", cfg.PongWait, cfg.PingPeriod)
	}
	if cfg.RoomInactivity != 24*time.Hour {
		t.Errorf("room_inactivity = %s, want 24h", cfg.RoomInactivity)
	}
	if cfg.ReapInterval != 5*time.Minute {
		t.Errorf("reap_interval = %s, want 5m", cfg.ReapInterval)
	}
	if len(cfg.ICEServers) != 1 || len(cfg.ICEServers[0].URLs) != 1 ||
		!strings.HasPrefix(cfg.ICEServers[0].URLs[0], "stun:") {
		t.Errorf("ice_servers = %+v, want single stun default", cfg.ICEServers)
	}
}

func TestValidate(t *testing.T) {
	base := Config{
		PongWait:       45 * time.Second,
		PingPeriod:     25 * time.Second,
		RoomInactivity: 24 * time.Hour,
		ReapInterval:   5 * time.Minute,
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults pass", func(c *Config) {}, false},
		{"ping period at pong wait", func(c *Config) { c.PingPeriod = c.PongWait }, true},
		{"zero inactivity horizon", func(c *Config) { c.RoomInactivity = 0 }, true},
		{"negative reap interval", func(c *Config) { c.ReapInterval = -time.Minute }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
