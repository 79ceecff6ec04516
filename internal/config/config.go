package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// ICEServer is one STUN/TURN entry handed to clients. TURN entries
// without credentials are filtered out before serving.
type ICEServer struct {
	URLs       []string `mapstructure:"urls"`
	Username   string   `mapstructure:"username"`
	Credential string   `mapstructure:"credential"`
}

type Config struct {
	Mode          string `mapstructure:"mode"`
	Port          int    `mapstructure:"port"`
	AllowedOrigin string `mapstructure:"allowed_origin"`
	Secret        string `mapstructure:"secret"`

	// Signaling channel keepalive. PingPeriod must be shorter than
	// PongWait or the connection times itself out between probes.
	ReadLimit  int64         `mapstructure:"read_limit"`
	WriteWait  time.Duration `mapstructure:"write_wait"`
	PongWait   time.Duration `mapstructure:"pong_wait"`
	PingPeriod time.Duration `mapstructure:"ping_period"`

	// Room lifecycle.
	RoomInactivity time.Duration `mapstructure:"room_inactivity"`
	ReapInterval   time.Duration `mapstructure:"reap_interval"`

	// Call-record recorder queue depth.
	RecorderQueue int `mapstructure:"recorder_queue"`

	// Sliding-window limit on create-room attempts per connection.
	CreateRoomLimit  int           `mapstructure:"create_room_limit"`
	CreateRoomWindow time.Duration `mapstructure:"create_room_window"`

	ICEServers []ICEServer `mapstructure:"ice_servers"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("allowed_origin", "")
	v.SetDefault("read_limit", 65536)
	v.SetDefault("write_wait", "10s")
	v.SetDefault("pong_wait", "45s")
	v.SetDefault("ping_period", "25s")
	v.SetDefault("room_inactivity", "24h")
	v.SetDefault("reap_interval", "5m")
	v.SetDefault("recorder_queue", 256)
	v.SetDefault("create_room_limit", 5)
	v.SetDefault("create_room_window", "1m")
	v.SetDefault("ice_servers", []map[string]any{
		{"urls": []string{"stun:stun.l.google.com:19302"}},
	})

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.PingPeriod >= c.PongWait {
		return fmt.Errorf("ping_period (%s) must be shorter than pong_wait (%s)", c.PingPeriod, c.PongWait)
	}
	if c.RoomInactivity <= 0 {
		return fmt.Errorf("room_inactivity must be positive, got %s", c.RoomInactivity)
	}
	if c.ReapInterval <= 0 {
		return fmt.Errorf("reap_interval must be positive, got %s", c.ReapInterval)
	}
	return nil
}
