package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. WALLWAR_GAME_MAX_POINTS.
const EnvPrefix = "WALLWAR"

// Config is the full server configuration.
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Computer ComputerConfig `mapstructure:"computer"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Server   ServerConfig   `mapstructure:"server"`
	Replay   ReplayConfig   `mapstructure:"replay"`
}

// GameConfig holds the rules parameters of a game.
type GameConfig struct {
	RankCount        int    `mapstructure:"rank_count"`
	MaxPoints        int    `mapstructure:"max_points"`
	FirstSide        string `mapstructure:"first_side"`
	Seed             uint64 `mapstructure:"seed"`
	StrictInvariants bool   `mapstructure:"strict_invariants"`
}

// ComputerConfig controls the automated opponent.
type ComputerConfig struct {
	Strategy string        `mapstructure:"strategy"`
	Delay    time.Duration `mapstructure:"delay"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	WebSocket WebSocketConfig `mapstructure:"websocket"`
}

// WebSocketConfig configures the browser bridge.
type WebSocketConfig struct {
	Address         string        `mapstructure:"address"`
	Path            string        `mapstructure:"path"`
	ReadBufferSize  int           `mapstructure:"read_buffer_size"`
	WriteBufferSize int           `mapstructure:"write_buffer_size"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	PongTimeout     time.Duration `mapstructure:"pong_timeout"`
	MaxMessageSize  int64         `mapstructure:"max_message_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type ReplayConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	MaxStates int  `mapstructure:"max_states"`
	MaxGames  int  `mapstructure:"max_games"`
}

// Load reads defaults, then the optional config file at path, then a .env
// file if present, then WALLWAR_* environment variables.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Defaults returns the configuration used when nothing is overridden.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("game.rank_count", 5)
	v.SetDefault("game.max_points", 5)
	v.SetDefault("game.first_side", "player")
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.strict_invariants", true)

	v.SetDefault("computer.strategy", "strongest")
	v.SetDefault("computer.delay", time.Second)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.websocket.address", ":8080")
	v.SetDefault("server.websocket.path", "/ws")
	v.SetDefault("server.websocket.read_buffer_size", 1024)
	v.SetDefault("server.websocket.write_buffer_size", 1024)
	v.SetDefault("server.websocket.allowed_origins", []string{})
	v.SetDefault("server.websocket.write_timeout", 10*time.Second)
	v.SetDefault("server.websocket.pong_timeout", 60*time.Second)
	v.SetDefault("server.websocket.max_message_size", 4096)
	v.SetDefault("server.websocket.shutdown_timeout", 5*time.Second)

	v.SetDefault("replay.enabled", true)
	v.SetDefault("replay.max_states", 5000)
	v.SetDefault("replay.max_games", 16)
}

// Validate checks values the engine cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Game.RankCount < 2 {
		errs = append(errs, fmt.Errorf("game.rank_count must be at least 2, got %d", c.Game.RankCount))
	}
	if c.Game.MaxPoints < 1 {
		errs = append(errs, fmt.Errorf("game.max_points must be at least 1, got %d", c.Game.MaxPoints))
	}
	switch strings.ToLower(c.Game.FirstSide) {
	case "player", "computer", "random":
	default:
		errs = append(errs, fmt.Errorf("game.first_side must be player, computer or random, got %q", c.Game.FirstSide))
	}
	if c.Computer.Delay < 0 {
		errs = append(errs, fmt.Errorf("computer.delay must not be negative, got %s", c.Computer.Delay))
	}
	if c.Server.WebSocket.PongTimeout <= 0 {
		errs = append(errs, errors.New("server.websocket.pong_timeout must be positive"))
	}
	return errors.Join(errs...)
}
