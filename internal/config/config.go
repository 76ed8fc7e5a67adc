package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Addr         string `env:"BACKEND_ADDR"`
	Port         string `env:"PORT"`
	DatabasePath string `env:"DATABASE_PATH"`

	JWTSecret     string `env:"JWT_SECRET"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"twenty-one"`
	JWTTTLMinutes int64  `env:"JWT_TTL_MINUTES" envDefault:"10080"`
	JWTTTL        time.Duration

	AppEnv                string   `env:"APP_ENV" envDefault:"development"`
	WSAllowedOrigins      []string `env:"WS_ALLOWED_ORIGINS" envSeparator:","`
	WSAllowQueryTokens    bool     `env:"WS_ALLOW_QUERY_TOKENS"`
	DevWebSocketsAllowAll bool     `env:"DEV_WEBSOCKETS_ALLOW_ALL"`

	// GameStore selects where game state lives: "sqlite" or "redis".
	GameStore   string `env:"GAME_STORE" envDefault:"sqlite"`
	RedisURL    string `env:"REDIS_URL"`
	RedisPrefix string `env:"REDIS_PREFIX" envDefault:"tw1"`

	Table Table
}

// Table holds the house settings applied to newly created games.
type Table struct {
	StartingBankroll   int `env:"STARTING_BANKROLL" envDefault:"10"`
	MaxBet             int `env:"MAX_BET" envDefault:"10"`
	RichThreshold      int `env:"RICH_THRESHOLD" envDefault:"10"`
	DealerHitThreshold int `env:"DEALER_HIT_THRESHOLD" envDefault:"17"`
}

func (c Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// LoadFromEnv reads the process environment.
func LoadFromEnv() (Config, error) {
	return load(env.Options{})
}

// LoadFrom reads configuration from the given variables instead of the
// process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return load(env.Options{Environment: vars})
}

func load(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.AppEnv = strings.TrimSpace(cfg.AppEnv)
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.JWTTTLMinutes <= 0 {
		cfg.JWTTTLMinutes = 10080
	}
	cfg.JWTTTL = time.Duration(cfg.JWTTTLMinutes) * time.Minute
	cfg.GameStore = strings.ToLower(strings.TrimSpace(cfg.GameStore))

	origins := cfg.WSAllowedOrigins[:0]
	for _, o := range cfg.WSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.WSAllowedOrigins = origins

	// BACKEND_ADDR is optional if PORT is set by the hosting environment.
	if cfg.Addr == "" {
		if port := strings.TrimSpace(cfg.Port); port != "" {
			if strings.Contains(port, ":") {
				cfg.Addr = port
			} else {
				cfg.Addr = ":" + port
			}
		}
	}

	var missing []string
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.DatabasePath == "" {
		missing = append(missing, "DATABASE_PATH")
	}
	if cfg.Addr == "" {
		missing = append(missing, "BACKEND_ADDR (or PORT)")
	}
	switch cfg.GameStore {
	case "sqlite":
	case "redis":
		if cfg.RedisURL == "" {
			missing = append(missing, "REDIS_URL (GAME_STORE=redis)")
		}
	default:
		missing = append(missing, "GAME_STORE (sqlite|redis)")
	}
	t := cfg.Table
	if t.StartingBankroll <= 0 {
		missing = append(missing, "STARTING_BANKROLL")
	}
	if t.MaxBet <= 0 {
		missing = append(missing, "MAX_BET")
	}
	if t.RichThreshold <= 0 {
		missing = append(missing, "RICH_THRESHOLD")
	}
	if t.DealerHitThreshold <= 0 || t.DealerHitThreshold > 21 {
		missing = append(missing, "DEALER_HIT_THRESHOLD")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing/invalid env: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}
