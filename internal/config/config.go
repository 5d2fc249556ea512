// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jason-s-yu/swick/internal/game"
)

// Config is everything the server and historian need at startup.
type Config struct {
	Env            string
	Port           string
	AllowedOrigins []string

	RedisAddr string
	RedisDB   int
	QueueName string

	DatabaseURL string

	TokenExpire time.Duration

	Rules game.HouseRules

	RoomIdleTimeout   time.Duration
	HeartbeatInterval time.Duration

	HistorianBatchSize  int
	HistorianFlush      time.Duration
	HistorianInactivity time.Duration
}

// IsDev reports whether the service runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == "" || c.Env == "dev" || c.Env == "development"
}

// rulesEnv maps SWICK_* variables to house rule keys.
var rulesEnv = map[string]string{
	"SWICK_STARTING_MONEY":         "startingMoney",
	"SWICK_DEFAULT_ANTE":           "defaultAnte",
	"SWICK_DEALER_SURCHARGE":       "dealerSurcharge",
	"SWICK_READY_COUNTDOWN_SEC":    "readyCountdownSec",
	"SWICK_DEALING_DELAY_SEC":      "dealingDelaySec",
	"SWICK_TRICK_DELAY_SEC":        "trickDelaySec",
	"SWICK_SPECIAL_HAND_DELAY_SEC": "specialHandDelaySec",
	"SWICK_END_BASE_DELAY_SEC":     "endBaseDelaySec",
	"SWICK_END_PER_PLAYER_SEC":     "endPerPlayerDelaySec",
	"SWICK_SET_DISPLAY_DELAY_SEC":  "setDisplayDelaySec",
	"SWICK_INACTIVITY_TIMEOUT_SEC": "inactivityTimeoutSec",
	"SWICK_RECONNECT_GRACE_SEC":    "reconnectGraceSec",
}

// Load builds a Config from the process environment.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}
	var errs []string
	envInt := func(key string, def int) int {
		s := getenv(key)
		if s == "" {
			return def
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			return def
		}
		return v
	}
	envDuration := func(key string, def time.Duration) time.Duration {
		s := getenv(key)
		if s == "" {
			return def
		}
		d, err := time.ParseDuration(s)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
			return def
		}
		return d
	}

	cfg := Config{
		Env:                 env("SWICK_ENV", "development"),
		Port:                env("PORT", "8080"),
		RedisAddr:           getenv("REDIS_ADDR"),
		RedisDB:             envInt("REDIS_DB", 0),
		QueueName:           env("HISTORIAN_QUEUE_NAME", "swick_actions"),
		DatabaseURL:         databaseURL(getenv),
		RoomIdleTimeout:     envDuration("SWICK_ROOM_IDLE_TIMEOUT", 60*time.Second),
		HeartbeatInterval:   envDuration("SWICK_HEARTBEAT_INTERVAL", 15*time.Second),
		HistorianBatchSize:  envInt("HISTORIAN_BATCH_SIZE", 20),
		HistorianFlush:      time.Duration(envInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
		HistorianInactivity: time.Duration(envInt("GAME_INACTIVITY_TIMEOUT_SEC", 600)) * time.Second,
	}

	if origins := getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{"http://localhost:*", "https://localhost:*"}
	}

	switch getenv("TOKEN_EXPIRE_TIME") {
	case "", "0", "never":
		cfg.TokenExpire = 0
	default:
		cfg.TokenExpire = envDuration("TOKEN_EXPIRE_TIME", 0)
	}

	overrides := make(map[string]interface{})
	for key, rule := range rulesEnv {
		if getenv(key) != "" {
			overrides[rule] = envInt(key, 0)
		}
	}
	if len(errs) > 0 {
		return cfg, fmt.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}
	rules, err := game.ParseRules(overrides, game.DefaultHouseRules())
	if err != nil {
		return cfg, fmt.Errorf("invalid house rules: %w", err)
	}
	cfg.Rules = rules
	return cfg, nil
}

// databaseURL prefers DATABASE_URL, else assembles one from the POSTGRES_*
// and PG_* variables. Empty means no database is configured.
func databaseURL(getenv func(string) string) string {
	if u := getenv("DATABASE_URL"); u != "" {
		return u
	}
	host := getenv("PG_HOST")
	if host == "" {
		return ""
	}
	port := getenv("PG_PORT")
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		getenv("POSTGRES_USER"),
		getenv("POSTGRES_PASSWORD"),
		host,
		port,
		getenv("PG_DATABASE"),
	)
}
