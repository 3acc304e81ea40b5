// Package config centralizes tunable server parameters.
// Values come from the environment (optionally via a .env file) with
// defaults that match the balance of the original game.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every knob the server reads at startup.
type Config struct {
	ListenAddr string
	DBPath     string

	// Simulation
	TickRate        time.Duration
	InitialLives    int
	MaxOnScreen     int
	FreezeTicks     int
	RestTicks       int
	StartingBombs   int
	StartingFreezes int

	// When true only the front-most enemy's question accepts answers.
	// The later game revisions let any visible enemy be answered.
	StrictActiveQuestion bool

	// Auth
	TokenTTL time.Duration

	// Throttles
	LoginRPS        int
	LoginBurst      int
	ActionRPS       int
	ActionBurst     int
	RankingCacheTTL time.Duration
}

// Load reads the environment (and .env, when present) into a Config.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr: getEnvString("LISTEN_ADDR", ":8080"),
		DBPath:     getEnvString("DB_PATH", "derivaventura.db"),

		TickRate:        getEnvDuration("TICK_RATE", 600*time.Millisecond),
		InitialLives:    getEnvInt("INITIAL_LIVES", 5),
		MaxOnScreen:     getEnvInt("MAX_ON_SCREEN", 15),
		FreezeTicks:     getEnvInt("FREEZE_TICKS", 8),
		RestTicks:       getEnvInt("REST_TICKS", 3),
		StartingBombs:   getEnvInt("STARTING_BOMBS", 3),
		StartingFreezes: getEnvInt("STARTING_FREEZES", 3),

		StrictActiveQuestion: getEnvBool("STRICT_ACTIVE_QUESTION", false),

		TokenTTL: getEnvDuration("TOKEN_TTL", 7*24*time.Hour),

		LoginRPS:        getEnvInt("LOGIN_RPS", 5),
		LoginBurst:      getEnvInt("LOGIN_BURST", 10),
		ActionRPS:       getEnvInt("ACTION_RPS", 20),
		ActionBurst:     getEnvInt("ACTION_BURST", 40),
		RankingCacheTTL: getEnvDuration("RANKING_CACHE_TTL", 30*time.Second),
	}
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return i
}

func getEnvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}
