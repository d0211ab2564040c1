package configs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/porodog/doodle-server/internal/game"
)

var ErrMissingEnv = errors.New("missing-env")
var ErrInvalidEnv = errors.New("invalid-env")

type Envs struct {
	Port           string
	AllowedOrigins []string
	GinMode        string
	LogLevel       string
	PostgresURL    string
	Game           game.Config
}

// Load reads the process environment, after merging a .env file when one is present.
func Load() (Envs, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Envs{}, fmt.Errorf("loading .env: %w", err)
	}
	return Parse(os.LookupEnv)
}

func Parse(lookup func(string) (string, bool)) (Envs, error) {
	envs := Envs{
		Port:     "5000",
		GinMode:  "debug",
		LogLevel: "info",
		Game:     game.DefaultConfig(),
	}

	origins, ok := lookup("ALLOWED_ORIGINS")
	if !ok || strings.TrimSpace(origins) == "" {
		return Envs{}, fmt.Errorf("%w: ALLOWED_ORIGINS", ErrMissingEnv)
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			envs.AllowedOrigins = append(envs.AllowedOrigins, o)
		}
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		envs.Port = v
	}
	if v, ok := lookup("GIN_MODE"); ok && v != "" {
		envs.GinMode = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		envs.LogLevel = v
	}
	envs.PostgresURL, _ = lookup("POSTGRES_URL")

	var err error
	cfg := &envs.Game
	if cfg.RoundDuration, err = durationEnv(lookup, "ROUND_DURATION", cfg.RoundDuration, false); err != nil {
		return Envs{}, err
	}
	if cfg.RoundSettle, err = durationEnv(lookup, "ROUND_SETTLE", cfg.RoundSettle, true); err != nil {
		return Envs{}, err
	}
	if cfg.TickInterval, err = durationEnv(lookup, "TICK_INTERVAL", cfg.TickInterval, false); err != nil {
		return Envs{}, err
	}
	if cfg.PingInterval, err = durationEnv(lookup, "PING_INTERVAL", cfg.PingInterval, false); err != nil {
		return Envs{}, err
	}
	if cfg.MaxRounds, err = intEnv(lookup, "MAX_ROUNDS", cfg.MaxRounds, 1, game.MaxRoundsLimit); err != nil {
		return Envs{}, err
	}
	if cfg.MinPlayers, err = intEnv(lookup, "MIN_PLAYERS", cfg.MinPlayers, 2, 64); err != nil {
		return Envs{}, err
	}
	if v, ok := lookup("END_ON_FIRST_CORRECT"); ok && v != "" {
		if cfg.EndOnFirstCorrect, err = strconv.ParseBool(v); err != nil {
			return Envs{}, fmt.Errorf("%w: END_ON_FIRST_CORRECT: %w", ErrInvalidEnv, err)
		}
	}
	if v, ok := lookup("HINT_FRACTIONS"); ok && v != "" {
		if cfg.HintFractions, err = parseFractions(v); err != nil {
			return Envs{}, fmt.Errorf("%w: HINT_FRACTIONS: %w", ErrInvalidEnv, err)
		}
	}

	return envs, nil
}

func durationEnv(lookup func(string) (string, bool), key string, fallback time.Duration, zeroOK bool) (time.Duration, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidEnv, key, err)
	}
	if d < 0 || (d == 0 && !zeroOK) {
		return 0, fmt.Errorf("%w: %s must be positive", ErrInvalidEnv, key)
	}
	return d, nil
}

func intEnv(lookup func(string) (string, bool), key string, fallback, lo, hi int) (int, error) {
	v, ok := lookup(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrInvalidEnv, key, err)
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%w: %s must be within [%d, %d]", ErrInvalidEnv, key, lo, hi)
	}
	return n, nil
}

func parseFractions(v string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(v, ",") {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		if f <= 0 || f >= 1 {
			return nil, fmt.Errorf("%v is outside (0, 1)", f)
		}
		out = append(out, f)
	}
	return out, nil
}
