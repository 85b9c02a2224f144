package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/DoyleJ11/leaderboard-graph/internal/board"
	"github.com/DoyleJ11/leaderboard-graph/internal/effect"
	"github.com/DoyleJ11/leaderboard-graph/internal/layout"
)

type Config struct {
	Addr           string `yaml:"addr"`
	LeaderboardURL string `yaml:"leaderboard_url"`
	EffectsURL     string `yaml:"effects_url"`
	// OriginPatterns lists extra hosts allowed to open /ws, e.g. "localhost:*".
	OriginPatterns []string `yaml:"origin_patterns"`

	EffectsInterval time.Duration `yaml:"effects_interval"`
	RosterInterval  time.Duration `yaml:"roster_interval"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
	DecayThreshold  time.Duration `yaml:"decay_threshold"`
	CreatorPolicy   string        `yaml:"creator_policy"` // "first" | "latest"

	FrameHz        int     `yaml:"frame_hz"`
	BroadcastEvery int     `yaml:"broadcast_every"`
	ViewportWidth  float64 `yaml:"viewport_width"`
	ViewportHeight float64 `yaml:"viewport_height"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // "json" | "console"
}

func Default() Config {
	return Config{
		Addr:            ":8080",
		LeaderboardURL:  "http://localhost:1337",
		EffectsURL:      "http://localhost:1337/effects",
		EffectsInterval: time.Second,
		RosterInterval:  10 * time.Second,
		FetchTimeout:    5 * time.Second,
		DecayThreshold:  120 * time.Second,
		CreatorPolicy:   "first",
		FrameHz:         30,
		BroadcastEvery:  2,
		ViewportWidth:   1280,
		ViewportHeight:  720,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// Load layers defaults, the optional YAML file at path, a .env file in the
// working directory and finally the process environment. It does not
// validate; callers apply their overrides first and then call Validate.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// godotenv never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var err error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok {
			d, perr := time.ParseDuration(v)
			if perr != nil {
				err = multierr.Append(err, fmt.Errorf("%s: %w", key, perr))
				return
			}
			*dst = d
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, perr := strconv.Atoi(v)
			if perr != nil {
				err = multierr.Append(err, fmt.Errorf("%s: %w", key, perr))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok {
			f, perr := strconv.ParseFloat(v, 64)
			if perr != nil {
				err = multierr.Append(err, fmt.Errorf("%s: %w", key, perr))
				return
			}
			*dst = f
		}
	}

	// comma separated, blanks dropped
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok {
			var out []string
			for _, p := range strings.Split(v, ",") {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			*dst = out
		}
	}

	str("GRAPH_ADDR", &c.Addr)
	str("GAME_LEADERBOARD_URL", &c.LeaderboardURL)
	str("GAME_EFFECTS_URL", &c.EffectsURL)
	list("WS_ORIGIN_PATTERNS", &c.OriginPatterns)
	dur("EFFECTS_INTERVAL", &c.EffectsInterval)
	dur("ROSTER_INTERVAL", &c.RosterInterval)
	dur("FETCH_TIMEOUT", &c.FetchTimeout)
	dur("DECAY_THRESHOLD", &c.DecayThreshold)
	str("CREATOR_POLICY", &c.CreatorPolicy)
	integer("FRAME_HZ", &c.FrameHz)
	integer("BROADCAST_EVERY", &c.BroadcastEvery)
	float("VIEWPORT_WIDTH", &c.ViewportWidth)
	float("VIEWPORT_HEIGHT", &c.ViewportHeight)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	return err
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var err error
	if c.Addr == "" {
		err = multierr.Append(err, errors.New("addr is empty"))
	}
	for name, raw := range map[string]string{"leaderboard_url": c.LeaderboardURL, "effects_url": c.EffectsURL} {
		u, perr := url.Parse(raw)
		if perr != nil || u.Scheme == "" || u.Host == "" {
			err = multierr.Append(err, fmt.Errorf("%s %q is not an absolute url", name, raw))
		}
	}
	positive := map[string]time.Duration{
		"effects_interval": c.EffectsInterval,
		"roster_interval":  c.RosterInterval,
		"fetch_timeout":    c.FetchTimeout,
		"decay_threshold":  c.DecayThreshold,
	}
	for name, d := range positive {
		if d <= 0 {
			err = multierr.Append(err, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if _, perr := effect.ParseCreatorPolicy(c.CreatorPolicy); perr != nil {
		err = multierr.Append(err, perr)
	}
	if c.FrameHz <= 0 || c.FrameHz > 240 {
		err = multierr.Append(err, fmt.Errorf("frame_hz must be in 1..240, got %d", c.FrameHz))
	}
	if c.BroadcastEvery <= 0 {
		err = multierr.Append(err, fmt.Errorf("broadcast_every must be positive, got %d", c.BroadcastEvery))
	}
	if c.ViewportWidth <= 0 || c.ViewportHeight <= 0 {
		err = multierr.Append(err, fmt.Errorf("viewport %gx%g is empty", c.ViewportWidth, c.ViewportHeight))
	}
	if _, perr := parseLevel(c.LogLevel); perr != nil {
		err = multierr.Append(err, perr)
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		err = multierr.Append(err, fmt.Errorf("log_format %q must be json or console", c.LogFormat))
	}
	return err
}

// BoardOptions assumes a validated config.
func (c Config) BoardOptions() board.Options {
	policy, _ := effect.ParseCreatorPolicy(c.CreatorPolicy)
	o := board.DefaultOptions()
	o.EffectsInterval = c.EffectsInterval
	o.RosterInterval = c.RosterInterval
	o.FetchTimeout = c.FetchTimeout
	o.FrameInterval = time.Second / time.Duration(c.FrameHz)
	o.BroadcastEvery = c.BroadcastEvery
	o.DecayThreshold = c.DecayThreshold
	o.CreatorPolicy = policy
	o.Viewport = layout.Viewport{Width: c.ViewportWidth, Height: c.ViewportHeight, Padding: o.Viewport.Padding}
	return o
}
