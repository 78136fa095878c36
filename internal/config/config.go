// Package config loads hwcart settings from a YAML file, HWCART_*
// environment variables and built-in defaults, and validates the result
// against an embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/hwcart/internal/cart"
)

//go:embed schema.cue
var schemaCUE string

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HWCART_"

// Config is the full client configuration.
type Config struct {
	API      APIConfig      `yaml:"api" json:"api"`
	Actor    ActorConfig    `yaml:"actor" json:"actor"`
	Store    StoreConfig    `yaml:"store" json:"store"`
	Checkout CheckoutConfig `yaml:"checkout" json:"checkout"`
	Currency CurrencyConfig `yaml:"currency" json:"currency"`
	Log      LogConfig      `yaml:"log" json:"log"`
}

type APIConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
	Token   string `yaml:"token" json:"token"`
	Timeout string `yaml:"timeout" json:"timeout"`
}

// RequestTimeout parses Timeout, falling back to 10s when unparseable.
func (a APIConfig) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

type ActorConfig struct {
	ID   string `yaml:"id" json:"id"`
	Role string `yaml:"role" json:"role"`
}

// Actor converts to the cart's actor type.
func (a ActorConfig) Actor() cart.Actor {
	return cart.Actor{ID: a.ID, Role: cart.ParseRole(a.Role)}
}

type StoreConfig struct {
	Path string `yaml:"path" json:"path"`
}

type CheckoutConfig struct {
	Key string `yaml:"key" json:"key"`
}

type CurrencyConfig struct {
	Code   string `yaml:"code" json:"code"`
	Symbol string `yaml:"symbol" json:"symbol"`
	Locale string `yaml:"locale" json:"locale"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// SlogLevel maps Level to a slog level. Unknown values are info.
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080/api/v1",
			Timeout: "10s",
		},
		Actor:    ActorConfig{Role: string(cart.RoleCustomer)},
		Store:    StoreConfig{Path: "hwcart.db"},
		Checkout: CheckoutConfig{Key: cart.DefaultCheckoutKey},
		Currency: CurrencyConfig{Code: "IDR", Symbol: "Rp", Locale: "id"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads path (optional; "" means defaults only), applies HWCART_*
// overrides from the process environment and validates the result.
func Load(path string) (Config, error) {
	return load(path, os.Getenv)
}

func load(path string, lookup func(string) string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg, lookup)

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func getenv(lookup func(string) string, key, def string) string {
	if v := lookup(EnvPrefix + key); v != "" {
		return v
	}
	return def
}

func applyEnv(cfg *Config, lookup func(string) string) {
	cfg.API.BaseURL = getenv(lookup, "API_BASE_URL", cfg.API.BaseURL)
	cfg.API.Token = getenv(lookup, "API_TOKEN", cfg.API.Token)
	cfg.API.Timeout = getenv(lookup, "API_TIMEOUT", cfg.API.Timeout)
	cfg.Actor.ID = getenv(lookup, "ACTOR_ID", cfg.Actor.ID)
	cfg.Actor.Role = getenv(lookup, "ACTOR_ROLE", cfg.Actor.Role)
	cfg.Store.Path = getenv(lookup, "STORE_PATH", cfg.Store.Path)
	cfg.Checkout.Key = getenv(lookup, "CHECKOUT_KEY", cfg.Checkout.Key)
	cfg.Currency.Code = getenv(lookup, "CURRENCY_CODE", cfg.Currency.Code)
	cfg.Currency.Symbol = getenv(lookup, "CURRENCY_SYMBOL", cfg.Currency.Symbol)
	cfg.Currency.Locale = getenv(lookup, "CURRENCY_LOCALE", cfg.Currency.Locale)
	cfg.Log.Level = getenv(lookup, "LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getenv(lookup, "LOG_FORMAT", cfg.Log.Format)
}

// Validate checks cfg against the embedded CUE schema.
func Validate(cfg Config) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	value := ctx.CompileBytes(data, cue.Filename("config.json"))
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
