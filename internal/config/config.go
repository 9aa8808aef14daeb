package config

import (
	"os"
	"sync"
)

// Well-known configuration keys. Each doubles as the environment
// variable consulted when no runtime override is set.
const (
	KeyAPIBaseURL       = "STOREFRONT_API_URL"
	KeyAPIToken         = "STOREFRONT_API_TOKEN"
	KeyGatewayBaseURL   = "PAYMONGO_BASE_URL"
	KeyGatewaySecretKey = "PAYMONGO_SECRET_KEY"
	KeyReturnURL        = "CHECKOUT_RETURN_URL"
	KeyRedisAddr        = "REDIS_ADDR"
	KeyStorePath        = "CHECKOUT_STORE_PATH"
	KeyHTTPPort         = "HTTP_PORT"
)

// Development fallbacks, used when neither an override nor an
// environment value is present.
var fallbacks = map[string]string{
	KeyAPIBaseURL:       "http://localhost:8000/api",
	KeyGatewayBaseURL:   "https://api.paymongo.com/v1",
	KeyGatewaySecretKey: "sk_test_localdev",
	KeyReturnURL:        "http://localhost:8080/payment/return",
	KeyStorePath:        "checkout.db",
	KeyHTTPPort:         "8080",
}

// Resolver resolves configuration values through an ordered precedence
// chain: runtime override, then environment, then hard-coded dev
// fallback. It never errors and re-evaluates on every call, so an
// override set after startup is honored on the next lookup.
type Resolver struct {
	mu        sync.RWMutex
	overrides map[string]string
}

func NewResolver() *Resolver {
	return &Resolver{overrides: make(map[string]string)}
}

func (r *Resolver) SetOverride(key, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[key] = value
}

func (r *Resolver) ClearOverride(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.overrides, key)
}

// Resolve returns the first non-empty value in precedence order, or ""
// when the key is unknown everywhere.
func (r *Resolver) Resolve(key string) string {
	r.mu.RLock()
	override := r.overrides[key]
	r.mu.RUnlock()
	if override != "" {
		return override
	}
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallbacks[key]
}

// Config is a point-in-time snapshot of the well-known keys, built once
// at process start and passed by reference into the adapters. The
// gateway secret stays behind a func so a rotated override takes effect
// on the next request without rebuilding the adapters.
type Config struct {
	resolver *Resolver

	APIBaseURL     string
	GatewayBaseURL string
	ReturnURL      string
	RedisAddr      string
	StorePath      string
	HTTPPort       string
}

func Load(r *Resolver) *Config {
	return &Config{
		resolver:       r,
		APIBaseURL:     r.Resolve(KeyAPIBaseURL),
		GatewayBaseURL: r.Resolve(KeyGatewayBaseURL),
		ReturnURL:      r.Resolve(KeyReturnURL),
		RedisAddr:      r.Resolve(KeyRedisAddr),
		StorePath:      r.Resolve(KeyStorePath),
		HTTPPort:       r.Resolve(KeyHTTPPort),
	}
}

func (c *Config) GatewaySecretKey() string {
	return c.resolver.Resolve(KeyGatewaySecretKey)
}

func (c *Config) APIToken() string {
	return c.resolver.Resolve(KeyAPIToken)
}
