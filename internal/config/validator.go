package config

import (
	"fmt"
	"net"
	"regexp"
	"strings"
)

// headerNameRegex validates HTTP header names according to RFC 7230.
var headerNameRegex = regexp.MustCompile(`^[!#$%&'*+\-.^_` + "`" + `|~0-9A-Za-z]+$`)

// Validate checks the configuration for values that cannot produce a
// working gatekeeper. It is called once at startup; a non-nil error is
// fatal.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateLogging(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	if err := validateCORS(&cfg.CORS); err != nil {
		return fmt.Errorf("cors config: %w", err)
	}
	if err := validateSecurity(&cfg.Security); err != nil {
		return fmt.Errorf("security config: %w", err)
	}
	if err := validateRateLimitKey(&cfg.RateLimitKey); err != nil {
		return fmt.Errorf("rateLimitKey config: %w", err)
	}

	return nil
}

func validateServer(cfg *ServerConfig) error {
	if cfg.ListenAddress == "" {
		return fmt.Errorf("listenAddress cannot be empty")
	}
	if cfg.ReadTimeout < 0 || cfg.WriteTimeout < 0 || cfg.IdleTimeout < 0 || cfg.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}
	return nil
}

func validateLogging(cfg *LoggingConfig) error {
	switch cfg.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid level: %s", cfg.Level)
	}
	switch cfg.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid format: %s", cfg.Format)
	}
	return nil
}

func validateCORS(cfg *CORSConfig) error {
	for _, entry := range cfg.AllowOrigins {
		if entry == "" {
			return fmt.Errorf("allowOrigins entry cannot be empty")
		}
		// The policy never opens to every origin; that would break
		// the credentialed-request contract.
		if entry == "*" {
			return fmt.Errorf("allowOrigins cannot contain %q, list origins explicitly", "*")
		}
		if strings.HasPrefix(entry, "*.") && len(entry) == 2 {
			return fmt.Errorf("wildcard entry %q has no domain", entry)
		}
		if strings.Contains(entry[1:], "*") {
			return fmt.Errorf("wildcard only allowed as a %q prefix: %s", "*.", entry)
		}
	}
	if cfg.MaxAge < 0 {
		return fmt.Errorf("maxAge cannot be negative")
	}
	return nil
}

func validateSecurity(cfg *SecurityConfig) error {
	if cfg.HSTS.MaxAge < 0 {
		return fmt.Errorf("hsts maxAge cannot be negative")
	}

	directives := map[string][]string{
		"defaultSrc": cfg.CSP.DefaultSrc,
		"scriptSrc":  cfg.CSP.ScriptSrc,
		"styleSrc":   cfg.CSP.StyleSrc,
		"fontSrc":    cfg.CSP.FontSrc,
		"imgSrc":     cfg.CSP.ImgSrc,
		"connectSrc": cfg.CSP.ConnectSrc,
		"frameSrc":   cfg.CSP.FrameSrc,
		"objectSrc":  cfg.CSP.ObjectSrc,
		"baseUri":    cfg.CSP.BaseURI,
		"formAction": cfg.CSP.FormAction,
	}
	for name, sources := range directives {
		if len(sources) == 0 {
			return fmt.Errorf("csp directive %s cannot be empty", name)
		}
		for _, source := range sources {
			if source == "" {
				return fmt.Errorf("csp directive %s has an empty source", name)
			}
			if strings.ContainsAny(source, ";,") {
				return fmt.Errorf("csp directive %s has an invalid source: %s", name, source)
			}
		}
	}

	return nil
}

func validateRateLimitKey(cfg *RateLimitKeyConfig) error {
	if cfg.IdentityHeader != "" && !headerNameRegex.MatchString(cfg.IdentityHeader) {
		return fmt.Errorf("invalid identityHeader: %s", cfg.IdentityHeader)
	}
	for _, proxy := range cfg.TrustedProxies {
		if _, _, err := net.ParseCIDR(proxy); err == nil {
			continue
		}
		if net.ParseIP(proxy) == nil {
			return fmt.Errorf("invalid trustedProxies entry: %s", proxy)
		}
	}
	return nil
}
