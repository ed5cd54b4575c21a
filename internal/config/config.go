// Package config defines the gatekeeper's process-wide policy
// configuration: listen settings, origin allow-list, security header
// policy, sanitizer denylist and rate-limit key derivation. Loaded
// once at startup and immutable thereafter.
package config

import "time"

// Config is the root configuration document.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Logging      LoggingConfig      `yaml:"logging"`
	CORS         CORSConfig         `yaml:"cors"`
	Security     SecurityConfig     `yaml:"security"`
	Sanitize     SanitizeConfig     `yaml:"sanitize"`
	RateLimitKey RateLimitKeyConfig `yaml:"rateLimitKey"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	// ListenAddress is the address the server binds to, e.g. ":8080".
	ListenAddress string `yaml:"listenAddress"`

	ReadTimeout     Duration `yaml:"readTimeout"`
	WriteTimeout    Duration `yaml:"writeTimeout"`
	IdleTimeout     Duration `yaml:"idleTimeout"`
	ShutdownTimeout Duration `yaml:"shutdownTimeout"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is json or console.
	Format string `yaml:"format"`

	// Output is stdout or stderr.
	Output string `yaml:"output"`
}

// CORSConfig configures cross-origin access policy.
type CORSConfig struct {
	// AllowOrigins lists allowed origins: exact values or "*.domain"
	// subdomain wildcards. Never "*".
	AllowOrigins []string `yaml:"allowOrigins"`

	// AllowCredentials controls the Access-Control-Allow-Credentials
	// header for allowed origins.
	AllowCredentials bool `yaml:"allowCredentials"`

	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int `yaml:"maxAge"`
}

// SecurityConfig configures hardened response headers.
type SecurityConfig struct {
	HSTS HSTSConfig `yaml:"hsts"`
	CSP  CSPConfig  `yaml:"csp"`
}

// HSTSConfig configures HTTP Strict Transport Security. The header is
// only emitted on secure requests.
type HSTSConfig struct {
	// MaxAge is the max-age directive value in seconds.
	MaxAge int `yaml:"maxAge"`

	// IncludeSubDomains includes the includeSubDomains directive.
	IncludeSubDomains bool `yaml:"includeSubDomains"`
}

// CSPConfig holds per-directive source lists for the composed
// Content-Security-Policy header.
type CSPConfig struct {
	DefaultSrc []string `yaml:"defaultSrc"`
	ScriptSrc  []string `yaml:"scriptSrc"`
	StyleSrc   []string `yaml:"styleSrc"`
	FontSrc    []string `yaml:"fontSrc"`
	ImgSrc     []string `yaml:"imgSrc"`
	ConnectSrc []string `yaml:"connectSrc"`
	FrameSrc   []string `yaml:"frameSrc"`
	ObjectSrc  []string `yaml:"objectSrc"`
	BaseURI    []string `yaml:"baseUri"`
	FormAction []string `yaml:"formAction"`
}

// SanitizeConfig configures the input sanitizer.
type SanitizeConfig struct {
	// Denylist lists characters removed from free-text fields. Empty
	// means the built-in default denylist.
	Denylist []string `yaml:"denylist"`
}

// RateLimitKeyConfig configures rate limit key derivation.
type RateLimitKeyConfig struct {
	// IdentityHeader is the header carrying the declared client
	// identity. Defaults to User-Agent.
	IdentityHeader string `yaml:"identityHeader"`

	// TrustedProxies lists proxy CIDRs whose X-Forwarded-For chain
	// may be trusted when extracting the client address.
	TrustedProxies []string `yaml:"trustedProxies"`
}

// Default returns the reference deployment policy: self plus an
// explicitly enumerated set of third-party origins, one-year HSTS and
// subdomain wildcard origins disabled until configured.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddress:   ":8080",
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(15 * time.Second),
			IdleTimeout:     Duration(60 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		CORS: CORSConfig{
			AllowOrigins:     nil,
			AllowCredentials: true,
			MaxAge:           86400,
		},
		Security: SecurityConfig{
			HSTS: HSTSConfig{
				MaxAge:            31536000,
				IncludeSubDomains: true,
			},
			CSP: CSPConfig{
				DefaultSrc: []string{"'self'"},
				ScriptSrc:  []string{"'self'", "https://cdn.jsdelivr.net"},
				StyleSrc:   []string{"'self'", "'unsafe-inline'", "https://fonts.googleapis.com"},
				FontSrc:    []string{"'self'", "https://fonts.gstatic.com"},
				ImgSrc:     []string{"'self'", "data:"},
				ConnectSrc: []string{"'self'"},
				FrameSrc:   []string{"'none'"},
				ObjectSrc:  []string{"'none'"},
				BaseURI:    []string{"'self'"},
				FormAction: []string{"'self'"},
			},
		},
		Sanitize: SanitizeConfig{},
		RateLimitKey: RateLimitKeyConfig{
			IdentityHeader: "User-Agent",
		},
	}
}
