// config.go defines notifier configuration, defaults, and validation.

package airbrake

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultHost is the public API endpoint used when Config.Host is empty.
const DefaultHost = "https://api.airbrake.io"

const (
	defaultEnvironment = "production"
	defaultHTTPTimeout = 10 * time.Second
)

var configValidator = validator.New()

// Config holds everything a Notifier needs. It is copied at construction
// and immutable afterwards; changing a Config value has no effect on
// notifiers already built from it.
type Config struct {
	// ProjectID identifies the project on the remote service. Required.
	ProjectID int64 `yaml:"project_id" validate:"required,gt=0"`

	// ProjectKey authenticates requests for the project. Required.
	ProjectKey string `yaml:"project_key" validate:"required"`

	// Host is the API endpoint. A host without a scheme gets "https://"
	// prefixed. Defaults to DefaultHost.
	Host string `yaml:"host"`

	// Environment names the deploy stage reported in the notice context
	// (production, staging, ...). Defaults to "production".
	Environment string `yaml:"environment"`

	// AppVersion is reported as the context version when non-empty.
	AppVersion string `yaml:"app_version"`

	// RootDirectory, when set, is replaced with "[PROJECT_ROOT]" in
	// backtrace file paths and reported in the notice context.
	RootDirectory string `yaml:"root_directory"`

	// KeysBlocklist holds regexp sources matched against payload keys by
	// the mandatory redaction filter. Defaults to DefaultKeysBlocklist().
	// An invalid pattern fails construction.
	KeysBlocklist []string `yaml:"keys_blocklist"`

	// Disabled turns every send into a no-op that reports ErrDisabled.
	// Reporting is enabled unless set.
	Disabled bool `yaml:"disabled"`

	// HTTPTimeout bounds each delivery attempt. Defaults to 10s.
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// DefaultSeverity is assigned to notices whose severity was not set
	// explicitly, and is the fallback for unrecognized log levels.
	// Defaults to SeverityError.
	DefaultSeverity Severity `yaml:"default_severity" validate:"omitempty,oneof=critical error warning info debug"`

	// HTTPClient optionally replaces the underlying transport. Intended
	// for tests and custom TLS or proxy setups.
	HTTPClient *http.Client `yaml:"-"`

	// Logger receives internal diagnostics (suppressed notices, delivery
	// failures). Defaults to a discarding logger: the library never
	// writes to stderr on its own.
	Logger *slog.Logger `yaml:"-"`
}

// withDefaults returns a copy of cfg with unset fields filled in.
func (cfg Config) withDefaults() Config {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Environment == "" {
		cfg.Environment = defaultEnvironment
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = defaultHTTPTimeout
	}
	if cfg.DefaultSeverity == "" {
		cfg.DefaultSeverity = SeverityError
	}
	if cfg.KeysBlocklist == nil {
		cfg.KeysBlocklist = DefaultKeysBlocklist()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return cfg
}

// validate reports misconfiguration. Called after defaults are applied,
// so only the required credentials and explicitly set fields can fail.
func (cfg Config) validate() error {
	if err := configValidator.Struct(cfg); err != nil {
		return fmt.Errorf("airbrake: invalid config: %w", err)
	}
	return nil
}
