package config

import (
	"time"

	"github.com/go-i2p/boardcfg/lib/header"
	"github.com/go-i2p/boardcfg/lib/resolver"
	"github.com/go-i2p/boardcfg/lib/util"
	"github.com/go-i2p/logger"
	"github.com/spf13/viper"
)

// Settings is a snapshot of the tool configuration.
type Settings struct {
	Catalog CatalogSettings
	Resolve ResolveSettings
	Header  HeaderSettings
	Watch   WatchSettings
}

// CatalogSettings selects the board catalog.
type CatalogSettings struct {
	// Dir is the catalog directory. Empty selects the built-in catalog.
	Dir string
}

type ResolveSettings struct {
	// Policy is "namespaced" or "strict".
	Policy string
}

// HeaderSettings control header generation.
type HeaderSettings struct {
	Prefix      string
	GuardPrefix string
	OutDir      string
}

// WatchSettings control the catalog watcher.
type WatchSettings struct {
	// Debounce is the quiet period after the last change before regenerating.
	Debounce time.Duration
	// MinInterval is the minimum time between two regenerations.
	MinInterval time.Duration
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Resolve: ResolveSettings{Policy: resolver.PolicyNamespaced.String()},
		Header: HeaderSettings{
			Prefix:      header.DefaultPrefix,
			GuardPrefix: header.DefaultGuardPrefix,
			OutDir:      "build",
		},
		Watch: WatchSettings{
			Debounce:    300 * time.Millisecond,
			MinInterval: time.Second,
		},
	}
}

// Current reads the settings from viper.
func Current() Settings {
	return Settings{
		Catalog: CatalogSettings{Dir: viper.GetString("catalog.dir")},
		Resolve: ResolveSettings{Policy: viper.GetString("resolve.policy")},
		Header: HeaderSettings{
			Prefix:      viper.GetString("header.prefix"),
			GuardPrefix: viper.GetString("header.guard_prefix"),
			OutDir:      viper.GetString("header.out_dir"),
		},
		Watch: WatchSettings{
			Debounce:    viper.GetDuration("watch.debounce"),
			MinInterval: viper.GetDuration("watch.min_interval"),
		},
	}
}

// ResolveOptions converts the resolve settings into resolver options.
// Settings are expected to have passed Validate.
func (s Settings) ResolveOptions() []resolver.Option {
	p, err := resolver.ParsePolicy(s.Resolve.Policy)
	if err != nil {
		log.WithError(err).Warn("invalid resolve policy, using namespaced")
		p = resolver.PolicyNamespaced
	}
	return []resolver.Option{resolver.WithPolicy(p)}
}

// HeaderOptions returns the header options for a board's symbol table.
func (s Settings) HeaderOptions(symbols map[string]string) header.Options {
	return header.Options{
		Symbols:     symbols,
		Prefix:      s.Header.Prefix,
		GuardPrefix: s.Header.GuardPrefix,
	}
}

// Validate checks settings and returns the first failure.
func Validate(s Settings) error {
	log.WithFields(logger.Fields{
		"at":     "config.Validate",
		"reason": "verification_requested",
	}).Debug("validating configuration")

	validators := []func() error{
		func() error { return validateCatalog(s.Catalog) },
		func() error { return validateResolve(s.Resolve) },
		func() error { return validateHeader(s.Header) },
		func() error { return validateWatch(s.Watch) },
	}

	for _, validator := range validators {
		if err := validator(); err != nil {
			log.WithError(err).Error("Configuration validation failed")
			return err
		}
	}
	log.WithFields(logger.Fields{
		"at":     "config.Validate",
		"reason": "all_validators_passed",
	}).Debug("configuration validated")
	return nil
}

func validateCatalog(c CatalogSettings) error {
	if c.Dir != "" && !util.CheckDirExists(c.Dir) {
		log.WithField("catalog_dir", c.Dir).Error("Invalid catalog configuration")
		return newValidationError("Catalog.Dir is not a directory: " + c.Dir)
	}
	return nil
}

func validateResolve(r ResolveSettings) error {
	if _, err := resolver.ParsePolicy(r.Policy); err != nil {
		log.WithField("policy", r.Policy).Error("Invalid resolve configuration")
		return newValidationError("Resolve.Policy must be namespaced or strict")
	}
	return nil
}

func validateHeader(h HeaderSettings) error {
	// An empty prefix falls back to the default.
	if h.Prefix != "" {
		if err := header.ValidateMacro(h.Prefix); err != nil {
			return newValidationError("Header.Prefix must be a C identifier prefix")
		}
	}
	if h.GuardPrefix != "" {
		if err := header.ValidateMacro(h.GuardPrefix); err != nil {
			return newValidationError("Header.GuardPrefix must be a C identifier prefix")
		}
	}
	if h.OutDir == "" {
		return newValidationError("Header.OutDir must be set")
	}
	return nil
}

func validateWatch(w WatchSettings) error {
	if w.Debounce < 0 {
		return newValidationError("Watch.Debounce must not be negative")
	}
	if w.MinInterval < 0 {
		return newValidationError("Watch.MinInterval must not be negative")
	}
	return nil
}

// validationError is returned when configuration validation fails
type validationError struct {
	message string
}

func newValidationError(message string) error {
	return &validationError{message: message}
}

func (e *validationError) Error() string {
	return "configuration validation failed: " + e.message
}
