// Package config provides configuration management for the boardcfg tool.
//
// Settings are layered: built-in defaults, then the config file, then
// BOARDCFG_ environment variables, then command line flags bound by the CLI.
//
// # Configuration Directory
//
// The default config file is $HOME/.boardcfg/config.yaml. It is created with
// the default values on first run when no --config flag is given. An explicit
// --config path must exist.
//
// # Keys
//
//	catalog.dir          catalog directory; empty selects the built-in catalog
//	resolve.policy       namespaced or strict
//	header.prefix        prefix of derived macro names
//	header.guard_prefix  include guard prefix
//	header.out_dir       output directory of generate and watch
//	watch.debounce       quiet period before a change triggers regeneration
//	watch.min_interval   minimum time between regenerations
package config
