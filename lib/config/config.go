package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-i2p/boardcfg/lib/util"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"github.com/spf13/viper"
)

var (
	CfgFile string
	log     = logger.GetGoI2PLogger()
)

const (
	BOARDCFG_BASE_DIR = ".boardcfg"
	EnvPrefix         = "BOARDCFG"
)

// InitConfig loads defaults, the config file and the environment into viper.
func InitConfig() error {
	if CfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(CfgFile)
	} else {
		// Set up viper to use the default config path $HOME/.boardcfg/
		viper.AddConfigPath(BuildConfigDirPath())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Load defaults
	setDefaults()

	// handle config file creating it if needed
	return handleConfigFile()
}

func setDefaults() {
	applyDefaults(viper.GetViper())
}

func applyDefaults(v *viper.Viper) {
	d := Defaults()

	v.SetDefault("catalog.dir", d.Catalog.Dir)
	v.SetDefault("resolve.policy", d.Resolve.Policy)

	v.SetDefault("header.prefix", d.Header.Prefix)
	v.SetDefault("header.guard_prefix", d.Header.GuardPrefix)
	v.SetDefault("header.out_dir", d.Header.OutDir)

	v.SetDefault("watch.debounce", d.Watch.Debounce.String())
	v.SetDefault("watch.min_interval", d.Watch.MinInterval.String())
}

func createDefaultConfig(defaultConfigDir string) error {
	defaultConfigFile := filepath.Join(defaultConfigDir, "config.yaml")
	// Ensure directory exists
	if err := os.MkdirAll(defaultConfigDir, 0o755); err != nil {
		return oops.In("config").With("dir", defaultConfigDir).Wrapf(err, "create config directory")
	}

	// Only defaults go into the file; flags and environment stay per-run.
	dv := viper.New()
	applyDefaults(dv)
	if err := dv.WriteConfigAs(defaultConfigFile); err != nil {
		return oops.In("config").With("file", defaultConfigFile).Wrapf(err, "write default config file")
	}

	log.Debugf("Created default configuration at: %s", defaultConfigFile)
	return nil
}

func handleConfigFile() error {
	err := viper.ReadInConfig()
	if err == nil {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	switch {
	case CfgFile != "" && (errors.As(err, &notFound) || !util.CheckFileExists(CfgFile)):
		return oops.In("config").With("file", CfgFile).Wrapf(err, "config file %s is not found", CfgFile)
	case errors.As(err, &notFound):
		return createDefaultConfig(BuildConfigDirPath())
	default:
		return oops.In("config").Wrapf(err, "read config file")
	}
}

// BuildConfigDirPath returns $HOME/.boardcfg.
func BuildConfigDirPath() string {
	return filepath.Join(util.UserHome(), BOARDCFG_BASE_DIR)
}
