// Package cli implements the boardcfg command tree.
package cli

import (
	"os"

	"github.com/go-i2p/boardcfg/lib/board"
	"github.com/go-i2p/boardcfg/lib/config"
	"github.com/go-i2p/boardcfg/lib/embedded"
	"github.com/go-i2p/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log = logger.GetGoI2PLogger()

// HeaderFileName is the name of the header generate writes for each board.
const HeaderFileName = "mpconfigboard.h"

// app carries the settings loaded before a command runs.
type app struct {
	settings config.Settings
}

// NewRootCommand builds the boardcfg command tree. Flags are bound to viper
// keys, so they take precedence over the config file and environment.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "boardcfg",
		Short: "Resolve board configuration layers into firmware build headers",
		Long: "boardcfg merges a board's override layer over the common baseline, checks the\n" +
			"dependency rules and emits the result as a C preprocessor header.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&config.CfgFile, "config", "", "config file (default $HOME/.boardcfg/config.yaml)")
	flags.String("catalog", "", "catalog directory (default: built-in catalog)")
	flags.String("policy", "", "resolution policy: namespaced or strict")
	_ = viper.BindPFlag("catalog.dir", flags.Lookup("catalog"))
	_ = viper.BindPFlag("resolve.policy", flags.Lookup("policy"))

	root.AddCommand(
		a.boardsCommand(),
		a.resolveCommand(),
		a.headerCommand(),
		a.checkCommand(),
		a.generateCommand(),
		a.watchCommand(),
		a.initCommand(),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	if err := NewRootCommand().Execute(); err != nil {
		return 1
	}
	return 0
}

func (a *app) load() error {
	if err := config.InitConfig(); err != nil {
		return err
	}
	s := config.Current()
	if err := config.Validate(s); err != nil {
		return err
	}
	a.settings = s
	return nil
}

// catalog opens the configured catalog directory, or the built-in catalog.
func (a *app) catalog() (*board.Catalog, error) {
	dir := a.settings.Catalog.Dir
	if dir == "" {
		log.Debug("using built-in catalog")
		return embedded.Open()
	}
	log.WithField("dir", dir).Debug("opening catalog directory")
	return board.Open(os.DirFS(dir))
}
