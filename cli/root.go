// Package cli implements the datatrans command line.
package cli

import (
	"datatrans/config"
	"datatrans/registry"

	"github.com/spf13/cobra"
)

type app struct {
	cfg        *config.Config
	configPath string
	declarers  []registry.Declarer
}

// Execute runs the datatrans command line with the global settings.
func Execute(declarers ...registry.Declarer) error {
	return NewRootCommand(config.Settings, declarers...).Execute()
}

// NewRootCommand builds the command tree around cfg. Declarers register
// models in code on top of those found in declaration files.
func NewRootCommand(cfg *config.Config, declarers ...registry.Declarer) *cobra.Command {
	a := &app{cfg: cfg, declarers: declarers}

	root := &cobra.Command{
		Use:   "datatrans",
		Short: "Field-level translation of application records",
		Long: `datatrans stores translations of the text fields of an application's
records next to its database, keyed by a digest of the source text, and
tracks word counts, progress and obsolete translations.

Models are declared per namespace in <namespace>/datatranslation.toml
(or .yaml) below the declaration root.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Load(a.configPath, a.cfg, cmd.Flags())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "TOML config file")
	config.BindFlags(root.PersistentFlags(), a.cfg)

	root.AddCommand(
		a.serveCommand(),
		a.statsCommand(),
		a.wordsCommand(),
		a.obsoletesCommand(),
		a.makeMessagesCommand(),
		hashTokenCommand(),
		versionCommand(),
	)
	return root
}
