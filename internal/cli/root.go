// Package cli implements the pokemcp command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/pokemcp/internal/config"
)

type app struct {
	configPath string
}

// NewRootCmd creates the top-level pokemcp command with all subcommands.
func NewRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "pokemcp",
		Short: "Pokémon data and battle simulation tools over MCP",
		Long: `pokemcp serves get_pokemon_info and simulate_battle as Model Context
Protocol tools. The info and battle subcommands run the same operations from
the shell.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to configuration file (empty = defaults + POKEMCP_* env)")

	cmd.AddCommand(
		newServeCmd(a),
		newInfoCmd(a),
		newBattleCmd(a),
		newCacheCmd(a),
	)
	return cmd
}

// load builds the configuration, binding each config key in flags to the
// named command flag. Flags the user did not set leave file and environment
// values in place.
func (a *app) load(cmd *cobra.Command, flags map[string]string) (config.Config, error) {
	v := config.NewViper()
	for key, name := range flags {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			return config.Config{}, fmt.Errorf("unknown flag --%s", name)
		}
		if !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return config.Config{}, fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	if a.configPath != "" {
		v.SetConfigFile(a.configPath)
		if err := v.ReadInConfig(); err != nil {
			return config.Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return config.LoadFromViper(v)
}
