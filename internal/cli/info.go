package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/pokemcp/internal/tools"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "info <pokemon>",
		Short:   "Print get_pokemon_info output",
		Example: "  pokemcp info pikachu",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load(cmd, nil)
			if err != nil {
				return err
			}
			c, err := build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			res := c.service.GetPokemonInfo(cmd.Context(), args[0])
			if e, ok := res.(tools.ErrorResult); ok {
				return errors.New(e.Error)
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}
