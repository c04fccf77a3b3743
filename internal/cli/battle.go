package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/pokemcp/internal/game/combat"
	"github.com/cory-johannsen/pokemcp/internal/tools"
)

func newBattleCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "battle <pokemon1> <pokemon2>",
		Short: "Simulate a battle between two Pokémon",
		Example: `  pokemcp battle pikachu charmander
  pokemcp battle pikachu charmander --seed 42
  pokemcp battle eevee ditto --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.load(cmd, map[string]string{"battle.seed": "seed"})
			if err != nil {
				return err
			}
			c, err := build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			res := c.service.SimulateBattle(cmd.Context(), args[0], args[1])
			switch r := res.(type) {
			case tools.ErrorResult:
				return errors.New(r.Error)
			case combat.Result:
				if asJSON {
					return printJSON(cmd.OutOrStdout(), r)
				}
				printBattle(cmd.OutOrStdout(), r)
				return nil
			default:
				return fmt.Errorf("unexpected result %T", res)
			}
		},
	}

	cmd.Flags().Uint64("seed", 0, "seed for reproducible battles (0 = random)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw simulate_battle result")
	return cmd
}
