package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the PokeAPI response cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.load(cmd, nil)
			if err != nil {
				return err
			}
			c, err := build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer c.Close()

			p, ok := c.cache.(purger)
			if !ok {
				return fmt.Errorf("cache backend %q has nothing to purge", cfg.Cache.Backend)
			}
			n, err := p.Purge(cmd.Context())
			if err != nil {
				return fmt.Errorf("purging cache: %w", err)
			}
			c.logger.Info("cache purged", zap.String("backend", cfg.Cache.Backend), zap.Int64("removed", n))
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired entries from %s cache\n", n, cfg.Cache.Backend)
			return nil
		},
	})
	return cmd
}
