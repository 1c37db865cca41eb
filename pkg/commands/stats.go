package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/somnium/pkg/commands/options"
	"tableflip.dev/somnium/pkg/stats"
)

func addStats(topLevel *cobra.Command) {
	so := &options.SinceOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "show sentiment, mood and lucidity insights",
		Example: `
somnium stats
somnium stats --since 1mo
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				var s stats.Summary
				if so.Since == "" {
					var err error
					if s, err = e.service.Stats(ctx); err != nil {
						return oo.HandleError(err)
					}
				} else {
					dreams, err := e.service.Dreams(ctx)
					if err != nil {
						return oo.HandleError(err)
					}
					recent, err := so.Filter(dreams, time.Now())
					if err != nil {
						return err
					}
					s = stats.Compute(recent)
				}
				if oo.JSON {
					return oo.Print(s)
				}
				e.pp.Stats(s)
				return nil
			})
		},
	}

	options.AddSinceArgs(cmd, so)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
