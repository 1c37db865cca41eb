package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/somnium/pkg/payment"
	"tableflip.dev/somnium/pkg/tui"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the text-based user interface",
		Example: `
somnium ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withQuietEnv(cmd, func(ctx context.Context, e *env) error {
				opts := tui.Options{}
				if e.cfg.PaymentBusiness != "" {
					opts.CheckoutLinks = make(map[payment.Plan]string)
					for _, o := range payment.Offers() {
						link, err := payment.CheckoutURL(o.Plan, e.cfg.PaymentBusiness, "")
						if err != nil {
							e.log.Warn().Err(err).Str("plan", string(o.Plan)).Msg("no checkout link")
							continue
						}
						opts.CheckoutLinks[o.Plan] = link
					}
				}
				return tui.Run(ctx, e.service, opts)
			})
		},
	}

	topLevel.AddCommand(cmd)
}
