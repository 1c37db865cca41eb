package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/somnium/pkg/entitlement"
	"tableflip.dev/somnium/pkg/payment"
)

func addRedeem(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "redeem [code]",
		Short: "unlock premium with a promo code",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				code := ""
				if len(args) == 1 {
					code = args[0]
				} else {
					var err error
					if code, err = e.prompt.Secret("Promo code"); err != nil {
						return err
					}
				}
				if err := e.service.Gate.Redeem(code); err != nil {
					if errors.Is(err, entitlement.ErrInvalidCode) {
						return errors.New("that code is not valid")
					}
					return err
				}
				_, _ = color.New(color.FgHiGreen).Fprintln(cmd.OutOrStdout(), payment.ActivatedMessage)
				return nil
			})
		},
	}

	topLevel.AddCommand(cmd)
}

func addUpgrade(topLevel *cobra.Command) {
	var (
		plan string
		wait bool
	)

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "show premium plans and wait for checkout to complete",
		Long: `Upgrade prints checkout links for the premium plans. With --wait it also
listens on payment.callback_addr for the checkout return and activates premium
when the payment succeeds.`,
		Example: `
somnium upgrade
somnium upgrade --plan yearly --wait
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				if e.service.Gate.IsPremium() {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Premium is already active.")
					return nil
				}
				plans := []payment.Plan{payment.Monthly, payment.Yearly}
				if plan != "" {
					p, err := payment.ParsePlan(plan)
					if err != nil {
						return err
					}
					plans = []payment.Plan{p}
				}

				callback := payment.NewCallbackServer(e.cfg.PaymentCallbackAddr, e.service.Gate, e.log)
				returnURL := ""
				if wait {
					returnURL = callback.ReturnURL()
				}
				links := make(map[payment.Plan]string, len(plans))
				for _, p := range plans {
					u, err := payment.CheckoutURL(p, e.cfg.PaymentBusiness, returnURL)
					if err != nil {
						if errors.Is(err, payment.ErrNoBusiness) {
							return fmt.Errorf("%w: set payment.business in .somnium.yaml or SOMNIUM_PAYMENT_BUSINESS", err)
						}
						return err
					}
					links[p] = u
				}
				e.pp.Upgrade(links)
				if !wait {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Have a code? Run `somnium redeem`.")
					return nil
				}

				ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
				defer stop()
				serveErr := make(chan error, 1)
				go func() { serveErr <- callback.Serve(ctx) }()

				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Waiting for checkout to return to %s (ctrl-c to stop)...\n", callback.ReturnURL())
				select {
				case <-callback.Granted():
					stop()
					<-serveErr
					_, _ = color.New(color.FgHiGreen).Fprintln(cmd.OutOrStdout(), payment.ActivatedMessage)
					return nil
				case err := <-serveErr:
					return err
				case <-ctx.Done():
					<-serveErr
					return nil
				}
			})
		},
	}

	cmd.Flags().StringVar(&plan, "plan", "", "Only show this plan: monthly or yearly.")
	cmd.Flags().BoolVar(&wait, "wait", false, "Listen for the checkout return and activate premium.")
	topLevel.AddCommand(cmd)
}

func addPaymentReturn(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:    "payment-return <url>",
		Short:  "activate premium from a checkout return URL",
		Long:   `Payment-return inspects a URL the checkout redirected to. When it carries payment_success=true premium is activated and the cleaned URL is printed.`,
		Args:   cobra.ExactArgs(1),
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				ret, err := payment.Observe(strings.TrimSpace(args[0]), e.service.Gate)
				if err != nil {
					return err
				}
				if ret.Granted {
					_, _ = color.New(color.FgHiGreen).Fprintln(cmd.OutOrStdout(), payment.ActivatedMessage)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), ret.Cleaned)
				return nil
			})
		},
	}

	topLevel.AddCommand(cmd)
}
