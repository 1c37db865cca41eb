package commands

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/somnium/pkg/oracle"
)

func addChat(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "chat <id> [question]",
		Short: "talk with the spirit of a dream",
		Long: `Chat opens a conversation grounded in the dream's text. With a question it
answers once; without one it reads questions from stdin until EOF or "exit".`,
		Example: `
somnium chat 3f2a "why was the door blue?"
somnium chat 3f2a
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				d, err := findDream(ctx, e.service, args[0])
				if err != nil {
					return err
				}
				session, err := e.service.OpenChat(ctx, d)
				if err != nil {
					return err
				}

				var t oracle.Transcript
				out := cmd.OutOrStdout()
				ask := func(q string) {
					_, _ = color.New(color.FgHiMagenta, color.Bold).Fprint(out, "oracle › ")
					err := t.Ask(ctx, session, q, func(frag string) {
						_, _ = fmt.Fprint(out, frag)
					})
					if err != nil {
						e.log.Warn().Err(err).Str("dream", d.ID).Msg("chat turn failed")
						_, _ = fmt.Fprint(out, oracle.SilentReply)
					}
					_, _ = fmt.Fprintln(out)
				}

				if len(args) > 1 {
					ask(strings.Join(args[1:], " "))
					return nil
				}

				e.pp.Title(d.Title())
				scanner := bufio.NewScanner(cmd.InOrStdin())
				for {
					_, _ = color.New(color.FgHiBlue, color.Bold).Fprint(out, "you › ")
					if !scanner.Scan() {
						_, _ = fmt.Fprintln(out)
						return scanner.Err()
					}
					q := strings.TrimSpace(scanner.Text())
					switch q {
					case "":
						continue
					case "exit", "quit":
						return nil
					}
					ask(q)
					if ctx.Err() != nil {
						return nil
					}
				}
			})
		},
	}

	topLevel.AddCommand(cmd)
}
