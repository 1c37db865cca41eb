package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/somnium/pkg/commands/options"
)

func addCollections(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "collections",
		Aliases: []string{"collection", "col"},
		Short:   "list and manage collections",
	}

	addCollectionsList(cmd)
	addCollectionsAdd(cmd)
	addCollectionsDelete(cmd)
	topLevel.AddCommand(cmd)
}

func addCollectionsList(parent *cobra.Command) {
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "list collections with their dream counts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				sections, err := e.service.Sections(ctx)
				if err != nil {
					return oo.HandleError(err)
				}
				if oo.JSON {
					return oo.Print(sections)
				}
				dreams, err := e.service.Dreams(ctx)
				if err != nil {
					return err
				}
				e.pp.ShowID = io.ShowID
				e.pp.TitleWithCount("Collections", len(sections))
				e.pp.Sections(sections, dreams)
				return nil
			})
		},
	}

	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	parent.AddCommand(cmd)
}

func addCollectionsAdd(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "create a collection",
		Example: `
somnium collections add Recurring
somnium collections add "Flying dreams"
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				sec, decision, err := e.service.CreateSection(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				if decision.Denied() {
					e.denied(decision)
					return nil
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created collection %s (%s).\n", sec.Name, sec.ID)
				return nil
			})
		},
	}

	parent.AddCommand(cmd)
}

func addCollectionsDelete(parent *cobra.Command) {
	co := &options.ConfirmOptions{}

	cmd := &cobra.Command{
		Use:     "delete <collection>",
		Aliases: []string{"rm"},
		Short:   "delete a collection, keeping its dreams",
		Long:    `Delete removes the collection. Dreams filed under it stay in the journal, unfiled.`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				sec, err := findSection(ctx, e.service, args[0])
				if err != nil {
					return err
				}
				if !co.Yes && !e.prompt.Confirm(fmt.Sprintf("Delete collection %q", sec.Name)) {
					return nil
				}
				if err := e.service.DeleteSection(ctx, sec.ID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted collection %s.\n", sec.Name)
				return nil
			})
		},
	}

	options.AddConfirmArgs(cmd, co)
	parent.AddCommand(cmd)
}
