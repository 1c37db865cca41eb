package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/somnium/pkg/app"
	"tableflip.dev/somnium/pkg/commands/options"
	"tableflip.dev/somnium/pkg/dream"
	"tableflip.dev/somnium/pkg/imaging"
	"tableflip.dev/somnium/pkg/viewstate"
)

const deletePrompt = "Are you sure you want to wake up from this dream forever"

func addNew(topLevel *cobra.Command) {
	do := &options.DraftOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "new [dream text]",
		Short: "record a dream and have it interpreted",
		Example: `
somnium new I was flying over a city made of glass
somnium new --lucid --label flying "I knew I was dreaming and flew higher"
somnium new
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				content := strings.Join(args, " ")
				if strings.TrimSpace(content) == "" {
					var err error
					if content, err = e.prompt.Text("Describe your dream"); err != nil {
						return err
					}
				}
				draft := app.Draft{
					Content:    content,
					IsLucid:    do.Lucid,
					IsFavorite: do.Favorite,
					Labels:     do.Labels,
				}
				if do.Collection != "" {
					s, err := findSection(ctx, e.service, do.Collection)
					if err != nil {
						return err
					}
					draft.SectionID = s.ID
				}

				if !oo.JSON {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Interpreting your dream...")
				}
				res, err := e.service.Create(ctx, draft)
				if err != nil {
					return oo.HandleError(err)
				}
				if res.Decision.Denied() {
					e.denied(res.Decision)
					return nil
				}
				if oo.JSON {
					return oo.Print(res.Dream)
				}
				e.pp.Dream(res.Dream, sectionName(ctx, e.service, res.Dream.SectionID))
				return nil
			})
		},
	}

	options.AddDraftArgs(cmd, do)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addList(topLevel *cobra.Command) {
	fo := &options.FilterOptions{}
	so := &options.SinceOptions{}
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "list dreams in the journal, favorites or a collection",
		Example: `
somnium list
somnium list --favorites
somnium list --collection 3f2a --show-id
somnium list --since 2w
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := fo.Validate(); err != nil {
				return err
			}
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				state := viewstate.DashboardState()
				title := "Dream Journal"
				switch {
				case fo.Favorites:
					state = viewstate.State{Kind: viewstate.Favorites}
					title = "Favorites"
				case fo.Collection != "":
					s, err := findSection(ctx, e.service, fo.Collection)
					if err != nil {
						return oo.HandleError(err)
					}
					state = viewstate.CollectionState(s.ID)
					title = s.Name
				}

				dreams, err := e.service.Dreams(ctx)
				if err != nil {
					return oo.HandleError(err)
				}
				visible, err := so.Filter(viewstate.Derive(dreams, state), time.Now())
				if err != nil {
					return err
				}
				if oo.JSON {
					return oo.Print(visible)
				}
				sections, err := e.service.Sections(ctx)
				if err != nil {
					return err
				}
				e.pp.ShowID = io.ShowID
				e.pp.TitleWithCount(title, len(visible))
				e.pp.Dreams(visible, sections)
				return nil
			})
		},
	}

	options.AddFilterArgs(cmd, fo)
	options.AddSinceArgs(cmd, so)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addShow(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "show a dream with its interpretation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				d, err := findDream(ctx, e.service, args[0])
				if err != nil {
					return oo.HandleError(err)
				}
				if oo.JSON {
					return oo.Print(d)
				}
				e.pp.Dream(d, sectionName(ctx, e.service, d.SectionID))
				return nil
			})
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addEdit(topLevel *cobra.Command) {
	var (
		content     string
		date        string
		labels      []string
		addLabels   []string
		dropLabels  []string
		clearLabels bool
		lucid       bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "change a dream's text, date or labels",
		Long: `Edit overwrites the given fields. The interpretation and illustration are
kept as they were.`,
		Example: `
somnium edit 3f2a --content "the door was blue, not red"
somnium edit 3f2a --date 2025-03-01
somnium edit 3f2a --add-label recurring --remove-label work
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				d, err := findDream(ctx, e.service, args[0])
				if err != nil {
					return err
				}
				var c app.Changes
				flags := cmd.Flags()
				if flags.Changed("content") {
					c.Content = &content
				}
				if flags.Changed("date") {
					t, err := dream.ParseTime(date)
					if err != nil {
						return err
					}
					c.Date = &t
				}
				if flags.Changed("lucid") {
					c.IsLucid = &lucid
				}
				if clearLabels || flags.Changed("label") || len(addLabels) > 0 || len(dropLabels) > 0 {
					next := d.Clone()
					if clearLabels || flags.Changed("label") {
						next.CustomLabels = nil
					}
					for _, l := range append(labels, addLabels...) {
						next.AddLabel(l)
					}
					for _, l := range dropLabels {
						next.RemoveLabel(l)
					}
					c.Labels = &next.CustomLabels
				}
				if c == (app.Changes{}) {
					return errors.New("nothing to change, see --help")
				}

				updated, err := e.service.Edit(ctx, d, c)
				if err != nil {
					return err
				}
				e.pp.Dream(updated, sectionName(ctx, e.service, updated.SectionID))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "Replace the dream text.")
	cmd.Flags().StringVar(&date, "date", "", "Replace the date (YYYY-MM-DD or RFC3339).")
	cmd.Flags().StringArrayVar(&labels, "label", nil, "Replace all labels (repeatable).")
	cmd.Flags().StringArrayVar(&addLabels, "add-label", nil, "Add a label (repeatable).")
	cmd.Flags().StringArrayVar(&dropLabels, "remove-label", nil, "Remove a label (repeatable).")
	cmd.Flags().BoolVar(&clearLabels, "clear-labels", false, "Remove every label.")
	cmd.Flags().BoolVar(&lucid, "lucid", false, "Set whether the dream was lucid.")
	topLevel.AddCommand(cmd)
}

func addDelete(topLevel *cobra.Command) {
	co := &options.ConfirmOptions{}

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "delete a dream",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				d, err := findDream(ctx, e.service, args[0])
				if err != nil {
					return err
				}
				if !co.Yes && !e.prompt.Confirm(deletePrompt) {
					return nil
				}
				if err := e.service.DeleteDream(ctx, d.ID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q.\n", d.Title())
				return nil
			})
		},
	}

	options.AddConfirmArgs(cmd, co)
	topLevel.AddCommand(cmd)
}

func addFavorite(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "favorite <id>",
		Aliases: []string{"fav"},
		Short:   "toggle a dream's favorite mark",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				d, err := findDream(ctx, e.service, args[0])
				if err != nil {
					return err
				}
				updated, decision, err := e.service.ToggleFavorite(ctx, d)
				if err != nil {
					return err
				}
				if decision.Denied() {
					e.denied(decision)
					return nil
				}
				state := "no longer a favorite"
				if updated.IsFavorite {
					state = "a favorite"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%q is now %s.\n", updated.Title(), state)
				return nil
			})
		},
	}

	topLevel.AddCommand(cmd)
}

func addMove(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "move <id> [collection]",
		Short: "file a dream in a collection, or unfile it",
		Long: `Move files the dream under the given collection id or name. Without a
collection an interactive picker is shown; pick "(no collection)" to unfile.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				d, err := findDream(ctx, e.service, args[0])
				if err != nil {
					return err
				}
				target := ""
				if len(args) == 2 {
					s, err := findSection(ctx, e.service, args[1])
					if err != nil {
						return err
					}
					target = s.ID
				} else {
					sections, err := e.service.Sections(ctx)
					if err != nil {
						return err
					}
					if target, err = e.prompt.Section("Collection", sections); err != nil {
						return err
					}
				}
				updated, err := e.service.SetSection(ctx, d, target)
				if err != nil {
					return err
				}
				if name := sectionName(ctx, e.service, updated.SectionID); name != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Moved %q to %s.\n", updated.Title(), name)
				} else {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%q is no longer in a collection.\n", updated.Title())
				}
				return nil
			})
		},
	}

	topLevel.AddCommand(cmd)
}

func addImage(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "image <id> <file>",
		Short: "save a dream's illustration to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(ctx context.Context, e *env) error {
				d, err := findDream(ctx, e.service, args[0])
				if err != nil {
					return err
				}
				if !d.HasImage() {
					return fmt.Errorf("dream %q has no illustration", d.Title())
				}
				mime, data, err := imaging.ParseDataURI(d.ImageURL)
				if err != nil {
					return err
				}
				if err := os.WriteFile(args[1], data, 0o644); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %d bytes).\n", args[1], mime, len(data))
				return nil
			})
		},
	}

	topLevel.AddCommand(cmd)
}
