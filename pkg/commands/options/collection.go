// Package options defines shared flag helpers for CLI commands.
package options

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/somnium/pkg/dream"
	"tableflip.dev/somnium/pkg/timeutil"
)

// FilterOptions selects which view of the journal a command shows.
type FilterOptions struct {
	Favorites  bool
	Collection string
}

// AddFilterArgs wires the view selection flags.
func AddFilterArgs(cmd *cobra.Command, o *FilterOptions) {
	cmd.Flags().BoolVarP(&o.Favorites, "favorites", "f", false,
		"Only show favorite dreams.")
	cmd.Flags().StringVarP(&o.Collection, "collection", "c", "",
		"Only show dreams in the collection with this id.")
}

// Validate rejects contradictory filters.
func (o *FilterOptions) Validate() error {
	if o.Favorites && o.Collection != "" {
		return errors.New("--favorites and --collection are mutually exclusive")
	}
	return nil
}

// DraftOptions are the composer toggles for a new dream.
type DraftOptions struct {
	Lucid      bool
	Favorite   bool
	Collection string
	Labels     []string
}

// AddDraftArgs wires the composer flags.
func AddDraftArgs(cmd *cobra.Command, o *DraftOptions) {
	cmd.Flags().BoolVar(&o.Lucid, "lucid", false, "Mark the dream as lucid.")
	cmd.Flags().BoolVar(&o.Favorite, "favorite", false, "Mark the dream as a favorite.")
	cmd.Flags().StringVarP(&o.Collection, "collection", "c", "", "File the dream in the collection with this id.")
	cmd.Flags().StringArrayVarP(&o.Labels, "label", "l", nil, "Add a custom label (repeatable).")
}

// ConfirmOptions skips confirmation prompts.
type ConfirmOptions struct {
	Yes bool
}

// AddConfirmArgs wires --yes.
func AddConfirmArgs(cmd *cobra.Command, o *ConfirmOptions) {
	cmd.Flags().BoolVarP(&o.Yes, "yes", "y", false, "Do not ask for confirmation.")
}

// SinceOptions limits a command to a recent look-back window.
type SinceOptions struct {
	Since string
}

// AddSinceArgs wires --since. A bare --since uses the default window.
func AddSinceArgs(cmd *cobra.Command, o *SinceOptions) {
	cmd.Flags().StringVar(&o.Since, "since", "",
		"Only include dreams from this window, e.g. 3d, 2w, 1mo, 1y.")
	cmd.Flags().Lookup("since").NoOptDefVal = timeutil.DefaultWindow
}

// Filter drops dreams dated before the window. An unset window keeps all.
func (o *SinceOptions) Filter(dreams []*dream.Dream, now time.Time) ([]*dream.Dream, error) {
	if o.Since == "" {
		return dreams, nil
	}
	window, _, err := timeutil.ParseWindow(o.Since)
	if err != nil {
		return nil, err
	}
	cutoff := timeutil.Cutoff(now, window)
	out := make([]*dream.Dream, 0, len(dreams))
	for _, d := range dreams {
		if !d.Date.Before(cutoff) {
			out = append(out, d)
		}
	}
	return out, nil
}
