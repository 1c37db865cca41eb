package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "somnium",
		Short: base.Wrap80("A dream journal with an oracle."),
		Long: base.Wrap80("Record dreams, have them interpreted and illustrated, " +
			"then browse them by favorites, collections and insights."),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addNew(topLevel)
	addList(topLevel)
	addShow(topLevel)
	addEdit(topLevel)
	addDelete(topLevel)
	addFavorite(topLevel)
	addMove(topLevel)
	addImage(topLevel)
	addChat(topLevel)
	addCollections(topLevel)
	addStats(topLevel)
	addRedeem(topLevel)
	addUpgrade(topLevel)
	addPaymentReturn(topLevel)
	addMCP(topLevel)
	addVersion(topLevel)
}
