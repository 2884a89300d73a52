package cmd

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version, buildDate string) *cobra.Command {
	var serverURL string
	root := &cobra.Command{
		Use:   "recipefinder",
		Short: "RecipeFinder CLI",
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server base URL")

	root.AddCommand(newVersionCmd(version, buildDate))
	root.AddCommand(newAuthCmd(&serverURL))
	root.AddCommand(newRecipesCmd(&serverURL))
	root.AddCommand(newNotesCmd(&serverURL))
	root.AddCommand(newAllergensCmd(&serverURL))
	return root
}
