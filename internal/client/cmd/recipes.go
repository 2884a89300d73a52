package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Vmatcha9/RTP-RecipeFinder/internal/shared/models"
)

type recipesClient struct{ serverURL *string }

func newRecipesCmd(serverURL *string) *cobra.Command {
	r := &recipesClient{serverURL: serverURL}
	cmd := &cobra.Command{Use: "recipes", Short: "Search, save and browse recipes"}

	search := &cobra.Command{Use: "search <query>", Short: "Search the recipe provider", Args: cobra.ExactArgs(1), RunE: r.search}
	search.Flags().String("cuisine", "", "Cuisine type filter")
	search.Flags().String("time", "", "Maximum preparation time (minutes or range)")
	search.Flags().String("allergens", "", "Comma-separated allergen terms to exclude")
	cmd.AddCommand(search)

	save := &cobra.Command{Use: "save <recipe-id>", Short: "Save a recipe", Args: cobra.ExactArgs(1), RunE: r.save}
	save.Flags().String("title", "", "Recipe title")
	save.Flags().String("image", "", "Image URL")
	save.Flags().Int("ready-in", 0, "Preparation time in minutes")
	save.Flags().Int("servings", 0, "Number of servings")
	save.Flags().String("source", "", "Source URL")
	cmd.AddCommand(save)

	cmd.AddCommand(&cobra.Command{Use: "saved", Short: "List saved recipes", RunE: r.saved})
	cmd.AddCommand(&cobra.Command{Use: "show <recipe-id>", Short: "Show a provider recipe and mark it viewed", Args: cobra.ExactArgs(1), RunE: r.show})
	cmd.AddCommand(&cobra.Command{Use: "recent", Short: "List recently viewed recipe ids", RunE: r.recent})
	return cmd
}

func (r *recipesClient) search(cmd *cobra.Command, args []string) error {
	client, err := apiClient(*r.serverURL)
	if err != nil {
		return err
	}
	cuisine, _ := cmd.Flags().GetString("cuisine")
	maxTime, _ := cmd.Flags().GetString("time")
	allergens, _ := cmd.Flags().GetString("allergens")
	recipes, err := client.Search(cmd.Context(), args[0], cuisine, maxTime, allergens)
	if err != nil {
		return err
	}
	return printJSON(recipes)
}

func (r *recipesClient) save(cmd *cobra.Command, args []string) error {
	client, err := apiClient(*r.serverURL)
	if err != nil {
		return err
	}
	title, _ := cmd.Flags().GetString("title")
	image, _ := cmd.Flags().GetString("image")
	readyIn, _ := cmd.Flags().GetInt("ready-in")
	servings, _ := cmd.Flags().GetInt("servings")
	source, _ := cmd.Flags().GetString("source")
	md := models.RecipeMetadata{
		Title:          title,
		Image:          image,
		ReadyInMinutes: readyIn,
		Servings:       servings,
		SourceURL:      source,
	}
	if err := client.SaveRecipe(cmd.Context(), args[0], md); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Recipe saved")
	return nil
}

func (r *recipesClient) saved(cmd *cobra.Command, args []string) error {
	client, err := apiClient(*r.serverURL)
	if err != nil {
		return err
	}
	recipes, err := client.SavedRecipes(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(recipes)
}

// show fetches the provider recipe and records the view, mirroring what
// the detail page of a browser client would do.
func (r *recipesClient) show(cmd *cobra.Command, args []string) error {
	client, err := apiClient(*r.serverURL)
	if err != nil {
		return err
	}
	recipe, err := client.RecipeByID(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := client.RecordRecentlyViewed(cmd.Context(), args[0]); err != nil {
		return err
	}
	return printJSON(recipe)
}

func (r *recipesClient) recent(cmd *cobra.Command, args []string) error {
	client, err := apiClient(*r.serverURL)
	if err != nil {
		return err
	}
	recent, err := client.RecentlyViewed(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(recent)
}

func newNotesCmd(serverURL *string) *cobra.Command {
	cmd := &cobra.Command{Use: "notes", Short: "Read and write per-recipe notes"}
	cmd.AddCommand(&cobra.Command{
		Use:   "get <recipe-id>",
		Short: "Show the note for a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(*serverURL)
			if err != nil {
				return err
			}
			note, err := client.Note(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), note)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <recipe-id> <text>",
		Short: "Set the note for a recipe",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(*serverURL)
			if err != nil {
				return err
			}
			if err := client.SetNote(cmd.Context(), args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Note saved")
			return nil
		},
	})
	return cmd
}

func newAllergensCmd(serverURL *string) *cobra.Command {
	cmd := &cobra.Command{Use: "allergens", Short: "Manage the allergen preference list"}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show stored allergens",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(*serverURL)
			if err != nil {
				return err
			}
			allergens, err := client.Allergens(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(allergens)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <allergen>...",
		Short: "Replace the stored allergen list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := apiClient(*serverURL)
			if err != nil {
				return err
			}
			if err := client.SetAllergens(cmd.Context(), args); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Allergens updated")
			return nil
		},
	})
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
