package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mspro-labs/tea-buddy/internal/models"
	"mspro-labs/tea-buddy/internal/shops"
	"mspro-labs/tea-buddy/internal/store"
)

var shopsCmd = &cobra.Command{
	Use:   "shops",
	Short: "Manage the directory of known tea shops",
}

var shopInput struct {
	name       string
	variations []string
	patterns   []string
	website    string
}

var shopsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the shops in lookup order",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runShopsList()
	},
}

var shopsFindCmd = &cobra.Command{
	Use:   "find <name-or-url>",
	Short: "Resolve a name, hostname or URL to a directory shop",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runShopsFind(strings.Join(args, " "))
	},
}

var shopsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a shop to the end of the directory",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		editDirectory(func(d *shops.Directory) (string, error) {
			s, err := d.Add(shopFromFlags(models.Shop{}, cmd))
			return fmt.Sprintf("➕ Added #%d %s", s.ID, s.Name), err
		})
	},
}

var shopsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a shop, keeping its id and position",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		editDirectory(func(d *shops.Directory) (string, error) {
			current, ok := d.Get(id)
			if !ok {
				return "", fmt.Errorf("shop %d: %w", id, shops.ErrNotFound)
			}
			s, err := d.Update(id, shopFromFlags(current, cmd))
			return fmt.Sprintf("✏️ Updated #%d %s", s.ID, s.Name), err
		})
	},
}

var shopsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a shop from the directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := parseID(args[0])
		editDirectory(func(d *shops.Directory) (string, error) {
			return fmt.Sprintf("🗑️ Deleted shop #%d", id), d.Delete(id)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{shopsAddCmd, shopsUpdateCmd} {
		c.Flags().StringVar(&shopInput.name, "name", "", "display name")
		c.Flags().StringSliceVar(&shopInput.variations, "variation", nil, "alternative spelling (repeatable)")
		c.Flags().StringSliceVar(&shopInput.patterns, "pattern", nil, "URL fragment identifying the shop (repeatable)")
		c.Flags().StringVar(&shopInput.website, "website", "", "shop website")
	}
	shopsAddCmd.MarkFlagRequired("name")

	shopsCmd.AddCommand(shopsListCmd, shopsFindCmd, shopsAddCmd, shopsUpdateCmd, shopsDeleteCmd)
	rootCmd.AddCommand(shopsCmd)
}

func shopFromFlags(s models.Shop, cmd *cobra.Command) models.Shop {
	fs := cmd.Flags()
	if fs.Changed("name") {
		s.Name = shopInput.name
	}
	if fs.Changed("variation") {
		s.Variations = shopInput.variations
	}
	if fs.Changed("pattern") {
		s.URLPatterns = shopInput.patterns
	}
	if fs.Changed("website") {
		s.Website = shopInput.website
	}
	return s
}

// editDirectory loads the directory, applies edit and saves the result.
func editDirectory(edit func(d *shops.Directory) (string, error)) {
	ctx := context.Background()
	st := openLocal()
	defer st.Close()

	d := loadDirectory(ctx, st)
	msg, err := edit(d)
	if err != nil {
		log.Fatal().Err(err).Msg("Shop change rejected")
	}
	if err := saveDirectory(ctx, st, d); err != nil {
		log.Fatal().Err(err).Msg("Failed to save shops")
	}
	fmt.Println(msg)
}

func saveDirectory(ctx context.Context, st store.Store, d *shops.Directory) error {
	return st.SaveShops(ctx, d.List())
}

func runShopsList() {
	st := openLocal()
	defer st.Close()

	list := loadDirectory(context.Background(), st).List()
	if len(list) == 0 {
		fmt.Println("The shop directory is empty.")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tURL PATTERNS\tWEBSITE")
	for _, s := range list {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.ID, s.Name, strings.Join(s.URLPatterns, ", "), s.Website)
	}
	w.Flush()
}

func runShopsFind(text string) {
	st := openLocal()
	defer st.Close()

	s, ok := loadDirectory(context.Background(), st).Find(text)
	if !ok {
		fmt.Printf("No shop matches %q.\n", text)
		os.Exit(1)
	}
	fmt.Printf("#%d %s\n", s.ID, s.Name)
}
