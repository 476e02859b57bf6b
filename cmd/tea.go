package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"mspro-labs/tea-buddy/internal/collection"
	"mspro-labs/tea-buddy/internal/models"
	"mspro-labs/tea-buddy/internal/store"
)

var teaCmd = &cobra.Command{
	Use:   "tea",
	Short: "List and edit the teas in the collection",
}

var listQuery collection.Query

var teaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List teas, in stock only unless --all",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runTeaList()
	},
}

var teaShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one tea as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runTeaShow(parseID(args[0]))
	},
}

var teaAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a tea by hand",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runTeaAdd(cmd.Flags())
	},
}

var teaUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change the given fields of a tea",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runTeaUpdate(parseID(args[0]), cmd.Flags())
	},
}

var teaDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a tea",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runTeaDelete(parseID(args[0]))
	},
}

// teaInput collects the flags shared by add and update.
var teaInput struct {
	name, typ, brand, origin, temp, time, method string
	quantity, infusions, description, url, image string
	outOfStock, wishlist                         bool
	grams                                        float64
	rating                                       int
}

func addTeaFlags(fs *pflag.FlagSet) {
	fs.StringVar(&teaInput.name, "name", "", "tea name")
	fs.StringVar(&teaInput.typ, "type", "", "Oolong, Black, Green, White or Herbal")
	fs.StringVar(&teaInput.brand, "brand", "", "brand or shop")
	fs.StringVar(&teaInput.origin, "origin", "", "country of origin")
	fs.StringVar(&teaInput.temp, "temperature", "", "brewing temperature, snapped to a preset")
	fs.StringVar(&teaInput.time, "time", "", "steep time")
	fs.StringVar(&teaInput.method, "method", "", "Gongfu or Western")
	fs.StringVar(&teaInput.quantity, "quantity", "", "leaf quantity per session")
	fs.StringVar(&teaInput.infusions, "infusions", "", "infusion schedule")
	fs.StringVar(&teaInput.description, "description", "", "tasting notes")
	fs.StringVar(&teaInput.url, "url", "", "product page")
	fs.StringVar(&teaInput.image, "image", "", "image URL")
	fs.BoolVar(&teaInput.outOfStock, "out-of-stock", false, "mark as out of stock")
	fs.BoolVar(&teaInput.wishlist, "wishlist", false, "put on the wishlist")
	fs.Float64Var(&teaInput.grams, "grams", 0, "grams left")
	fs.IntVar(&teaInput.rating, "rating", 0, "rating from 1 to 5")
}

func init() {
	teaListCmd.Flags().StringVar(&listQuery.Type, "type", collection.AllTypes, "only this tea type")
	teaListCmd.Flags().StringVar(&listQuery.Search, "search", "", "match name or brand")
	teaListCmd.Flags().BoolVar(&listQuery.ShowOutOfStock, "all", false, "include out-of-stock teas")
	teaListCmd.Flags().BoolVar(&listQuery.Wishlist, "wishlist", false, "list the wishlist instead")

	addTeaFlags(teaAddCmd.Flags())
	addTeaFlags(teaUpdateCmd.Flags())

	teaCmd.AddCommand(teaListCmd, teaShowCmd, teaAddCmd, teaUpdateCmd, teaDeleteCmd)
	rootCmd.AddCommand(teaCmd)
}

func parseID(s string) models.ID {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		log.Fatal().Str("id", s).Msg("Invalid id")
	}
	return models.ID(n)
}

func runTeaList() {
	ctx := context.Background()
	st := openLocal()
	defer st.Close()

	teas, err := st.ListTeas(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list teas")
	}
	teas = collection.Filter(teas, listQuery)
	if len(teas) == 0 {
		fmt.Println("No teas match.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tBRAND\tTEMP\tTIME\tSTOCK")
	for _, t := range teas {
		stock := t.StockLabel()
		if !t.InStock {
			stock = "out"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Type, t.Brand, t.Temperature, t.Time, stock)
	}
	w.Flush()
}

func runTeaShow(id models.ID) {
	st := openLocal()
	defer st.Close()

	tea, err := st.GetTea(context.Background(), id)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load tea")
	}
	printJSON(tea)
}

func runTeaAdd(fs *pflag.FlagSet) {
	ctx := context.Background()
	tea := models.Tea{InStock: true}
	applyTeaFlags(&tea, fs)
	tea = collection.ApplyDefaults(tea)

	st := openLocal()
	defer st.Close()

	saved, err := st.AddTea(ctx, tea)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to add tea")
	}
	fmt.Printf("💾 Added #%d %s\n", saved.ID, saved.Name)
	autoEmbed(ctx, st)
}

func runTeaUpdate(id models.ID, fs *pflag.FlagSet) {
	ctx := context.Background()
	st := openLocal()
	defer st.Close()

	tea, err := st.GetTea(ctx, id)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load tea")
	}
	tea = updateFromFlags(tea, fs)

	updated, err := st.UpdateTea(ctx, tea)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to update tea")
	}
	printJSON(updated)
	autoEmbed(ctx, st)
}

func runTeaDelete(id models.ID) {
	st := openLocal()
	defer st.Close()

	err := st.DeleteTea(context.Background(), id)
	if errors.Is(err, store.ErrNotFound) {
		log.Fatal().Int64("id", int64(id)).Msg("No such tea")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to delete tea")
	}
	fmt.Printf("🗑️ Deleted #%d\n", id)
}

// applyTeaFlags copies the flags the user actually set onto tea.
func applyTeaFlags(tea *models.Tea, fs *pflag.FlagSet) {
	str := map[string]*string{
		"name": &tea.Name, "type": &tea.Type, "brand": &tea.Brand, "origin": &tea.Origin,
		"temperature": &tea.Temperature, "time": &tea.Time, "method": &tea.Method,
		"quantity": &tea.Quantity, "infusions": &tea.Infusions, "description": &tea.Description,
		"url": &tea.URL, "image": &tea.ImageURL,
	}
	vals := map[string]string{
		"name": teaInput.name, "type": teaInput.typ, "brand": teaInput.brand, "origin": teaInput.origin,
		"temperature": teaInput.temp, "time": teaInput.time, "method": teaInput.method,
		"quantity": teaInput.quantity, "infusions": teaInput.infusions, "description": teaInput.description,
		"url": teaInput.url, "image": teaInput.image,
	}
	for name, dst := range str {
		if fs.Changed(name) {
			*dst = vals[name]
		}
	}
	if fs.Changed("out-of-stock") {
		tea.InStock = !teaInput.outOfStock
	}
	if fs.Changed("wishlist") {
		tea.IsWishlist = teaInput.wishlist
	}
	if fs.Changed("grams") {
		g := teaInput.grams
		tea.StockGrams = &g
	}
	if fs.Changed("rating") {
		tea.Rating = teaInput.rating
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode JSON")
	}
	fmt.Println(string(out))
}

// updateFromFlags overlays the changed flags on tea and canonicalizes the
// result.
func updateFromFlags(tea models.Tea, fs *pflag.FlagSet) models.Tea {
	applyTeaFlags(&tea, fs)
	return collection.Canonicalize(tea)
}
