package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mspro-labs/tea-buddy/internal/collection"
	"mspro-labs/tea-buddy/internal/extractor"
	"mspro-labs/tea-buddy/internal/fetcher"
	"mspro-labs/tea-buddy/internal/logger"
	"mspro-labs/tea-buddy/internal/models"
)

var (
	scrapeBrowser  bool
	scrapeSave     bool
	scrapeWishlist bool
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <product-url>",
	Short: "Read tea details from a shop's product page",
	Long: `Fetches a product page, extracts name, brand, description, image,
brewing temperature, steep time and tea type, and prints the resulting tea.
With --save the tea is added to the collection (or the wishlist).`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runScrape(args[0])
	},
}

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeBrowser, "browser", false, "render the page in a headless browser")
	scrapeCmd.Flags().BoolVar(&scrapeSave, "save", false, "add the tea to the local collection")
	scrapeCmd.Flags().BoolVar(&scrapeWishlist, "wishlist", false, "save to the wishlist instead of the collection")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(pageURL string) {
	ctx := context.Background()
	pageURL = strings.TrimSpace(pageURL)

	// 1. Connect to DB (the shop directory lives there)
	st := openLocal()
	defer st.Close()
	directory := loadDirectory(ctx, st)

	// 2. Fetch the page
	html, err := newFetcher(scrapeBrowser).Fetch(ctx, pageURL)
	if err != nil {
		var fe *fetcher.FetchError
		if errors.As(err, &fe) {
			fmt.Fprintln(os.Stderr, "❌", fe.Error())
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Fetch failed")
	}

	// 3. Extract and merge into a blank tea
	ex, err := extractor.New(directory, extractor.WithLogger(logger.Component("extractor"))).ExtractHTML(html, pageURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌ Could not read the page; enter the details manually:", err)
		os.Exit(1)
	}

	tea := models.Tea{InStock: true, IsWishlist: scrapeWishlist}
	found := extractor.Merge(&tea, ex, pageURL)
	tea = collection.ApplyDefaults(tea)

	if len(found) == 0 {
		fmt.Println("⚠️ No details found on this page. Fill the tea in by hand.")
	} else {
		fmt.Printf("✅ Found: %s\n", strings.Join(found, ", "))
	}
	if ex.Brand != "" && !ex.BrandInDirectory {
		fmt.Printf("ℹ️ %q is not in the shop directory yet (tea-buddy shops add --name %q)\n", ex.Brand, ex.Brand)
	}

	out, _ := json.MarshalIndent(tea, "", "  ")
	fmt.Println(string(out))

	if !scrapeSave {
		return
	}
	if tea.Name == "" {
		log.Fatal().Msg("No name found; add this tea with 'tea-buddy tea add' instead")
	}

	// 4. Save to DB
	saved, err := st.AddTea(ctx, tea)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to save tea")
	}
	fmt.Printf("💾 Saved as #%d\n", saved.ID)

	// 5. Auto-run Embedder
	autoEmbed(ctx, st)
}
