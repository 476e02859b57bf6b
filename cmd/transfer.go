package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mspro-labs/tea-buddy/internal/fetcher"
	"mspro-labs/tea-buddy/internal/logger"
	"mspro-labs/tea-buddy/internal/reconcile"
	"mspro-labs/tea-buddy/internal/spreadsheet"
)

var (
	exportOut    string
	exportFormat string
	importYes    bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a backup of the collection and the shop directory",
	Long: `Writes every tea and shop to a JSON backup that 'import' can read back,
or to an .xlsx workbook with --format xlsx.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runExport()
	},
}

var importCmd = &cobra.Command{
	Use:   "import [file-or-url]",
	Short: "Replace the collection with a JSON backup",
	Long: `Reads a backup written by 'export' from a file or a URL and replaces
every tea with its content. The shop directory is replaced only when the
backup contains shops. Without an argument the configured default URL is used.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		source := ""
		if len(args) == 1 {
			source = args[0]
		}
		runImport(source)
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default tea-backup-<date>.<format>)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "json or xlsx")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(exportCmd, importCmd)
}

func runExport() {
	ctx := context.Background()
	format := strings.ToLower(exportFormat)
	if format != "json" && format != "xlsx" {
		log.Fatal().Str("format", exportFormat).Msg("Unknown export format")
	}

	st := openLocal()
	defer st.Close()

	teas, err := st.ListTeas(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list teas")
	}
	shopList, err := st.ListShops(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list shops")
	}

	now := time.Now()
	out := exportOut
	if out == "" {
		out = fmt.Sprintf("tea-backup-%s.%s", now.Format("2006-01-02"), format)
	}

	if format == "xlsx" {
		if err := spreadsheet.Save(out, teas, shopList); err != nil {
			log.Fatal().Err(err).Msg("Failed to write workbook")
		}
	} else if err := writeJSONExport(out, reconcile.NewPayload(teas, shopList, now)); err != nil {
		log.Fatal().Err(err).Msg("Failed to write backup")
	}
	fmt.Printf("📦 Exported %d tea(s) and %d shop(s) to %s\n", len(teas), len(shopList), out)
}

func writeJSONExport(path string, p reconcile.Payload) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := reconcile.Encode(f, p); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runImport(source string) {
	ctx := context.Background()

	// 1. Read the payload
	fromDefault := source == ""
	if fromDefault {
		source = settings.Import.DefaultURL
		if source == "" {
			log.Fatal().Msg("No file or URL given and import.default_url is empty")
		}
	}
	data, err := readImportSource(ctx, source)
	if err != nil {
		var fe *fetcher.FetchError
		if errors.As(err, &fe) {
			fmt.Fprintln(os.Stderr, "❌", fe.Error())
			os.Exit(1)
		}
		log.Fatal().Err(err).Str("source", source).Msg("Failed to read import")
	}

	p, err := reconcile.Decode(data)
	if err != nil {
		log.Fatal().Err(err).Msg("Import rejected")
	}

	// 2. Apply, asking first unless told not to
	st := openLocal()
	defer st.Close()

	var confirm reconcile.Confirm
	if !importYes && !(fromDefault && settings.Import.SkipConfirm) {
		confirm = func(incoming, current int) bool {
			return askYesNo(os.Stdin, fmt.Sprintf(
				"Import %d tea(s) from %s?\nThis replaces your %d current tea(s). Continue? [y/N] ",
				incoming, source, current))
		}
	}

	res, err := reconcile.Apply(ctx, st, p, confirm)
	if errors.Is(err, reconcile.ErrDeclined) {
		fmt.Println("Import cancelled.")
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	msg := fmt.Sprintf("✅ Imported %d tea(s)", res.Teas)
	if res.ShopsReplaced {
		msg += fmt.Sprintf(" and %d shop(s)", res.Shops)
	}
	fmt.Println(msg)
	autoEmbed(ctx, st)
}

func readImportSource(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		f := fetcher.NewHTTPFetcher(settings.Fetch, logger.Component("fetcher"))
		return f.FetchImportJSON(ctx, source)
	}
	return os.ReadFile(source)
}

// askYesNo prints prompt and reads one line from in.
func askYesNo(in io.Reader, prompt string) bool {
	fmt.Print(prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
