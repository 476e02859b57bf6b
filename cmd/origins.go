package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"mspro-labs/tea-buddy/internal/collection"
)

var originsCmd = &cobra.Command{
	Use:   "origins",
	Short: "Count teas per country of origin",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runOrigins()
	},
}

func init() {
	rootCmd.AddCommand(originsCmd)
}

func runOrigins() {
	st := openLocal()
	defer st.Close()

	teas, err := st.ListTeas(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list teas")
	}
	counts := collection.OriginCounts(teas)
	if len(counts) == 0 {
		fmt.Println("No origins recorded yet.")
		return
	}

	width := 0
	for _, c := range counts {
		width = max(width, len([]rune(c.Origin)))
	}
	for _, c := range counts {
		pad := strings.Repeat(" ", width-len([]rune(c.Origin)))
		fmt.Printf("%s%s  %s %d\n", c.Origin, pad, strings.Repeat("■", c.Count), c.Count)
	}
}
