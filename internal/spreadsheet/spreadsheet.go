// Package spreadsheet exports the collection as an .xlsx workbook with one
// sheet for the teas and one for the shop directory.
package spreadsheet

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"mspro-labs/tea-buddy/internal/models"
)

const (
	TeaSheet  = "Teas"
	ShopSheet = "Shops"
)

var teaHeaders = []string{
	"id", "name", "type", "brand", "origin", "temperature", "time", "method", "quantity",
	"infusions", "description", "url", "imageUrl", "inStock", "isWishlist", "stockGrams",
	"stock", "rating", "createdAt",
}

var shopHeaders = []string{"id", "name", "variations", "urlPatterns", "website"}

// Build lays out the workbook. The caller closes it.
func Build(teas []models.Tea, shops []models.Shop) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), TeaSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(ShopSheet); err != nil {
		return nil, err
	}

	writeRow(f, TeaSheet, 1, toAny(teaHeaders))
	for i, t := range teas {
		writeRow(f, TeaSheet, i+2, []any{
			int64(t.ID), t.Name, t.Type, t.Brand, t.Origin, t.Temperature, t.Time, t.Method,
			t.Quantity, t.Infusions, t.Description, t.URL, t.ImageURL, t.InStock, t.IsWishlist,
			derefFloat(t.StockGrams), t.StockLabel(), derefRating(t.Rating), t.CreatedAt,
		})
	}

	writeRow(f, ShopSheet, 1, toAny(shopHeaders))
	for i, s := range shops {
		writeRow(f, ShopSheet, i+2, []any{
			int64(s.ID), s.Name, strings.Join(s.Variations, ", "), strings.Join(s.URLPatterns, ", "), s.Website,
		})
	}

	for _, sheet := range []string{TeaSheet, ShopSheet} {
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
		}); err != nil {
			return nil, fmt.Errorf("freezing header of %s: %w", sheet, err)
		}
	}
	return f, nil
}

// Write streams the workbook to w.
func Write(w io.Writer, teas []models.Tea, shops []models.Shop) error {
	f, err := Build(teas, shops)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

// Save writes the workbook to outputPath, creating its directory.
func Save(outputPath string, teas []models.Tea, shops []models.Shop) error {
	f, err := Build(teas, shops)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func derefRating(r int) any {
	if r <= 0 {
		return ""
	}
	return r
}
