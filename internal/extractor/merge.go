package extractor

import (
	"mspro-labs/tea-buddy/internal/models"
	"mspro-labs/tea-buddy/internal/temperature"
)

// Merge copies extracted values into tea without overwriting anything the
// user already entered. A scraped temperature is snapped to a preset
// before it is stored. It returns the names of the fields that were found
// on the page.
func Merge(tea *models.Tea, ex models.Extraction, sourceURL string) []string {
	fill := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
		}
	}

	fill(&tea.Name, ex.Title)
	fill(&tea.Brand, ex.Brand)
	fill(&tea.Description, ex.Description)
	fill(&tea.Time, ex.InfusionTime)
	fill(&tea.ImageURL, ex.ImageURL)
	fill(&tea.Type, ex.DetectedType)
	fill(&tea.URL, sourceURL)
	if ex.Temperature != "" {
		fill(&tea.Temperature, temperature.ToPreset(ex.Temperature))
	}

	return ex.Found()
}
