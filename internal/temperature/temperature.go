// Package temperature snaps free-text brewing temperatures onto the fixed
// set of presets offered by the collection form.
package temperature

import (
	"regexp"
	"strconv"
)

// Presets are the only temperature values a stored tea may carry.
var Presets = []string{"75-80°C", "80-85°C", "85-90°C", "90-95°C", "95°C", "100°C"}

// Default is returned for empty or unparseable input.
const Default = "85-90°C"

var reDegrees = regexp.MustCompile(`\d{2,3}`)

// ToPreset returns the preset whose midpoint is closest to the value in
// text. A two-number range is reduced to its mean first. Midpoints are whole
// degrees (integer mean), so "88-92°C" lands on "90-95°C". On a tie the
// earlier preset wins.
func ToPreset(text string) string {
	target, ok := midpoint(text)
	if !ok {
		return Default
	}

	best := Presets[0]
	bestDiff := -1
	for _, p := range Presets {
		mid, _ := midpoint(p)
		diff := abs(target - mid)
		if bestDiff < 0 || diff < bestDiff {
			best, bestDiff = p, diff
		}
	}
	return best
}

// IsPreset reports whether s is one of Presets.
func IsPreset(s string) bool {
	for _, p := range Presets {
		if p == s {
			return true
		}
	}
	return false
}

func midpoint(text string) (int, bool) {
	nums := reDegrees.FindAllString(text, -1)
	switch len(nums) {
	case 0:
		return 0, false
	case 2:
		a, _ := strconv.Atoi(nums[0])
		b, _ := strconv.Atoi(nums[1])
		return (a + b) / 2, true
	default:
		a, _ := strconv.Atoi(nums[0])
		return a, true
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
