package temperature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPreset(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"78°C", "75-80°C"},
		{"88-92°C", "90-95°C"},
		{"", "85-90°C"},
		{"hot water", "85-90°C"},
		{"70°C", "75-80°C"},
		{"80°C", "80-85°C"},
		{"85 C", "85-90°C"},
		{"95°C", "95°C"},
		{"96°C", "95°C"},
		{"98°C", "100°C"},
		{"100°C", "100°C"},
		{"212°F", "100°C"},
		{"75-80°C", "75-80°C"},
		{"90-95°C", "90-95°C"},
		{"between 60 and 70 then 80", "75-80°C"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ToPreset(tt.in))
		})
	}
}

func TestToPresetAlwaysReturnsPreset(t *testing.T) {
	for _, in := range []string{"", "1", "50", "999", "12-13", "80-100°C"} {
		assert.True(t, IsPreset(ToPreset(in)), in)
	}
}

func TestIsPreset(t *testing.T) {
	assert.True(t, IsPreset("95°C"))
	assert.False(t, IsPreset("93°C"))
}
