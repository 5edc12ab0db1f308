package style

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultPreset is the palette used when none is configured.
const DefaultPreset = "kizuato"

var presets = map[string][]string{
	// Night-time school corridors: ink navy, bruised violet, sodium-lamp ochre.
	"kizuato": {
		"#14152B", "#2B2D4F", "#4A4470", "#6E6A8F",
		"#8E8FA8", "#B9B4C4", "#C9A66B", "#E8E1D3",
	},
	"dusk": {
		"#1E1A2E", "#3D2C4E", "#6B3F5E", "#A35D6A",
		"#D98E73", "#F2C29B", "#F7E6CF",
	},
	"daylight": {
		"#23303B", "#3F5E6B", "#5F8A8B", "#8FB3A5",
		"#C8D8C0", "#E9E4CF", "#F6F3EA", "#A7C5DD",
	},
	"sepia": {
		"#2A1E14", "#4E3826", "#75573A", "#9E7E57",
		"#C4A77D", "#E4D3B0",
	},
}

// Preset returns the named palette preset.
func Preset(name string) (*Palette, error) {
	hexes, ok := presets[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown preset %q (available: %s)",
			ErrPalette, name, strings.Join(PresetNames(), ", "))
	}
	return ParsePalette(hexes)
}

// PresetNames returns all preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolvePalette interprets value as a preset name or a comma-separated
// list of hex colors.
func ResolvePalette(value string) (*Palette, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = DefaultPreset
	}
	if strings.ContainsAny(value, ",#") {
		return ParsePalette(strings.Split(value, ","))
	}
	return Preset(value)
}
