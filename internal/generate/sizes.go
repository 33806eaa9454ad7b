package generate

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Size is a concrete output resolution in pixels, resolved once per request and
// immutable afterwards.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Dimension bounds accepted by the SeedDream v4 API.
const (
	MinDimension = 1024
	MaxDimension = 4096
)

// DefaultPreset is used when a request omits image_size entirely.
const DefaultPreset = "square_hd"

// sizePresets maps the named v4 presets to concrete resolutions. Every entry
// falls inside [MinDimension, MaxDimension] on both axes.
var sizePresets = map[string]Size{
	"square":         {Width: 1024, Height: 1024},
	"square_hd":      {Width: 2048, Height: 2048},
	"portrait_4_3":   {Width: 1536, Height: 2048},
	"portrait_16_9":  {Width: 1152, Height: 2048},
	"landscape_4_3":  {Width: 2048, Height: 1536},
	"landscape_16_9": {Width: 2048, Height: 1152},
}

// aspectRatios is the fixed token set accepted by the v3 (predecessor) model.
var aspectRatios = []string{"1:1", "3:4", "4:3", "16:9", "9:16", "2:3", "3:2", "21:9"}

// DefaultAspectRatio is used when a v3 request omits aspect_ratio.
const DefaultAspectRatio = "1:1"

// ResolveSize maps a caller-supplied image_size value to a concrete resolution.
//
// The raw value may be absent (nil or JSON null), a preset name string, or an
// object with explicit "width" and "height" fields. An unrecognized preset or a
// dimension outside [MinDimension, MaxDimension] fails with a ValidationError
// before any network call.
//
// The resolved preset name is returned alongside the size so reports can echo
// it; explicit dimensions resolve with an empty preset name.
func ResolveSize(raw json.RawMessage) (Size, string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return sizePresets[DefaultPreset], DefaultPreset, nil
	}

	var preset string
	if err := json.Unmarshal(raw, &preset); err == nil {
		size, ok := sizePresets[preset]
		if !ok {
			return Size{}, "", validationf("unknown image_size preset %q (valid presets: %s)", preset, strings.Join(presetNames(), ", "))
		}
		return size, preset, nil
	}

	var explicit Size
	if err := json.Unmarshal(raw, &explicit); err != nil {
		return Size{}, "", validationf("image_size must be a preset name or an object with width and height")
	}
	if err := checkDimension("width", explicit.Width); err != nil {
		return Size{}, "", err
	}
	if err := checkDimension("height", explicit.Height); err != nil {
		return Size{}, "", err
	}
	return explicit, "", nil
}

func checkDimension(name string, v int) error {
	if v < MinDimension || v > MaxDimension {
		return validationf("%s must be between %d and %d, got %d", name, MinDimension, MaxDimension, v)
	}
	return nil
}

// ResolveAspectRatio validates an aspect_ratio token for the v3 model. An empty
// token resolves to DefaultAspectRatio; anything outside the fixed set fails
// with a ValidationError that enumerates the valid tokens.
func ResolveAspectRatio(token string) (string, error) {
	if token == "" {
		return DefaultAspectRatio, nil
	}
	for _, valid := range aspectRatios {
		if token == valid {
			return token, nil
		}
	}
	return "", validationf("invalid aspect_ratio %q (valid ratios: %s)", token, strings.Join(aspectRatios, ", "))
}

// AspectRatios returns the valid v3 aspect-ratio tokens.
func AspectRatios() []string {
	out := make([]string, len(aspectRatios))
	copy(out, aspectRatios)
	return out
}

// PresetNames returns the valid v4 preset names, sorted for stable schemas and
// error messages.
func PresetNames() []string {
	return presetNames()
}

func presetNames() []string {
	names := make([]string, 0, len(sizePresets))
	for name := range sizePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
