// Package colorscale maps a scalar in [0,1] onto a sequential colour ramp.
package colorscale

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

const DefaultScheme = "ylorrd"

type scheme struct {
	// stops from low to high value
	stops []string
	// true when luminance falls along the stops, moreland wants it rising
	darkening bool
}

var schemes = map[string]scheme{
	// 9-class YlOrRd, pale yellow to dark red
	"ylorrd": {
		stops:     []string{"#ffffcc", "#ffeda0", "#fed976", "#feb24c", "#fd8d3c", "#fc4e2a", "#e31a1c", "#bd0026", "#800026"},
		darkening: true,
	},
	"viridis": {
		stops: []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"},
	},
}

func Schemes() []string {
	names := make([]string, 0, len(schemes))
	for name := range schemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Scale struct {
	name  string
	stops []string
	cmap  palette.ColorMap
	flip  bool
}

func New(name string) (*Scale, error) {
	if name == "" {
		name = DefaultScheme
	}
	name = strings.ToLower(name)
	sc, ok := schemes[name]
	if !ok {
		return nil, errors.Errorf("unknown color scheme %q, use one of: %s", name, strings.Join(Schemes(), ", "))
	}

	controls := make([]color.Color, len(sc.stops))
	for i, hex := range sc.stops {
		c, err := ParseHex(hex)
		if err != nil {
			return nil, err
		}
		if sc.darkening {
			controls[len(controls)-1-i] = c
		} else {
			controls[i] = c
		}
	}

	cmap, err := moreland.NewLuminance(controls)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to build %q color map", name)
	}
	cmap.SetMin(0)
	cmap.SetMax(1)

	return &Scale{
		name:  name,
		stops: sc.stops,
		cmap:  cmap,
		flip:  sc.darkening,
	}, nil
}

func (s *Scale) Name() string { return s.name }

// Stops returns the control colours from low to high as hex strings.
func (s *Scale) Stops() []string {
	return append([]string(nil), s.stops...)
}

// At returns the colour for t, clamped to [0,1].
func (s *Scale) At(t float64) color.NRGBA {
	if t != t || t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	if s.flip {
		t = 1 - t
	}

	c, err := s.cmap.At(t)
	if err != nil {
		// unreachable for t in [0,1]
		panic(err)
	}
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

func (s *Scale) Hex(t float64) string {
	c := s.At(t)
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// RGBA returns colour factors in [0,1] with alpha 1.
func (s *Scale) RGBA(t float64) [4]float32 {
	c := s.At(t)
	return [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, 1}
}

// Palette samples n colours from low to high for plotters that want a discrete palette.
func (s *Scale) Palette(n int) palette.Palette {
	colors := make([]color.Color, n)
	for i := range colors {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		colors[i] = s.At(t)
	}
	return fixedPalette(colors)
}

type fixedPalette []color.Color

func (p fixedPalette) Colors() []color.Color { return p }

func ParseHex(hex string) (color.NRGBA, error) {
	var c color.NRGBA
	c.A = 0xff
	if len(hex) != 7 || hex[0] != '#' {
		return c, errors.Errorf("invalid hex color %q", hex)
	}
	if _, err := fmt.Sscanf(hex[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, errors.Wrapf(err, "invalid hex color %q", hex)
	}
	return c, nil
}
