package output

// Palette is a cyclic list of colours. Any SVG colour string is accepted.
type Palette []string

// DefaultPalette is blue, green, red, cyan, magenta, yellow, black.
var DefaultPalette = Palette{
	"#0000ff",
	"#008000",
	"#ff0000",
	"#00bfbf",
	"#bf00bf",
	"#bfbf00",
	"#000000",
}

// Color returns the colour at index i, wrapping in both directions.
func (p Palette) Color(i int) string {
	if len(p) == 0 {
		p = DefaultPalette
	}
	n := len(p)
	return p[((i%n)+n)%n]
}

// InstanceColor returns the colour of the j-th instance of an activity group.
// Instances are offset by one, so the first instance takes the last colour.
func (p Palette) InstanceColor(j int) string {
	return p.Color(j - 1)
}
