package styles

// Palette holds the ANSI or hex colors of a theme.
type Palette struct {
	Primary  string
	Success  string
	Warning  string
	Error    string
	Info     string
	Emphasis string
	Border   string
}

// DefaultPalette matches the "default" config theme.
var DefaultPalette = Palette{
	Primary:  "213",
	Success:  "114",
	Warning:  "220",
	Error:    "196",
	Info:     "39",
	Emphasis: "212",
	Border:   "213",
}

// Apply rebuilds Theme from p. Empty colors keep the default.
func Apply(p Palette) {
	if p.Primary == "" {
		p.Primary = DefaultPalette.Primary
	}
	if p.Success == "" {
		p.Success = DefaultPalette.Success
	}
	if p.Warning == "" {
		p.Warning = DefaultPalette.Warning
	}
	if p.Error == "" {
		p.Error = DefaultPalette.Error
	}
	if p.Info == "" {
		p.Info = DefaultPalette.Info
	}
	if p.Emphasis == "" {
		p.Emphasis = DefaultPalette.Emphasis
	}
	if p.Border == "" {
		p.Border = DefaultPalette.Border
	}
	Theme = build(p)
}
