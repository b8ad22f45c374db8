package config

// Colors are ANSI 256 color codes or hex strings used by the UI.
type Colors struct {
	Primary  string `yaml:"primary"`
	Success  string `yaml:"success"`
	Warning  string `yaml:"warning"`
	Error    string `yaml:"error"`
	Info     string `yaml:"info"`
	Emphasis string `yaml:"emphasis"`
	Border   string `yaml:"border"`
}

// Theme is a named palette. Colors set in the config file override the
// palette's own.
type Theme struct {
	Name   string `yaml:"name"`
	Colors `yaml:",inline"`
}

var themes = map[string]Colors{
	"default":    {Primary: "213", Success: "114", Warning: "220", Error: "196", Info: "39", Emphasis: "212", Border: "213"},
	"dark":       {Primary: "105", Success: "78", Warning: "214", Error: "160", Info: "33", Emphasis: "147", Border: "105"},
	"light":      {Primary: "135", Success: "150", Warning: "222", Error: "210", Info: "117", Emphasis: "219", Border: "135"},
	"monochrome": {Primary: "245", Success: "252", Warning: "241", Error: "232", Info: "248", Emphasis: "255", Border: "245"},
}

func knownTheme(name string) bool {
	_, ok := themes[name]
	return ok
}

// GetTheme returns the palette called name, or the default palette.
func GetTheme(name string) Colors {
	if c, ok := themes[name]; ok {
		return c
	}
	return themes["default"]
}

// ApplyTheme replaces the colors with the named palette. Unknown names
// fall back to "default".
func (c *Config) ApplyTheme(name string) {
	if !knownTheme(name) {
		name = "default"
	}
	c.Theme = Theme{Name: name, Colors: themes[name]}
}

// fillTheme sets every unset color from the named palette.
func (c *Config) fillTheme() {
	base := GetTheme(c.Theme.Name)
	for _, pair := range [][2]*string{
		{&c.Theme.Primary, &base.Primary},
		{&c.Theme.Success, &base.Success},
		{&c.Theme.Warning, &base.Warning},
		{&c.Theme.Error, &base.Error},
		{&c.Theme.Info, &base.Info},
		{&c.Theme.Emphasis, &base.Emphasis},
		{&c.Theme.Border, &base.Border},
	} {
		if *pair[0] == "" {
			*pair[0] = *pair[1]
		}
	}
}

// ListThemes names the built-in palettes.
func ListThemes() []string {
	return []string{"default", "dark", "light", "monochrome"}
}
