package theme

type Mode string

const (
	ModeLight  Mode = "light"
	ModeDark   Mode = "dark"
	ModeSystem Mode = "system"
)

func (m Mode) Valid() bool {
	switch m {
	case ModeLight, ModeDark, ModeSystem:
		return true
	}
	return false
}

// Scheme is a concrete light or dark appearance as reported by the platform.
type Scheme string

const (
	SchemeLight Scheme = "light"
	SchemeDark  Scheme = "dark"
)

type Palette struct {
	Scheme        Scheme `json:"scheme"`
	Background    string `json:"background"`
	Surface       string `json:"surface"`
	Card          string `json:"card"`
	Text          string `json:"text"`
	TextSecondary string `json:"textSecondary"`
	Primary       string `json:"primary"`
	Accent        string `json:"accent"`
	Border        string `json:"border"`
	TabBar        string `json:"tabBar"`
	Error         string `json:"error"`
}

var lightPalette = Palette{
	Scheme:        SchemeLight,
	Background:    "#FFFFFF",
	Surface:       "#F7F5F2",
	Card:          "#FFFFFF",
	Text:          "#1C1B1F",
	TextSecondary: "#6B6770",
	Primary:       "#5B3CC4",
	Accent:        "#E0A526",
	Border:        "#E4E1E6",
	TabBar:        "#FFFFFF",
	Error:         "#C62828",
}

var darkPalette = Palette{
	Scheme:        SchemeDark,
	Background:    "#121212",
	Surface:       "#1E1E1E",
	Card:          "#242424",
	Text:          "#F4EFF4",
	TextSecondary: "#A9A4AD",
	Primary:       "#B69DF8",
	Accent:        "#F2C35B",
	Border:        "#2F2F2F",
	TabBar:        "#1A1A1A",
	Error:         "#EF9A9A",
}

// ResolveScheme maps a mode to a concrete scheme. System follows the platform and an unknown
// platform value falls back to light.
func ResolveScheme(mode Mode, system Scheme) Scheme {
	switch mode {
	case ModeDark:
		return SchemeDark
	case ModeLight:
		return SchemeLight
	}
	if system == SchemeDark {
		return SchemeDark
	}
	return SchemeLight
}

// Resolve returns the effective palette for mode given the platform scheme.
func Resolve(mode Mode, system Scheme) Palette {
	if ResolveScheme(mode, system) == SchemeDark {
		return darkPalette
	}
	return lightPalette
}
