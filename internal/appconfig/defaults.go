package appconfig

type Colors struct {
	Primary       string `json:"primary"`
	Secondary     string `json:"secondary"`
	Accent        string `json:"accent"`
	Background    string `json:"background"`
	Surface       string `json:"surface"`
	Text          string `json:"text"`
	TextSecondary string `json:"textSecondary"`
	Border        string `json:"border"`
	Error         string `json:"error"`
	Success       string `json:"success"`
}

type Branding struct {
	ChurchName string `json:"churchName"`
	Tagline    string `json:"tagline"`
	Website    string `json:"website"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
}

type Images struct {
	Logo       string `json:"logo"`
	Hero       string `json:"hero"`
	Splash     string `json:"splash"`
	Background string `json:"background"`
}

type Features struct {
	Shop       bool `json:"shop"`
	Events     bool `json:"events"`
	Community  bool `json:"community"`
	LiveStream bool `json:"liveStream"`
	Sermons    bool `json:"sermons"`
	Music      bool `json:"music"`
	Donations  bool `json:"donations"`
	Calls      bool `json:"calls"`
}

func Defaults() Config {
	return Config{
		LightColors: Colors{
			Primary:       "#5B3CC4",
			Secondary:     "#8E7CC3",
			Accent:        "#E0A526",
			Background:    "#FFFFFF",
			Surface:       "#F7F5F2",
			Text:          "#1C1B1F",
			TextSecondary: "#6B6770",
			Border:        "#E4E1E6",
			Error:         "#C62828",
			Success:       "#2E7D32",
		},
		DarkColors: Colors{
			Primary:       "#B69DF8",
			Secondary:     "#CCC2DC",
			Accent:        "#F2C35B",
			Background:    "#121212",
			Surface:       "#1E1E1E",
			Text:          "#F4EFF4",
			TextSecondary: "#A9A4AD",
			Border:        "#2F2F2F",
			Error:         "#EF9A9A",
			Success:       "#81C784",
		},
		Branding: Branding{
			ChurchName: "Sanctuary",
			Tagline:    "A place to belong",
		},
		Images: Images{},
		Features: Features{
			Shop:       true,
			Events:     true,
			Community:  true,
			LiveStream: true,
			Sermons:    true,
			Music:      true,
			Donations:  false,
			Calls:      true,
		},
	}
}
