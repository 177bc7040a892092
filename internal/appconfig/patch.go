package appconfig

// Patch types carry only the fields to change; nil fields are left alone.

type ColorsPatch struct {
	Primary       *string `json:"primary,omitempty" validate:"omitempty,hexcolor"`
	Secondary     *string `json:"secondary,omitempty" validate:"omitempty,hexcolor"`
	Accent        *string `json:"accent,omitempty" validate:"omitempty,hexcolor"`
	Background    *string `json:"background,omitempty" validate:"omitempty,hexcolor"`
	Surface       *string `json:"surface,omitempty" validate:"omitempty,hexcolor"`
	Text          *string `json:"text,omitempty" validate:"omitempty,hexcolor"`
	TextSecondary *string `json:"textSecondary,omitempty" validate:"omitempty,hexcolor"`
	Border        *string `json:"border,omitempty" validate:"omitempty,hexcolor"`
	Error         *string `json:"error,omitempty" validate:"omitempty,hexcolor"`
	Success       *string `json:"success,omitempty" validate:"omitempty,hexcolor"`
}

type BrandingPatch struct {
	ChurchName *string `json:"churchName,omitempty" validate:"omitempty,max=120"`
	Tagline    *string `json:"tagline,omitempty" validate:"omitempty,max=200"`
	Website    *string `json:"website,omitempty" validate:"omitempty,url"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Address    *string `json:"address,omitempty" validate:"omitempty,max=300"`
}

type ImagesPatch struct {
	Logo       *string `json:"logo,omitempty"`
	Hero       *string `json:"hero,omitempty"`
	Splash     *string `json:"splash,omitempty"`
	Background *string `json:"background,omitempty"`
}

type FeaturesPatch struct {
	Shop       *bool `json:"shop,omitempty"`
	Events     *bool `json:"events,omitempty"`
	Community  *bool `json:"community,omitempty"`
	LiveStream *bool `json:"liveStream,omitempty"`
	Sermons    *bool `json:"sermons,omitempty"`
	Music      *bool `json:"music,omitempty"`
	Donations  *bool `json:"donations,omitempty"`
	Calls      *bool `json:"calls,omitempty"`
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (p ColorsPatch) apply(c *Colors) {
	set(&c.Primary, p.Primary)
	set(&c.Secondary, p.Secondary)
	set(&c.Accent, p.Accent)
	set(&c.Background, p.Background)
	set(&c.Surface, p.Surface)
	set(&c.Text, p.Text)
	set(&c.TextSecondary, p.TextSecondary)
	set(&c.Border, p.Border)
	set(&c.Error, p.Error)
	set(&c.Success, p.Success)
}

func (p BrandingPatch) apply(b *Branding) {
	set(&b.ChurchName, p.ChurchName)
	set(&b.Tagline, p.Tagline)
	set(&b.Website, p.Website)
	set(&b.Email, p.Email)
	set(&b.Phone, p.Phone)
	set(&b.Address, p.Address)
}

func (p ImagesPatch) apply(i *Images) {
	set(&i.Logo, p.Logo)
	set(&i.Hero, p.Hero)
	set(&i.Splash, p.Splash)
	set(&i.Background, p.Background)
}

func (p FeaturesPatch) apply(f *Features) {
	set(&f.Shop, p.Shop)
	set(&f.Events, p.Events)
	set(&f.Community, p.Community)
	set(&f.LiveStream, p.LiveStream)
	set(&f.Sermons, p.Sermons)
	set(&f.Music, p.Music)
	set(&f.Donations, p.Donations)
	set(&f.Calls, p.Calls)
}
