package field

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want Type
	}{
		// Defaults
		{"", TypeText},
		{"headerMain", TypeText},
		{"subtitle", TypeText},
		{"footer", TypeText},
		{"ctaText", TypeText},

		// Animation wins over everything
		{"logoAnimation", TypeAnimation},
		{"animationStyle", TypeAnimation},

		// Media
		{"appLogoImage", TypeImage},
		{"thumbnail", TypeImage},
		{"appIcon", TypeImage},
		{"heroBanner", TypeImage},
		{"background", TypeImage},
		{"backgroundAudio", TypeAudio},
		{"introSound", TypeAudio},
		{"promoVideo", TypeVideo},

		// Color
		{"headerBgColor", TypeColor},
		{"textColor", TypeColor},
		{"ctaBg", TypeColor},
		{"borderColor", TypeColor},

		// Size
		{"headerMainSize", TypeSize},
		{"logoWidth", TypeSize},
		{"bannerHeight", TypeSize},
		{"subtitleFontSize", TypeSize},

		// Spacing, including bare directional suffixes
		{"footerPaddingTop", TypeSpacing},
		{"cardMargin", TypeSpacing},
		{"sectionGap", TypeSpacing},
		{"logoTop", TypeSpacing},

		// Remaining style types
		{"cardBorder", TypeBorder},
		{"cardBorderRadius", TypeBorder},
		{"overlayOpacity", TypeOpacity},
		{"overlayAlpha", TypeOpacity},
		{"badgeZIndex", TypePosition},
		{"headerFont", TypeFont},
		{"titleFontWeight", TypeFont},
		{"heroGradient", TypeBackground},

		// Select
		{"ctaDropdown", TypeSelect},
		{"layoutOption", TypeSelect},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.name); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	names := []string{"headerBgColor", "appLogoImage", "footerPaddingTop", "whatever"}
	for _, name := range names {
		if Classify(name) != Classify(name) {
			t.Errorf("Classify(%q) not deterministic", name)
		}
	}
}

func TestStyleProperty(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"headerBgColor", "backgroundColor"},
		{"textColor", "color"},
		{"titleFill", "backgroundColor"},

		{"logoWidth", "width"},
		{"bannerHeight", "height"},
		{"headerMainSize", "fontSize"},

		{"footerPaddingTop", "paddingTop"},
		{"cardMarginBottom", "marginBottom"},
		{"sectionGap", "gap"},
		{"logoTop", "paddingTop"},

		{"cardBorderRadius", "borderRadius"},
		{"cardBorder", "border"},
		{"overlayOpacity", "opacity"},
		{"badgeZIndex", "zIndex"},

		{"titleFontWeight", "fontWeight"},
		{"headerFont", "fontFamily"},

		{"heroGradient", "background"},

		// Non-style types resolve to nothing
		{"headerMain", ""},
		{"appLogoImage", ""},
		{"backgroundAudio", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StyleProperty(tt.name); got != tt.want {
				t.Errorf("StyleProperty(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestUnit(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"logoWidth", "px"},
		{"footerPaddingTop", "px"},
		{"cardBorderRadius", "px"},
		{"badgeZIndex", ""},
		{"overlayOpacity", ""},
		{"headerMain", ""},
		{"titleFontWeight", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unit(tt.name); got != tt.want {
				t.Errorf("Unit(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestAccept(t *testing.T) {
	if got := Accept(TypeImage); got != "image/*" {
		t.Errorf("Accept(image) = %q", got)
	}
	if got := Accept(TypeAudio); got != "audio/*" {
		t.Errorf("Accept(audio) = %q", got)
	}
	if got := Accept(TypeVideo); got != "video/*" {
		t.Errorf("Accept(video) = %q", got)
	}
	if got := Accept(TypeText); got != "" {
		t.Errorf("Accept(text) = %q, want empty", got)
	}
}

func TestIsStyle(t *testing.T) {
	styled := []Type{TypeColor, TypeSize, TypeSpacing, TypeBorder, TypeOpacity, TypePosition, TypeFont, TypeBackground}
	for _, typ := range styled {
		if !IsStyle(typ) {
			t.Errorf("IsStyle(%v) = false, want true", typ)
		}
	}
	for _, typ := range []Type{TypeText, TypeImage, TypeAudio, TypeVideo, TypeSelect, TypeAnimation} {
		if IsStyle(typ) {
			t.Errorf("IsStyle(%v) = true, want false", typ)
		}
	}
}
