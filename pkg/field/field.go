// Package field infers a semantic type for a template field from its
// name alone.
//
// Templates declare editable nodes with data-field attributes but carry
// no schema. The classifier maps each field name to one of fourteen
// semantic types using an ordered rule table, so a new template works
// without any per-template code as long as its field names follow the
// naming patterns.
//
// Rules are evaluated top to bottom and the first match wins. The order
// is part of the contract: several real field names match more than one
// pattern ("headerBgColor" matches both color and text-ish patterns,
// "appLogoImage" matches image and would otherwise fall through), and
// re-ordering the table changes how they render.
package field

import (
	"regexp"
	"strings"
)

// Type is the semantic type of a field, inferred from its name.
type Type string

// Semantic field types.
const (
	TypeText       Type = "text"
	TypeColor      Type = "color"
	TypeImage      Type = "image"
	TypeSize       Type = "size"
	TypeSpacing    Type = "spacing"
	TypeAudio      Type = "audio"
	TypeVideo      Type = "video"
	TypeSelect     Type = "select"
	TypeBorder     Type = "border"
	TypeOpacity    Type = "opacity"
	TypePosition   Type = "position"
	TypeFont       Type = "font"
	TypeBackground Type = "background"
	TypeAnimation  Type = "animation"
)

// Types lists every semantic type.
var Types = []Type{
	TypeText, TypeColor, TypeImage, TypeSize, TypeSpacing,
	TypeAudio, TypeVideo, TypeSelect, TypeBorder, TypeOpacity,
	TypePosition, TypeFont, TypeBackground, TypeAnimation,
}

// rule pairs a name pattern with the type it selects.
type rule struct {
	typ     Type
	pattern *regexp.Regexp
}

// rules is the classifier table, in precedence order:
//
//	 1. animation  - name contains "animation"
//	 2. image      - media keywords (image, thumbnail, logo, icon, ...)
//	 3. audio      - audio keywords and extensions
//	 4. video      - video keywords and extensions
//	 5. color      - name ends in a color keyword (Color, Bg, Fill, ...)
//	 6. size       - name ends in Size/Width/Height/FontSize
//	 7. spacing    - padding/margin/gap keywords or a bare directional
//	                 suffix (Top/Bottom/Left/Right)
//	 8. border     - border keywords
//	 9. opacity    - opacity/alpha/transparency
//	10. position   - position/zIndex (directional suffixes resolve to
//	                 spacing above, never here)
//	11. font       - font and typography keywords
//	12. background - background/gradient (plain "background" resolves
//	                 to image above)
//	13. select     - dropdown keywords
//	14. text       - default for everything else
//
// First match wins. Additions go in as new rows, never as edits to
// existing patterns.
var rules = []rule{
	{TypeAnimation, regexp.MustCompile(`(?i)animation`)},
	{TypeImage, regexp.MustCompile(`(?i)(image|img|thumbnail|photo|picture|logo|icon|avatar|banner|background)$`)},
	{TypeAudio, regexp.MustCompile(`(?i)(audio|sound|music|mp3|wav|ogg)$`)},
	{TypeVideo, regexp.MustCompile(`(?i)(video|movie|mp4|webm|mov)$`)},
	{TypeColor, regexp.MustCompile(`(?i)(color|bg|background|fill)$`)},
	{TypeSize, regexp.MustCompile(`(?i)(size|width|height|fontsize|font-size)$`)},
	{TypeSpacing, regexp.MustCompile(`(?i)(padding|margin|top|bottom|left|right|spacing|gap)$`)},
	{TypeBorder, regexp.MustCompile(`(?i)(border|border-radius|borderradius|borderwidth|bordercolor)$`)},
	{TypeOpacity, regexp.MustCompile(`(?i)(opacity|alpha|transparency)$`)},
	{TypePosition, regexp.MustCompile(`(?i)(position|zindex|z-index)$`)},
	{TypeFont, regexp.MustCompile(`(?i)(font|fontfamily|font-weight|fontweight|fontstyle|font-style|textalign|text-align|lineheight|line-height|letterspacing|letter-spacing)$`)},
	{TypeBackground, regexp.MustCompile(`(?i)(background|bg|gradient)$`)},
	{TypeSelect, regexp.MustCompile(`(?i)(select|choice|option|dropdown|menu)$`)},
}

// Classify infers the semantic type of a field from its name.
// It is pure and total: unmatched or empty names default to TypeText.
func Classify(name string) Type {
	if name == "" {
		return TypeText
	}
	for _, r := range rules {
		if r.pattern.MatchString(name) {
			return r.typ
		}
	}
	return TypeText
}

// hasAny reports whether name contains any of the given substrings.
// Matching is case-sensitive; callers pass both casings where the
// naming convention allows them.
func hasAny(name string, subs ...string) bool {
	for _, s := range subs {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

// StyleProperty resolves the CSS property a style-typed field mutates.
// Returns "" for types that do not map to a style property (text,
// image, audio, video, select, animation).
func StyleProperty(name string) string {
	switch Classify(name) {
	case TypeColor:
		if hasAny(name, "Bg", "Background", "Fill") {
			return "backgroundColor"
		}
		return "color"

	case TypeSize:
		switch {
		case hasAny(name, "Width", "width"):
			return "width"
		case hasAny(name, "Height", "height"):
			return "height"
		default:
			return "fontSize"
		}

	case TypeSpacing:
		prop := "padding"
		switch {
		case hasAny(name, "Margin", "margin"):
			prop = "margin"
		case hasAny(name, "Gap", "gap"):
			prop = "gap"
		}
		switch {
		case hasAny(name, "Top"):
			prop += "Top"
		case hasAny(name, "Bottom"):
			prop += "Bottom"
		case hasAny(name, "Left"):
			prop += "Left"
		case hasAny(name, "Right"):
			prop += "Right"
		}
		return prop

	case TypeBorder:
		switch {
		case hasAny(name, "Radius", "radius"):
			return "borderRadius"
		case hasAny(name, "Width", "width"):
			return "borderWidth"
		case hasAny(name, "Color", "color"):
			return "borderColor"
		default:
			return "border"
		}

	case TypeOpacity:
		return "opacity"

	case TypePosition:
		switch {
		case hasAny(name, "top", "Top"):
			return "top"
		case hasAny(name, "left", "Left"):
			return "left"
		case hasAny(name, "right", "Right"):
			return "right"
		case hasAny(name, "bottom", "Bottom"):
			return "bottom"
		case hasAny(name, "zIndex", "z-index"):
			return "zIndex"
		default:
			return "position"
		}

	case TypeFont:
		switch {
		case hasAny(name, "Family", "family"):
			return "fontFamily"
		case hasAny(name, "Weight", "weight"):
			return "fontWeight"
		case hasAny(name, "Style", "style"):
			return "fontStyle"
		case hasAny(name, "Align", "align"):
			return "textAlign"
		case hasAny(name, "Height", "height"):
			return "lineHeight"
		case hasAny(name, "Spacing", "spacing"):
			return "letterSpacing"
		default:
			return "fontFamily"
		}

	case TypeBackground:
		if hasAny(name, "gradient", "Gradient") {
			return "background"
		}
		return "backgroundColor"
	}

	return ""
}

// Unit resolves the unit suffix appended to a numeric value for the
// field's style property. Size and spacing fields are pixel-valued,
// as are border and position fields except their unitless variants
// (borderColor, zIndex). Everything else is unitless.
func Unit(name string) string {
	switch Classify(name) {
	case TypeSize, TypeSpacing:
		return "px"
	case TypeBorder:
		if hasAny(name, "Color", "color") {
			return ""
		}
		return "px"
	case TypePosition:
		if hasAny(name, "zIndex", "z-index") {
			return ""
		}
		return "px"
	}
	return ""
}

// Accept returns the file-input accept attribute value for upload-kind
// fields, or "" for fields that are not uploads.
func Accept(t Type) string {
	switch t {
	case TypeImage:
		return "image/*"
	case TypeAudio:
		return "audio/*"
	case TypeVideo:
		return "video/*"
	}
	return ""
}

// IsUpload reports whether the type is backed by a file upload.
func IsUpload(t Type) bool {
	return t == TypeImage || t == TypeAudio || t == TypeVideo
}

// IsStyle reports whether applying the field mutates a style property
// rather than text content or a media source.
func IsStyle(t Type) bool {
	switch t {
	case TypeColor, TypeSize, TypeSpacing, TypeBorder, TypeOpacity,
		TypePosition, TypeFont, TypeBackground:
		return true
	}
	return false
}
