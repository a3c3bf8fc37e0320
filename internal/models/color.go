package models

import "strings"

// Color is one of the named hues in outline or filled ("Solid") render mode
type Color int

const (
	ColorNone Color = iota
	Red
	Green
	Blue
	Yellow
	Purple
	Orange
	Pink
	Brown
	Grey
	White
	Cyan
	RedSolid
	GreenSolid
	BlueSolid
	YellowSolid
	PurpleSolid
	OrangeSolid
	PinkSolid
	BrownSolid
	GreySolid
	WhiteSolid
	CyanSolid
)

// Wire triplets used when a color has no entry of its own
const (
	TransparentBackground = "255 255 255 40"
	BlackText             = "0 0 0 255"
)

type hue struct {
	name  string
	rgb   string
	class string
}

// hues is indexed by outline color; Solid variants sit 11 entries later.
var hues = map[Color]hue{
	Red:    {"Red", "255 0 0", "red"},
	Green:  {"Green", "0 255 0", "green"},
	Blue:   {"Blue", "0 0 255", "blue"},
	Yellow: {"Yellow", "255 255 0", "yellow"},
	Purple: {"Purple", "128 0 128", "purple"},
	Orange: {"Orange", "255 165 0", "orange"},
	Pink:   {"Pink", "255 192 203", "pink"},
	Brown:  {"Brown", "139 69 19", "brown"},
	Grey:   {"Grey", "128 128 128", "grey"},
	White:  {"White", "255 255 255", "white"},
	Cyan:   {"Cyan", "0 255 255", "cyan"},
}

const solidOffset = RedSolid - Red

var (
	outlineByTriplet = make(map[string]Color)
	solidByTriplet   = make(map[string]Color)
)

func init() {
	for c, h := range hues {
		triplet := h.rgb + " 255"
		outlineByTriplet[triplet] = c
		solidByTriplet[triplet] = c + solidOffset
	}
}

// AllColors returns every color in declaration order
func AllColors() []Color {
	colors := make([]Color, 0, int(CyanSolid))
	for c := Red; c <= CyanSolid; c++ {
		colors = append(colors, c)
	}
	return colors
}

// IsSolid reports whether the color renders with a filled background
func (c Color) IsSolid() bool {
	return c >= RedSolid && c <= CyanSolid
}

// IsValid reports whether c is one of the 22 named colors
func (c Color) IsValid() bool {
	return c >= Red && c <= CyanSolid
}

// Outline returns the outline variant of the color's hue
func (c Color) Outline() Color {
	if c.IsSolid() {
		return c - solidOffset
	}
	return c
}

func (c Color) hue() (hue, bool) {
	h, ok := hues[c.Outline()]
	return h, ok
}

// WireTriplet returns the "R G B A" used for SetTextColor and SetBorderColor.
// Solid colors draw black text over their filled background.
func (c Color) WireTriplet() string {
	if c.IsSolid() {
		return BlackText
	}
	h, ok := c.hue()
	if !ok {
		return BlackText
	}
	return h.rgb + " 255"
}

// BackgroundWireTriplet returns the "R G B A" used for SetBackgroundColor
func (c Color) BackgroundWireTriplet() string {
	if !c.IsSolid() {
		return TransparentBackground
	}
	h, _ := c.hue()
	return h.rgb + " 255"
}

// DisplayName returns the hue name shared by the outline and Solid variants
func (c Color) DisplayName() string {
	h, ok := c.hue()
	if !ok {
		return "White"
	}
	return h.name
}

// String returns the enum name, e.g. "RedSolid"
func (c Color) String() string {
	h, ok := c.hue()
	if !ok {
		return ""
	}
	if c.IsSolid() {
		return h.name + "Solid"
	}
	return h.name
}

// ParseColor resolves an enum name produced by String (case-insensitive)
func ParseColor(s string) (Color, bool) {
	for _, c := range AllColors() {
		if strings.EqualFold(c.String(), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return ColorNone, false
}

// ColorFromWireTriplets maps text and background triplets back to a color.
// A background matching a Solid entry wins over the text color; when neither
// matches the result is White.
func ColorFromWireTriplets(text, background string) Color {
	if c, ok := solidByTriplet[background]; ok {
		return c
	}
	if c, ok := outlineByTriplet[text]; ok {
		return c
	}
	return White
}

// TextClassName returns the presentation class for outline text
func (c Color) TextClassName() string {
	if c.IsSolid() || !c.IsValid() {
		return "text-black"
	}
	return "text-poe-" + hues[c].class
}

// BorderClassName returns the presentation class for the item border
func (c Color) BorderClassName() string {
	if c.IsSolid() || !c.IsValid() {
		return "border-black"
	}
	return "border-poe-" + hues[c].class
}

// BackgroundClassName returns the presentation class for the item background
func (c Color) BackgroundClassName() string {
	if !c.IsSolid() {
		return "bg-poe-white-transparent"
	}
	h, _ := c.hue()
	return "bg-poe-" + h.class
}
