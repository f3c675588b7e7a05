package domain

import "regexp"

var hexColorPattern = regexp.MustCompile(`^#[0-9A-F]{6}$`)

// MemberPalette is the curated set new members draw from. Pinks and purples
// are intentionally absent.
var MemberPalette = []string{
	"#1F6FEB", "#0E8A16", "#B08800", "#CF222E",
	"#0969DA", "#1A7F37", "#9A6700", "#BC4C00",
	"#218BFF", "#2DA44E", "#D4A72C", "#FA4549",
	"#54AEFF", "#4AC26B", "#D1242F", "#E16F24",
	"#0550AE", "#116329", "#953800", "#A40E26",
}

// ValidColorHex reports whether s is an uppercase #RRGGBB value.
func ValidColorHex(s string) bool {
	return hexColorPattern.MatchString(s)
}
