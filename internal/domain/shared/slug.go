package shared

import (
	"regexp"
	"strings"
)

var slugStripper = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases s and joins alphanumeric runs with hyphens
func Slugify(s string) string {
	return strings.Trim(slugStripper.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
