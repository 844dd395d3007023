package sanitizer

import (
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func trimAndLower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SanitizeName is used for guest, hotel and room type names.
func SanitizeName(input string) string {
	p := Pipeline{
		stripControl,
		TrimAndNormalize,
	}
	return p.Apply(input)
}

// SanitizeCity keeps the display casing; matching is case-insensitive at
// query time.
func SanitizeCity(input string) string {
	return SanitizeName(input)
}

func SanitizeEmail(input string) string {
	p := Pipeline{
		stripControl,
		trimAndLower,
	}
	return p.Apply(input)
}

// SanitizeText cleans multi-line text such as descriptions and addresses.
// Line breaks survive; surrounding blank space does not.
func SanitizeText(input string) string {
	s := stripControl(input)
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = TrimAndNormalize(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// SanitizeDate trims a YYYY-MM-DD query or body value.
func SanitizeDate(input string) string {
	return strings.TrimSpace(input)
}

// SanitizeReference normalizes a booking reference for lookup.
func SanitizeReference(input string) string {
	return trimAndLower(input)
}

// SanitizeID normalizes a uuid path or body parameter.
func SanitizeID(input string) string {
	return trimAndLower(input)
}
