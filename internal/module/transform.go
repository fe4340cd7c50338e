package module

import (
	"fmt"
	"strings"
	"unicode"
)

// Transform names one pure clipboard text transformation.
// The set is closed: every Transform has an entry in transforms.
type Transform string

const (
	TransformUppercase Transform = "to_uppercase"
	TransformLowercase Transform = "to_lowercase"
	TransformReverse   Transform = "reverse_string"
	TransformSwapCase  Transform = "swap_case"
	TransformSemicolon Transform = "semicolon_to_greek_question_mark"
)

// greekQuestionMark renders like ';' in most fonts.
const greekQuestionMark = "\u037e"

var transforms = map[Transform]func(string) string{
	TransformUppercase: strings.ToUpper,
	TransformLowercase: strings.ToLower,
	TransformReverse:   reverseRunes,
	TransformSwapCase:  swapCase,
	TransformSemicolon: func(s string) string { return strings.ReplaceAll(s, ";", greekQuestionMark) },
}

// registrationOrder is the order tamper actions are registered and applied in.
var registrationOrder = []Transform{
	TransformUppercase,
	TransformLowercase,
	TransformReverse,
	TransformSwapCase,
	TransformSemicolon,
}

// Transforms returns every transform in registration order.
func Transforms() []Transform {
	return append([]Transform(nil), registrationOrder...)
}

// ParseTransform resolves a transform by name.
func ParseTransform(name string) (Transform, error) {
	t := Transform(strings.TrimSpace(name))
	if _, ok := transforms[t]; !ok {
		return "", fmt.Errorf("unknown transform %q", name)
	}
	return t, nil
}

// Apply runs the transform. Unknown transforms return s unchanged.
func (t Transform) Apply(s string) string {
	fn, ok := transforms[t]
	if !ok {
		return s
	}
	return fn(s)
}

func (t Transform) String() string {
	return string(t)
}

func reverseRunes(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// swapCase flips upper and lower case per rune; uncased runes are kept.
func swapCase(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsUpper(r):
			return unicode.ToLower(r)
		case unicode.IsLower(r):
			return unicode.ToUpper(r)
		default:
			return r
		}
	}, s)
}
