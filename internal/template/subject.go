package template

import (
	"strings"
	"unicode"
)

// defaultSubject is used when the event supplies neither a subject nor a
// position.
const defaultSubject = "Lamaran Pekerjaan"

// BuildSubject produces the email subject for one dispatch.
//
// Without an explicit subject one is synthesized as "{position} - {name}",
// falling back to "Lamaran Pekerjaan - {name}" when position is empty.
// An explicit subject is kept as-is except that the literal word "nama"
// (case-insensitive, at word boundaries) is replaced with the identity's
// display name. Unknown placeholders in an explicit subject stay untouched.
func BuildSubject(rawSubject, position, name string) string {
	if rawSubject == "" {
		if position != "" {
			return position + " - " + name
		}
		return defaultSubject + " - " + name
	}
	return replaceNameWord(rawSubject, name)
}

// replaceNameWord replaces every boundary-delimited, case-insensitive
// occurrence of "nama" in subject with name. A boundary is the start or end
// of the string or any non-alphanumeric rune, so "Lowongan_Nama_Backend"
// rewrites while "namafile" does not.
func replaceNameWord(subject, name string) string {
	const word = "nama"

	runes := []rune(subject)
	lower := []rune(strings.ToLower(subject))
	target := []rune(word)

	var b strings.Builder
	for i := 0; i < len(runes); {
		if !matchesAt(lower, target, i) || !boundaryBefore(lower, i) || !boundaryAfter(lower, i+len(target)) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		b.WriteString(name)
		i += len(target)
	}
	return b.String()
}

func matchesAt(s, target []rune, i int) bool {
	if i+len(target) > len(s) {
		return false
	}
	for j, r := range target {
		if s[i+j] != r {
			return false
		}
	}
	return true
}

func boundaryBefore(s []rune, i int) bool {
	return i == 0 || !isAlphanumeric(s[i-1])
}

func boundaryAfter(s []rune, i int) bool {
	return i >= len(s) || !isAlphanumeric(s[i])
}

func isAlphanumeric(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
