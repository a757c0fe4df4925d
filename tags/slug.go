package tags

import "strings"

// Slugify converts a tag to the slug used in tag page URLs.
//
// The string is lowercased and trimmed, whitespace runs become a hyphen,
// everything outside [A-Za-z0-9_-] is dropped and hyphen runs collapse to
// one. Leading and trailing hyphens are kept. Published URLs depend on this
// exact output, so the character classes must not change.
func Slugify(tag string) string {
	s := strings.TrimFunc(strings.ToLower(tag), isSpace)
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if isSpace(r) {
			if !inSpace {
				writeHyphen(&b)
			}
			inSpace = true
			continue
		}
		inSpace = false
		switch {
		case r == '-':
			writeHyphen(&b)
		case isWord(r):
			b.WriteRune(r)
		}
	}
	return b.String()
}

func writeHyphen(b *strings.Builder) {
	if s := b.String(); len(s) > 0 && s[len(s)-1] == '-' {
		return
	}
	b.WriteByte('-')
}

func isWord(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_'
}

// isSpace matches the ECMAScript \s class, which differs from unicode.IsSpace
// in U+0085 and U+FEFF.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}
