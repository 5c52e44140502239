package mangle

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Ident encodes one identifier as C-safe text. ASCII letters and digits pass
// through, '_' doubles, and every other rune becomes _u<hex>_. A leading
// digit gets a _d prefix so the text never extends a length prefix.
func Ident(name string) string {
	name = norm.NFC.String(name)
	var sb strings.Builder
	sb.Grow(len(name) + 2)
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		sb.WriteString("_d")
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '_':
			sb.WriteString("__")
		default:
			sb.WriteString("_u")
			sb.WriteString(strconv.FormatInt(int64(r), 16))
			sb.WriteString("_")
		}
	}
	return sb.String()
}

func writeIdent(sb *strings.Builder, name string) {
	enc := Ident(name)
	sb.WriteString(strconv.Itoa(len(enc)))
	sb.WriteString(enc)
}
