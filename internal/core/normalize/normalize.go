// Package normalize folds catalog text into comparison keys. Two titles that
// differ only by case, width, accents, punctuation or spacing fold to the same key
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// transformers are stateful, so each goroutine borrows its own chain
var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,
			runes.Remove(runes.In(unicode.Mn)), // accents
			runes.Remove(runes.In(unicode.Cf)), // zero widths, BOM
			runes.Map(controlSpace),
			runes.Remove(runes.Predicate(func(r rune) bool { return unicode.IsControl(r) })),
			width.Fold,
			cases.Fold(),
			norm.NFC,
		)
	},
}

// controlSpace turns tab, newline and other whitespace controls into a plain
// space so words split across lines stay separate
func controlSpace(r rune) rune {
	if unicode.IsControl(r) && unicode.IsSpace(r) {
		return ' '
	}
	return r
}

func fold(s string) string {
	tr := chainPool.Get().(transform.Transformer)
	defer func() {
		tr.Reset()
		chainPool.Put(tr)
	}()
	out, _, err := transform.String(tr, strings.ToValidUTF8(s, ""))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Title folds a grant title. Punctuation and symbols become word breaks, so
// "SBIR: Phase I" and "sbir phase i" share a key
func Title(s string) string {
	if s == "" {
		return ""
	}
	f := fold(s)
	var b strings.Builder
	b.Grow(len(f))
	space := false
	for _, r := range f {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// Agency folds an agency name: case, width and spacing only, since
// punctuation in acronyms ("U.S. EPA") is not noise we can safely drop
func Agency(s string) string {
	return strings.Join(strings.Fields(fold(s)), " ")
}
