package keywords

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// FoldRune maps one NFKD-decomposed rune to its recognition form.
// It returns nil for runes that carry no matching weight (combining
// marks, tatweel, transliteration apostrophes). Callers that work on
// raw text must decompose first; Fold does both steps.
//
// The same fold is applied to the stored vocabulary and to scanner
// input, so the two sides cannot drift apart.
func FoldRune(r rune) []rune {
	if unicode.Is(unicode.Mn, r) {
		// Tashkeel, decomposed hamza carriers, Latin accents.
		return nil
	}

	switch r {
	case 'ـ': // tatweel
		return nil
	case '‌', '‍': // zero-width non-joiner / joiner
		return []rune{' '}
	case ' ': // no-break space
		return []rune{' '}
	case 'ى', 'ی': // alef maqsura, Farsi yeh
		return []rune{'ي'}
	case 'ک': // Farsi kaf
		return []rune{'ك'}
	case 'ة', 'ۀ': // teh marbuta, heh with yeh above
		return []rune{'ه'}
	case 'ٱ': // alef wasla
		return []rune{'ا'}
	case 'أ', 'إ', 'آ': // precomposed hamza carriers, in case decomposition was skipped
		return []rune{'ا'}
	case 'ؤ':
		return []rune{'و'}
	case 'ئ':
		return []rune{'ي'}
	case '\'', '`', '‘', '’', 'ʼ', 'ʻ', 'ʿ', 'ʾ':
		// Apostrophe-like marks used in transliteration (Rabi' al-Awwal).
		return nil
	}

	// Arabic-Indic and Extended Arabic-Indic digits.
	if r >= '٠' && r <= '٩' {
		return []rune{'0' + (r - '٠')}
	}
	if r >= '۰' && r <= '۹' {
		return []rune{'0' + (r - '۰')}
	}

	return []rune{unicode.ToLower(r)}
}

// Fold normalizes s for matching: NFKD decomposition, combining-mark
// removal, Arabic/Persian letter unification, digit unification, and
// lowercasing. Whitespace is preserved byte-for-byte where possible;
// use FoldKey for token comparison.
func Fold(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var it norm.Iter
	it.InitString(norm.NFKD, s)
	for !it.Done() {
		seg := it.Next()
		for _, r := range string(seg) {
			for _, f := range FoldRune(r) {
				b.WriteRune(f)
			}
		}
	}
	return b.String()
}

// FoldKey folds s and collapses internal whitespace runs to single
// spaces, producing the canonical lookup key for a token.
func FoldKey(s string) string {
	return strings.Join(strings.Fields(Fold(s)), " ")
}
