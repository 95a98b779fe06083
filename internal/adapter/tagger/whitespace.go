package tagger

import (
	"strings"
	"unicode"

	"kotok/internal/domain"
)

// Sejong tags used by Komoran for the classes WhitespaceTagger can tell apart.
const (
	TagUnknown     = "NA"
	TagForeign     = "SL"
	TagChinese     = "SH"
	TagNumber      = "SN"
	TagFinalPunct  = "SF"
	TagOtherSymbol = "SW"
)

// WhitespaceTagger is a dictionary-free tagger. It splits on whitespace and
// on character-class changes, so "2024년에" becomes "2024"/SN and "년에"/NA.
// It is meant for tests and for running without a JVM.
type WhitespaceTagger struct{}

func NewWhitespaceTagger() *WhitespaceTagger {
	return &WhitespaceTagger{}
}

func (w *WhitespaceTagger) Pos(sentence string) ([]domain.Morpheme, error) {
	morphs := []domain.Morpheme{}
	for _, field := range strings.Fields(sentence) {
		morphs = appendRuns(morphs, field)
	}
	return morphs, nil
}

func appendRuns(morphs []domain.Morpheme, field string) []domain.Morpheme {
	var current strings.Builder
	currentTag := ""

	flush := func() {
		if current.Len() > 0 {
			morphs = append(morphs, domain.Morpheme{SurfaceForm: current.String(), Tag: currentTag})
			current.Reset()
		}
	}

	for _, r := range field {
		tag := classify(r)
		if isPunct(tag) {
			flush()
			morphs = append(morphs, domain.Morpheme{SurfaceForm: string(r), Tag: tag})
			currentTag = ""
			continue
		}
		if tag != currentTag {
			flush()
			currentTag = tag
		}
		current.WriteRune(r)
	}
	flush()
	return morphs
}

func classify(r rune) string {
	switch {
	case unicode.Is(unicode.Hangul, r):
		return TagUnknown
	case unicode.Is(unicode.Han, r):
		return TagChinese
	case unicode.IsDigit(r):
		return TagNumber
	case unicode.IsLetter(r):
		return TagForeign
	case r == '.' || r == '?' || r == '!':
		return TagFinalPunct
	default:
		return TagOtherSymbol
	}
}

func isPunct(tag string) bool {
	return tag == TagFinalPunct || tag == TagOtherSymbol
}
