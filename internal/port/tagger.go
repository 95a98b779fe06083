package port

import "kotok/internal/domain"

// Tagger is a morphological analyzer.
type Tagger interface {
	// Pos returns the morphemes of sentence in the order the analyzer produced them.
	Pos(sentence string) ([]domain.Morpheme, error)
}

// TaggerFactory constructs a fresh Tagger.
type TaggerFactory func() (Tagger, error)
