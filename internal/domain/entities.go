package domain

import "time"

// Morpheme is one (surface form, tag) pair produced by a tagger.
type Morpheme struct {
	SurfaceForm string `json:"surface"`
	Tag         string `json:"tag"`
}

// TokenList is the ordered surface forms of one sentence.
type TokenList []string

type Document struct {
	ID        string
	Path      string
	ModTime   time.Time
	Sentences int
	Tokens    int
}

type TokenizedSentence struct {
	DocID  string   `json:"doc_id"`
	Index  int      `json:"index"`
	Text   string   `json:"text"`
	Tokens []string `json:"tokens"`
}

type Stats struct {
	TotalDocs      int `json:"total_docs"`
	TotalSentences int `json:"total_sentences"`
	TotalTokens    int `json:"total_tokens"`
}
