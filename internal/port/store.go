package port

import "kotok/internal/domain"

type ResultStore interface {
	PutDocument(doc domain.Document, sentences []domain.TokenizedSentence) error

	GetDoc(id string) (domain.Document, error)

	FindDocByPath(path string) (domain.Document, error)

	ListDocs() ([]domain.Document, error)

	GetSentences(docID string) ([]domain.TokenizedSentence, error)

	DeleteDoc(id string) error

	GetStats() (domain.Stats, error)

	RecomputeStats() (domain.Stats, error)

	Close() error
}
