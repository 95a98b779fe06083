package analyzer

import (
	"io"
	"sync"

	"k8s.io/klog/v2"
	"kotok/internal/domain"
	"kotok/internal/port"
)

// Tokenizer projects tagger output to surface forms.
//
// A Tokenizer built with NewTokenizer constructs one tagger per call and
// releases it afterwards. A Tokenizer built with NewSharedTokenizer reuses a
// caller-owned tagger and serializes calls to it.
type Tokenizer struct {
	factory port.TaggerFactory

	mu     sync.Mutex
	shared port.Tagger
}

// NewTokenizer creates a Tokenizer that builds a fresh tagger on every call.
func NewTokenizer(factory port.TaggerFactory) *Tokenizer {
	return &Tokenizer{factory: factory}
}

// NewSharedTokenizer creates a Tokenizer around a tagger owned by the caller.
// The caller is responsible for closing the tagger.
func NewSharedTokenizer(tagger port.Tagger) *Tokenizer {
	return &Tokenizer{shared: tagger}
}

// Tokenize returns the surface forms of every sentence. Collaborator errors
// are returned unchanged and no partial result is returned with them.
func (t *Tokenizer) Tokenize(sentences []string) ([][]string, error) {
	var result [][]string
	err := t.withTagger(func(tagger port.Tagger) error {
		var err error
		result, err = Tokenize(tagger, sentences)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Analyze is Tokenize without the projection: it returns the full morphemes.
func (t *Tokenizer) Analyze(sentences []string) ([][]domain.Morpheme, error) {
	var result [][]domain.Morpheme
	err := t.withTagger(func(tagger port.Tagger) error {
		var err error
		result, err = Analyze(tagger, sentences)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (t *Tokenizer) withTagger(fn func(port.Tagger) error) error {
	if t.shared != nil {
		t.mu.Lock()
		defer t.mu.Unlock()
		return fn(t.shared)
	}

	tagger, err := t.factory()
	if err != nil {
		return err
	}
	defer func() {
		if closer, ok := tagger.(io.Closer); ok {
			if cerr := closer.Close(); cerr != nil {
				klog.Warningf("Failed to release tagger: %v", cerr)
			}
		}
	}()
	return fn(tagger)
}

// Tokenize runs tagger over sentences and keeps only the surface forms.
func Tokenize(tagger port.Tagger, sentences []string) ([][]string, error) {
	result := make([][]string, 0, len(sentences))
	for _, s := range sentences {
		morphs, err := tagger.Pos(s)
		if err != nil {
			return nil, err
		}
		result = append(result, SurfaceForms(morphs))
	}
	return result, nil
}

// Analyze runs tagger over sentences and returns its output as is.
func Analyze(tagger port.Tagger, sentences []string) ([][]domain.Morpheme, error) {
	result := make([][]domain.Morpheme, 0, len(sentences))
	for _, s := range sentences {
		morphs, err := tagger.Pos(s)
		if err != nil {
			return nil, err
		}
		if morphs == nil {
			morphs = []domain.Morpheme{}
		}
		result = append(result, morphs)
	}
	return result, nil
}

// SurfaceForms drops the tags of morphs. The result is never nil.
func SurfaceForms(morphs []domain.Morpheme) []string {
	tokens := make([]string, len(morphs))
	for i, m := range morphs {
		tokens[i] = m.SurfaceForm
	}
	return tokens
}

var _ port.Tokenizer = (*Tokenizer)(nil)
