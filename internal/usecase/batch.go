package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"k8s.io/klog/v2"
	"kotok/internal/domain"
	"kotok/internal/port"
)

// ProgressFunc is called after each file with the number of files handled so far.
type ProgressFunc func(processed, total int, currentFile string)

// BatchUseCase tokenizes every sentence file under a directory into a store.
type BatchUseCase struct {
	store     port.ResultStore
	walker    port.FileWalker
	reader    port.SentenceReader
	tokenizer port.Tokenizer
}

// NewBatchUseCase creates a new batch use case.
func NewBatchUseCase(
	store port.ResultStore,
	walker port.FileWalker,
	reader port.SentenceReader,
	tokenizer port.Tokenizer,
) *BatchUseCase {
	return &BatchUseCase{
		store:     store,
		walker:    walker,
		reader:    reader,
		tokenizer: tokenizer,
	}
}

// BatchResult contains the results of a batch run.
type BatchResult struct {
	FilesTokenized int
	FilesSkipped   int
	FilesDeleted   int
	Sentences      int
	Tokens         int
	Stats          domain.Stats
	Errors         []string
}

// Run tokenizes new and modified files under root, skips unchanged ones and
// drops stored results of files that disappeared.
func (u *BatchUseCase) Run(root string, progress ProgressFunc) (*BatchResult, error) {
	result := &BatchResult{}

	files, err := u.walker.Walk(root)
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	existingDocs, err := u.store.ListDocs()
	if err != nil {
		return nil, fmt.Errorf("failed to list existing docs: %w", err)
	}
	existing := make(map[string]domain.Document, len(existingDocs))
	for _, doc := range existingDocs {
		existing[doc.Path] = doc
	}

	seen := make(map[string]bool, len(files))
	for i, file := range files {
		seen[file.Path] = true

		if doc, ok := existing[file.Path]; ok && doc.ModTime.Unix() >= file.ModTime {
			result.FilesSkipped++
		} else if err := u.tokenizeFile(file, result); err != nil {
			klog.V(1).Infof("Skipping %s: %v", file.Path, err)
			result.Errors = append(result.Errors, fmt.Sprintf("failed to tokenize %s: %v", file.Path, err))
		} else {
			result.FilesTokenized++
		}

		if progress != nil {
			progress(i+1, len(files), file.Path)
		}
	}

	for path, doc := range existing {
		if seen[path] {
			continue
		}
		if err := u.store.DeleteDoc(doc.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to delete %s: %v", path, err))
			continue
		}
		result.FilesDeleted++
	}

	stats, err := u.store.RecomputeStats()
	if err != nil {
		return nil, fmt.Errorf("failed to update stats: %w", err)
	}
	result.Stats = stats

	return result, nil
}

// tokenizeFile is one Tokenize call; nothing is stored unless it succeeds.
func (u *BatchUseCase) tokenizeFile(file port.FileInfo, result *BatchResult) error {
	sentences, err := u.reader.ReadSentences(file.Path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	tokenLists, err := u.tokenizer.Tokenize(sentences)
	if err != nil {
		return err
	}
	if len(tokenLists) != len(sentences) {
		return fmt.Errorf("tokenizer returned %d token lists for %d sentences", len(tokenLists), len(sentences))
	}

	doc := domain.Document{
		ID:      DocID(file.Path),
		Path:    file.Path,
		ModTime: time.Unix(file.ModTime, 0),
	}
	records := make([]domain.TokenizedSentence, len(sentences))
	tokens := 0
	for i, s := range sentences {
		records[i] = domain.TokenizedSentence{
			DocID:  doc.ID,
			Index:  i,
			Text:   s,
			Tokens: tokenLists[i],
		}
		tokens += len(tokenLists[i])
	}

	if err := u.store.PutDocument(doc, records); err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}

	result.Sentences += len(sentences)
	result.Tokens += tokens
	return nil
}

// DocID derives a stable document ID from a file path.
func DocID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return hex.EncodeToString(hash[:8])
}
