package store

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.etcd.io/bbolt"
	"kotok/internal/domain"
	"kotok/internal/port"
)

var (
	bucketDocs      = []byte("docs")
	bucketSentences = []byte("sentences")
	bucketStats     = []byte("stats")
	keyStats        = []byte("corpus_stats")
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("not found")

type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketDocs, bucketSentences, bucketStats} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

type docMeta struct {
	Path      string `json:"path"`
	ModTime   int64  `json:"mod_time"`
	Sentences int    `json:"sentences"`
	Tokens    int    `json:"tokens"`
}

type sentenceRecord struct {
	Index  int      `json:"index"`
	Text   string   `json:"text"`
	Tokens []string `json:"tokens"`
}

// sentencePrefix is the key prefix shared by all sentences of a document.
func sentencePrefix(docID string) []byte {
	return []byte(docID + "/")
}

// sentenceKey keeps a document's sentences in index order under a cursor scan.
func sentenceKey(docID string, index int) []byte {
	return []byte(fmt.Sprintf("%s/%08d", docID, index))
}

func toDocument(id string, meta docMeta) domain.Document {
	return domain.Document{
		ID:        id,
		Path:      meta.Path,
		ModTime:   time.Unix(meta.ModTime, 0),
		Sentences: meta.Sentences,
		Tokens:    meta.Tokens,
	}
}

// PutDocument stores doc and replaces all of its sentences in one transaction.
func (s *BoltStore) PutDocument(doc domain.Document, sentences []domain.TokenizedSentence) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		sb := tx.Bucket(bucketSentences)
		if err := deletePrefix(sb, sentencePrefix(doc.ID)); err != nil {
			return err
		}

		tokens := 0
		for _, sent := range sentences {
			data, err := json.Marshal(sentenceRecord{Index: sent.Index, Text: sent.Text, Tokens: sent.Tokens})
			if err != nil {
				return err
			}
			if err := sb.Put(sentenceKey(doc.ID, sent.Index), data); err != nil {
				return err
			}
			tokens += len(sent.Tokens)
		}

		data, err := json.Marshal(docMeta{
			Path:      doc.Path,
			ModTime:   doc.ModTime.Unix(),
			Sentences: len(sentences),
			Tokens:    tokens,
		})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketDocs).Put([]byte(doc.ID), data)
	})
}

func (s *BoltStore) GetDoc(id string) (domain.Document, error) {
	var doc domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDocs).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("document %s: %w", id, ErrNotFound)
		}
		var meta docMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			return err
		}
		doc = toDocument(id, meta)
		return nil
	})
	return doc, err
}

func (s *BoltStore) FindDocByPath(path string) (domain.Document, error) {
	docs, err := s.ListDocs()
	if err != nil {
		return domain.Document{}, err
	}
	for _, doc := range docs {
		if doc.Path == path {
			return doc, nil
		}
	}
	return domain.Document{}, fmt.Errorf("document for %s: %w", path, ErrNotFound)
}

func (s *BoltStore) ListDocs() ([]domain.Document, error) {
	var docs []domain.Document
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketDocs).ForEach(func(k, v []byte) error {
			var meta docMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return err
			}
			docs = append(docs, toDocument(string(k), meta))
			return nil
		})
	})
	return docs, err
}

// GetSentences returns the sentences of a document in index order.
func (s *BoltStore) GetSentences(docID string) ([]domain.TokenizedSentence, error) {
	var sentences []domain.TokenizedSentence
	err := s.db.View(func(tx *bbolt.Tx) error {
		prefix := sentencePrefix(docID)
		c := tx.Bucket(bucketSentences).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var rec sentenceRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("corrupt sentence %s: %w", k, err)
			}
			if rec.Tokens == nil {
				rec.Tokens = []string{}
			}
			sentences = append(sentences, domain.TokenizedSentence{
				DocID:  docID,
				Index:  rec.Index,
				Text:   rec.Text,
				Tokens: rec.Tokens,
			})
		}
		return nil
	})
	return sentences, err
}

func (s *BoltStore) DeleteDoc(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := deletePrefix(tx.Bucket(bucketSentences), sentencePrefix(id)); err != nil {
			return err
		}
		return tx.Bucket(bucketDocs).Delete([]byte(id))
	})
}

func (s *BoltStore) GetStats() (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketStats).Get(keyStats)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &stats)
	})
	return stats, err
}

// RecomputeStats sums the per-document counters and stores the totals.
func (s *BoltStore) RecomputeStats() (domain.Stats, error) {
	var stats domain.Stats
	err := s.db.Update(func(tx *bbolt.Tx) error {
		err := tx.Bucket(bucketDocs).ForEach(func(k, v []byte) error {
			var meta docMeta
			if err := json.Unmarshal(v, &meta); err != nil {
				return err
			}
			stats.TotalDocs++
			stats.TotalSentences += meta.Sentences
			stats.TotalTokens += meta.Tokens
			return nil
		})
		if err != nil {
			return err
		}
		data, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketStats).Put(keyStats, data)
	})
	return stats, err
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

// deletePrefix removes every key in b starting with prefix.
func deletePrefix(b *bbolt.Bucket, prefix []byte) error {
	c := b.Cursor()
	for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Seek(prefix) {
		if err := b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

var _ port.ResultStore = (*BoltStore)(nil)
