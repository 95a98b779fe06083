package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"kotok/config"
	"kotok/internal/domain"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	st, err := NewBoltStore(filepath.Join(t.TempDir(), "tokens.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleSentences(docID string) []domain.TokenizedSentence {
	return []domain.TokenizedSentence{
		{DocID: docID, Index: 0, Text: "나는 간다", Tokens: []string{"나", "는", "가", "ㄴ다"}},
		{DocID: docID, Index: 1, Text: "", Tokens: []string{}},
		{DocID: docID, Index: 2, Text: "비", Tokens: []string{"비"}},
	}
}

func TestPutDocument_RoundTrip(t *testing.T) {
	st := openTestStore(t)

	doc := domain.Document{ID: "doc1", Path: "/corpus/a.txt", ModTime: time.Unix(1700000000, 0)}
	if err := st.PutDocument(doc, sampleSentences("doc1")); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := st.GetDoc("doc1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Path != doc.Path || !got.ModTime.Equal(doc.ModTime) {
		t.Errorf("unexpected doc: %+v", got)
	}
	if got.Sentences != 3 || got.Tokens != 5 {
		t.Errorf("expected 3 sentences / 5 tokens, got %d / %d", got.Sentences, got.Tokens)
	}

	sentences, err := st.GetSentences("doc1")
	if err != nil {
		t.Fatalf("get sentences failed: %v", err)
	}
	if len(sentences) != 3 {
		t.Fatalf("expected 3 sentences, got %d", len(sentences))
	}
	for i, s := range sentences {
		if s.Index != i {
			t.Errorf("sentence %d has index %d", i, s.Index)
		}
		if s.DocID != "doc1" {
			t.Errorf("sentence %d has doc id %q", i, s.DocID)
		}
	}
	if len(sentences[0].Tokens) != 4 || sentences[0].Tokens[3] != "ㄴ다" {
		t.Errorf("unexpected tokens: %v", sentences[0].Tokens)
	}
	if sentences[1].Tokens == nil || len(sentences[1].Tokens) != 0 {
		t.Errorf("expected empty non-nil token list, got %#v", sentences[1].Tokens)
	}
}

func TestPutDocument_ReplacesSentences(t *testing.T) {
	st := openTestStore(t)
	doc := domain.Document{ID: "doc1", Path: "/corpus/a.txt", ModTime: time.Now()}

	if err := st.PutDocument(doc, sampleSentences("doc1")); err != nil {
		t.Fatal(err)
	}
	replacement := []domain.TokenizedSentence{{DocID: "doc1", Index: 0, Text: "새", Tokens: []string{"새"}}}
	if err := st.PutDocument(doc, replacement); err != nil {
		t.Fatal(err)
	}

	sentences, err := st.GetSentences("doc1")
	if err != nil {
		t.Fatal(err)
	}
	if len(sentences) != 1 || sentences[0].Text != "새" {
		t.Errorf("expected only the replacement sentence, got %+v", sentences)
	}
}

func TestSentencesAreScopedToDocument(t *testing.T) {
	st := openTestStore(t)

	// "doc1" is a prefix of "doc10"; the key separator keeps them apart.
	if err := st.PutDocument(domain.Document{ID: "doc1", Path: "/a"}, sampleSentences("doc1")); err != nil {
		t.Fatal(err)
	}
	if err := st.PutDocument(domain.Document{ID: "doc10", Path: "/b"}, sampleSentences("doc10")[:1]); err != nil {
		t.Fatal(err)
	}

	s1, _ := st.GetSentences("doc1")
	s10, _ := st.GetSentences("doc10")
	if len(s1) != 3 || len(s10) != 1 {
		t.Errorf("expected 3 and 1 sentences, got %d and %d", len(s1), len(s10))
	}

	if err := st.DeleteDoc("doc1"); err != nil {
		t.Fatal(err)
	}
	s10, _ = st.GetSentences("doc10")
	if len(s10) != 1 {
		t.Errorf("deleting doc1 removed doc10 sentences")
	}
}

func TestGetDoc_NotFound(t *testing.T) {
	st := openTestStore(t)

	_, err := st.GetDoc("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	_, err = st.FindDocByPath("/missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFindDocByPath(t *testing.T) {
	st := openTestStore(t)
	st.PutDocument(domain.Document{ID: "a", Path: "/corpus/a.txt"}, nil)
	st.PutDocument(domain.Document{ID: "b", Path: "/corpus/b.txt"}, nil)

	doc, err := st.FindDocByPath("/corpus/b.txt")
	if err != nil {
		t.Fatal(err)
	}
	if doc.ID != "b" {
		t.Errorf("expected doc b, got %s", doc.ID)
	}
}

func TestRecomputeStats(t *testing.T) {
	st := openTestStore(t)
	st.PutDocument(domain.Document{ID: "a", Path: "/a"}, sampleSentences("a"))
	st.PutDocument(domain.Document{ID: "b", Path: "/b"}, sampleSentences("b")[:1])

	stats, err := st.RecomputeStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalDocs != 2 || stats.TotalSentences != 4 || stats.TotalTokens != 9 {
		t.Errorf("unexpected stats: %+v", stats)
	}

	stored, err := st.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stored != stats {
		t.Errorf("stored stats %+v differ from computed %+v", stored, stats)
	}
}

func TestMigration(t *testing.T) {
	st := openTestStore(t)
	cfg := config.DefaultConfig()

	result, err := st.CheckMigration(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !result.NeedsMigration || result.NeedsRebuild {
		t.Errorf("fresh store should need migration only: %+v", result)
	}

	if err := st.Migrate(cfg); err != nil {
		t.Fatal(err)
	}
	result, err = st.CheckMigration(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if result.NeedsMigration || result.NeedsRebuild {
		t.Errorf("migrated store should be current: %+v", result)
	}

	cfg.Tagger.Komoran.UserDictionary = "/data/user.dic"
	result, err = st.CheckMigration(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if !result.NeedsRebuild {
		t.Error("changing the user dictionary should require a rebuild")
	}
}

func TestMigration_NewerSchema(t *testing.T) {
	st := openTestStore(t)
	if err := st.SetSchemaInfo(&SchemaInfo{Version: CurrentSchemaVersion + 1}); err != nil {
		t.Fatal(err)
	}

	result, err := st.CheckMigration(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if !result.NeedsRebuild {
		t.Error("newer schema should require a rebuild")
	}
}

func TestClearKeepsSchema(t *testing.T) {
	st := openTestStore(t)
	cfg := config.DefaultConfig()
	st.Migrate(cfg)
	st.PutDocument(domain.Document{ID: "a", Path: "/a"}, sampleSentences("a"))
	st.RecomputeStats()

	if err := st.Clear(); err != nil {
		t.Fatal(err)
	}

	docs, _ := st.ListDocs()
	if len(docs) != 0 {
		t.Errorf("expected no docs after clear, got %d", len(docs))
	}
	sentences, _ := st.GetSentences("a")
	if len(sentences) != 0 {
		t.Errorf("expected no sentences after clear, got %d", len(sentences))
	}
	stats, _ := st.GetStats()
	if stats.TotalDocs != 0 {
		t.Errorf("expected stats reset, got %+v", stats)
	}
	info, _ := st.GetSchemaInfo()
	if info.Version != CurrentSchemaVersion || info.ConfigHash != ComputeConfigHash(cfg) {
		t.Errorf("schema info should survive clear: %+v", info)
	}
}

func TestComputeConfigHash_EncodingSpellings(t *testing.T) {
	hashFor := func(encoding string) string {
		cfg := config.DefaultConfig()
		cfg.Batch.Encoding = encoding
		return ComputeConfigHash(cfg)
	}

	utf8 := hashFor("utf-8")
	for _, enc := range []string{"", "utf8", "UTF-8"} {
		if got := hashFor(enc); got != utf8 {
			t.Errorf("hash for %q = %s, want %s", enc, got, utf8)
		}
	}
	euckr := hashFor("euc-kr")
	for _, enc := range []string{"cp949", "EUC-KR", "euckr"} {
		if got := hashFor(enc); got != euckr {
			t.Errorf("hash for %q = %s, want %s", enc, got, euckr)
		}
	}
	if utf8 == euckr {
		t.Error("utf-8 and euc-kr should hash differently")
	}
}

func TestCheckMigration_EncodingSpellingNoRebuild(t *testing.T) {
	st := openTestStore(t)
	cfg := config.DefaultConfig()
	cfg.Batch.Encoding = "euc-kr"
	if err := st.Migrate(cfg); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	cfg.Batch.Encoding = "cp949"
	result, err := st.CheckMigration(cfg)
	if err != nil {
		t.Fatalf("CheckMigration: %v", err)
	}
	if result.NeedsRebuild {
		t.Errorf("unexpected rebuild: %s", result.Reason)
	}
}
