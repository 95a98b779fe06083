package fs

import (
	"bytes"
	"path/filepath"
	"testing"

	"golang.org/x/text/encoding/korean"
)

func equalLines(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences %q, got %d %q", len(want), want, len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestReadSentences_SkipBlank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	writeFile(t, path, "\ufeff첫 문장\r\n\n   \n둘째 문장")

	r, err := NewSentenceFileReader("utf-8", true)
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.ReadSentences(path)
	if err != nil {
		t.Fatal(err)
	}
	equalLines(t, got, []string{"첫 문장", "둘째 문장"})
}

func TestReadSentences_KeepBlank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.txt")
	writeFile(t, path, "가\n\n나\n")

	r, _ := NewSentenceFileReader("", false)
	got, err := r.ReadSentences(path)
	if err != nil {
		t.Fatal(err)
	}
	equalLines(t, got, []string{"가", "", "나"})
}

func TestReadSentences_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	writeFile(t, path, "")

	r, _ := NewSentenceFileReader("utf-8", false)
	got, err := r.ReadSentences(path)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestReadSentences_EUCKR(t *testing.T) {
	encoded, err := korean.EUCKR.NewEncoder().Bytes([]byte("안녕하세요\n반갑습니다\n"))
	if err != nil {
		t.Fatal(err)
	}

	r, err := NewSentenceFileReader("cp949", true)
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.readFrom(bytes.NewReader(encoded))
	if err != nil {
		t.Fatal(err)
	}
	equalLines(t, got, []string{"안녕하세요", "반갑습니다"})
}

func TestNewSentenceFileReader_UnknownEncoding(t *testing.T) {
	if _, err := NewSentenceFileReader("shift-jis", true); err == nil {
		t.Error("expected error for unsupported encoding")
	}
}

func TestReadSentences_MissingFile(t *testing.T) {
	r, _ := NewSentenceFileReader("utf-8", true)
	if _, err := r.ReadSentences("/nonexistent/file.txt"); err == nil {
		t.Error("expected error for missing file")
	}
}
