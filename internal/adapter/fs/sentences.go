package fs

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"kotok/config"
	"kotok/internal/port"
)

// SentenceFileReader reads one sentence per line.
type SentenceFileReader struct {
	skipBlank bool
	encoding  string
}

// NewSentenceFileReader creates a reader for files in the given encoding
// ("utf-8" or "euc-kr"; CP949 files read fine as "euc-kr").
func NewSentenceFileReader(encoding string, skipBlank bool) (*SentenceFileReader, error) {
	normalized, err := config.NormalizeEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return &SentenceFileReader{skipBlank: skipBlank, encoding: normalized}, nil
}

func (r *SentenceFileReader) ReadSentences(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return r.readFrom(f)
}

func (r *SentenceFileReader) readFrom(in io.Reader) ([]string, error) {
	var decoded io.Reader
	if r.encoding == "euc-kr" {
		decoded = transform.NewReader(in, korean.EUCKR.NewDecoder())
	} else {
		// Strips a leading BOM if present.
		decoded = transform.NewReader(in, unicode.UTF8BOM.NewDecoder())
	}

	sentences := []string{}
	reader := bufio.NewReader(decoded)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 || err == nil {
			line = bytes.TrimSuffix(line, []byte("\n"))
			line = bytes.TrimSuffix(line, []byte("\r"))
			if !r.skipBlank || len(bytes.TrimSpace(line)) > 0 {
				sentences = append(sentences, string(line))
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return sentences, nil
}

var _ port.SentenceReader = (*SentenceFileReader)(nil)
