package port

type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
}

type FileInfo struct {
	Path    string
	ModTime int64
	Size    int64
}

// SentenceReader reads the sentences of one input file.
type SentenceReader interface {
	ReadSentences(path string) ([]string, error)
}
