package port

// Tokenizer turns sentences into surface-form token lists.
type Tokenizer interface {
	// Tokenize returns one token list per sentence, positionally aligned with the input.
	Tokenize(sentences []string) ([][]string, error)
}
