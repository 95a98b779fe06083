//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/goccy/go-json"
	"kotok/internal/adapter/analyzer"
	"kotok/internal/adapter/tagger"
)

// Komoran needs a JVM and js.FuncOf callbacks must not block on network I/O,
// so the browser build only offers the whitespace tagger.
var tokenizer = analyzer.NewSharedTokenizer(tagger.NewWhitespaceTagger())

func main() {
	c := make(chan struct{})

	js.Global().Set("kotokTokenize", js.FuncOf(tokenize))
	js.Global().Set("kotokAnalyze", js.FuncOf(analyze))

	<-c
}

func sentencesArg(args []js.Value) ([]string, bool) {
	if len(args) < 1 {
		return nil, false
	}
	v := args[0]
	if v.Type() == js.TypeString {
		return []string{v.String()}, true
	}
	if !v.InstanceOf(js.Global().Get("Array")) {
		return nil, false
	}
	sentences := make([]string, v.Length())
	for i := range sentences {
		sentences[i] = v.Index(i).String()
	}
	return sentences, true
}

func tokenize(this js.Value, args []js.Value) interface{} {
	sentences, ok := sentencesArg(args)
	if !ok {
		return makeError("usage: kotokTokenize(sentence | sentences[])")
	}
	tokenLists, err := tokenizer.Tokenize(sentences)
	if err != nil {
		return makeError("tokenization failed: " + err.Error())
	}
	return makeResult(map[string]interface{}{
		"tokens": tokenLists,
	})
}

func analyze(this js.Value, args []js.Value) interface{} {
	sentences, ok := sentencesArg(args)
	if !ok {
		return makeError("usage: kotokAnalyze(sentence | sentences[])")
	}
	analyses, err := tokenizer.Analyze(sentences)
	if err != nil {
		return makeError("analysis failed: " + err.Error())
	}
	return makeResult(map[string]interface{}{
		"morphs": analyses,
	})
}

func makeError(msg string) interface{} {
	result, _ := json.Marshal(map[string]interface{}{
		"error": msg,
	})
	return string(result)
}

func makeResult(data map[string]interface{}) interface{} {
	result, _ := json.Marshal(data)
	return string(result)
}
