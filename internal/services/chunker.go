package services

import (
	"strings"
	"unicode/utf8"
)

// Chunker splits reference documents into passages small enough to embed.
type Chunker struct {
	MaxChars int
	Overlap  int
}

func NewChunker(maxChars, overlap int) *Chunker {
	if maxChars <= 0 {
		maxChars = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChars {
		overlap = maxChars / 4
	}
	return &Chunker{MaxChars: maxChars, Overlap: overlap}
}

// Chunk packs whole paragraphs into chunks of about MaxChars runes.
// Paragraphs longer than that are split on sentence boundaries. Each chunk
// after the first starts with the last Overlap runes of its predecessor.
func (c *Chunker) Chunk(text string) []string {
	var pieces []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if utf8.RuneCountInString(para) > c.MaxChars {
			pieces = append(pieces, splitIntoSentences(para)...)
			continue
		}
		pieces = append(pieces, para)
	}

	var (
		chunks  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunk := current.String()
		chunks = append(chunks, chunk)
		current.Reset()
		if tail := lastNRunes(chunk, c.Overlap); tail != "" {
			current.WriteString(tail)
			current.WriteString(" ")
		}
	}

	carried := 0
	for _, piece := range pieces {
		size := utf8.RuneCountInString(current.String())
		if size > carried && size+utf8.RuneCountInString(piece)+1 > c.MaxChars {
			flush()
			carried = utf8.RuneCountInString(current.String())
			size = carried
		}
		if size > carried {
			current.WriteString("\n")
		}
		current.WriteString(piece)
	}

	if utf8.RuneCountInString(current.String()) > carried {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// splitIntoSentences keeps the terminating punctuation with each sentence.
func splitIntoSentences(text string) []string {
	var (
		sentences []string
		start     int
	)

	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		end := i + utf8.RuneLen(r)
		if end < len(text) && text[end] != ' ' && text[end] != '\n' {
			continue
		}
		if s := strings.TrimSpace(text[start:end]); s != "" {
			sentences = append(sentences, s)
		}
		start = end
	}

	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func lastNRunes(text string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}

	return string(runes[len(runes)-n:])
}
