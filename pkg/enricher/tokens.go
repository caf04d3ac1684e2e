package enricher

import (
	"strings"
	"unicode/utf8"

	"github.com/tiktoken-go/tokenizer"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/MaksimSorokoumov/LP-screening/pkg/utils"
)

// tokenBudget measures text in model tokens. When the codec cannot be
// loaded it falls back to an estimate of four characters per token.
type tokenBudget struct {
	codec tokenizer.Codec
}

func newTokenBudget() *tokenBudget {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return &tokenBudget{}
	}
	return &tokenBudget{codec: codec}
}

func (b *tokenBudget) count(text string) int {
	if b.codec != nil {
		if ids, _, err := b.codec.Encode(text); err == nil {
			return len(ids)
		}
	}
	return (utf8.RuneCountInString(text) + 3) / 4
}

// excerpt returns the leading part of text that fits into maxTokens,
// cut at paragraph, line or word boundaries where possible.
func (b *tokenBudget) excerpt(text string, maxTokens int) string {
	text = strings.TrimSpace(text)
	if text == "" || maxTokens <= 0 {
		return ""
	}
	if b.count(text) <= maxTokens {
		return text
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(maxTokens),
		textsplitter.WithChunkOverlap(0),
		textsplitter.WithLenFunc(b.count),
	)
	chunks, err := splitter.SplitText(text)
	if err == nil {
		for _, chunk := range chunks {
			if chunk = strings.TrimSpace(chunk); chunk != "" && b.count(chunk) <= maxTokens {
				return chunk
			}
		}
	}
	return utils.TruncateText(text, maxTokens*4)
}
