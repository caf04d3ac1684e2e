package utils

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	whitespaceRegex  = regexp.MustCompile(`\s+`)
	invalidFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)
)

// Common stop words for keyword extraction. Landing pages audited by this
// tool are mostly English or Russian, so both lists are carried.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "he": true,
	"in": true, "is": true, "it": true, "its": true, "of": true, "on": true,
	"that": true, "the": true, "to": true, "was": true, "will": true, "with": true,
	"this": true, "but": true, "they": true, "have": true, "had": true, "you": true,
	"were": true, "been": true, "their": true, "she": true, "which": true, "do": true,
	"or": true, "if": true, "not": true, "what": true, "there": true, "can": true,
	"our": true, "your": true, "we": true, "all": true, "more": true, "so": true,
	"и": true, "в": true, "во": true, "не": true, "что": true, "он": true,
	"на": true, "я": true, "с": true, "со": true, "как": true, "а": true,
	"то": true, "все": true, "она": true, "так": true, "его": true, "но": true,
	"да": true, "ты": true, "к": true, "у": true, "же": true, "вы": true,
	"за": true, "бы": true, "по": true, "только": true, "ее": true, "мне": true,
	"было": true, "вот": true, "от": true, "меня": true, "еще": true, "нет": true,
	"о": true, "из": true, "ему": true, "для": true, "при": true, "это": true,
	"или": true, "мы": true, "наш": true, "ваш": true, "до": true, "без": true,
}

// CleanText collapses runs of whitespace into single spaces and trims the result.
func CleanText(text string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(text, " "))
}

// RemoveStopWords lowercases text and filters out common stop words
func RemoveStopWords(text string) string {
	words := strings.Fields(strings.ToLower(text))
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		word = trimPunctuation(word)
		if word != "" && !stopWords[word] {
			filtered = append(filtered, word)
		}
	}

	return strings.Join(filtered, " ")
}

// ExtractKeywords returns up to limit of the most frequent non stop words.
// Ties are broken alphabetically so the result is deterministic.
func ExtractKeywords(text string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	wordCount := make(map[string]int)
	for _, word := range strings.Fields(RemoveStopWords(text)) {
		if utf8.RuneCountInString(word) > 2 {
			wordCount[word]++
		}
	}

	type kv struct {
		Key   string
		Value int
	}
	sorted := make([]kv, 0, len(wordCount))
	for k, v := range wordCount {
		sorted = append(sorted, kv{k, v})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Value == sorted[j].Value {
			return sorted[i].Key < sorted[j].Key
		}
		return sorted[i].Value > sorted[j].Value
	})

	keywords := make([]string, 0, limit)
	for i := 0; i < limit && i < len(sorted); i++ {
		keywords = append(keywords, sorted[i].Key)
	}
	return keywords
}

// TruncateText cuts text to at most maxRunes runes, preferring a word boundary,
// and appends "..." when something was removed.
func TruncateText(text string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}

	truncated := string(runes[:maxRunes])
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 0 {
		truncated = truncated[:lastSpace]
	}
	return truncated + "..."
}

// NormalizeURL produces a comparison key for a URL: lowercase scheme and host,
// no fragment, no trailing slash on the path. Unparseable input is returned trimmed.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	u.RawPath = ""
	return u.String()
}

// HostFromURL extracts the lowercase hostname (no port) from a URL,
// or "" when there is none.
func HostFromURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// SanitizeFilename removes invalid characters from a filename
func SanitizeFilename(filename string) string {
	filename = invalidFileChars.ReplaceAllString(filename, "_")

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, filename)

	if len(cleaned) > 255 {
		cleaned = cleaned[:255]
	}
	return cleaned
}

// CalculateReadingTime estimates reading time in minutes, never less than one.
func CalculateReadingTime(wordCount int) int {
	const wordsPerMinute = 200
	if minutes := wordCount / wordsPerMinute; minutes > 1 {
		return minutes
	}
	return 1
}

func trimPunctuation(word string) string {
	return strings.TrimFunc(word, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}
