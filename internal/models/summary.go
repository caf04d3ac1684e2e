package models

import (
	"fmt"
	"unicode/utf8"

	"github.com/MaksimSorokoumov/LP-screening/pkg/utils"
)

const summaryKeywords = 10

// Summary derives the report digest from the extracted signals.
func (a *AuditResult) Summary() Optional[SignalSummary] {
	signals, ok := a.Signals.Get()
	if !ok {
		return None[SignalSummary]()
	}
	return Some(signals.Summary())
}

// Summary derives the report digest of the page.
func (p PageSignals) Summary() SignalSummary {
	title := p.Title.OrElse("")
	desc, hasDesc := p.MetaDescription.Get()
	words := p.WordCount()

	counts := make(map[string]int, 3)
	for level := 1; level <= 3; level++ {
		counts[fmt.Sprintf("h%d", level)] = p.Headings.Count(level)
	}

	return SignalSummary{
		Title:              title,
		TitleLength:        utf8.RuneCountInString(title),
		HasMetaDescription: hasDesc,
		MetaDescriptionLen: utf8.RuneCountInString(desc),
		HasMetaKeywords:    p.MetaKeywords.IsPresent(),
		HeadingCounts:      counts,
		H1:                 append([]string(nil), p.Headings[1]...),
		WordCount:          words,
		ReadingMinutes:     utils.CalculateReadingTime(words),
		ImagesTotal:        p.ImagesTotal,
		ImagesWithoutAlt:   p.ImagesWithoutAlt,
		FormsCount:         p.FormsCount,
		ExternalLinks:      p.ExternalLinks,
		ExternalNofollow:   p.ExternalNofollow,
		Analytics:          append([]string(nil), p.Analytics...),
		TopKeywords:        utils.ExtractKeywords(p.TextContent, summaryKeywords),
	}
}
