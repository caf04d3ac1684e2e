package extractor

import (
	"sort"
	"strings"
)

// analyticsPattern maps a lowercase substring of a script's src or body to
// the tool it identifies.
type analyticsPattern struct {
	needle string
	tool   string
}

// Known analytics tools. Read only.
var analyticsPatterns = []analyticsPattern{
	{"googletagmanager", "Google Tag Manager"},
	{"analytics.js", "Google Analytics"},
	{"gtag/js", "Google Analytics (gtag)"},
	{"mc.yandex", "Yandex Metrika"},
	{"metrika", "Yandex Metrika"},
}

// detectAnalytics scans every script's src and inline body and returns the
// sorted set of tools found.
func detectAnalytics(doc Document) []string {
	found := make(map[string]struct{})
	for _, script := range doc.FindAll("script") {
		haystack := strings.ToLower(script.Attr("src").OrElse("") + " " + script.Text())
		for _, p := range analyticsPatterns {
			if strings.Contains(haystack, p.needle) {
				found[p.tool] = struct{}{}
			}
		}
	}

	tools := make([]string, 0, len(found))
	for tool := range found {
		tools = append(tools, tool)
	}
	sort.Strings(tools)
	return tools
}
