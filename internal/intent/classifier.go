// Package intent maps free-text questions to a query intent.
package intent

import (
	"regexp"
	"strings"

	"github.com/sandevgo/vidquery/internal/core"
)

// rules are evaluated top to bottom against the lower-cased question;
// the first match wins. Keep ordering changes deliberate: later stages
// assume the specific precedence below (e.g. price phrasing beats the
// definition and question-mark heuristics).
var rules = []struct {
	re     *regexp.Regexp
	intent core.QueryIntent
}{
	{regexp.MustCompile(`\b(list|show|name|enumerate)\b[^"]*\bchannels?\b|\bwhat\s+channels\b|\bwhich\s+channels\b`), core.IntentListChannels},
	{regexp.MustCompile(`\btranscripts?\b.*"[^"]+"`), core.IntentGetTranscript},
	{regexp.MustCompile(`\bsummar(y|ies|ize|ise|ized|ised)\b.*"[^"]+"`), core.IntentGetSummary},
	{regexp.MustCompile(`\b(is\s+there|do\s+(?:you|we)\s+have|does)\b.*\bchannel\b.*"[^"]+"`), core.IntentCheckChannelExists},
	{regexp.MustCompile(`\b(latest|recent|newest|new)\b.*\bchannel\b.*"[^"]+"`), core.IntentRecentChannelInfo},
	{regexp.MustCompile(`\b(latest|recent|newest)\b.*\b(videos?|episodes?|uploads?)\b`), core.IntentRecentVideoInfo},
	{regexp.MustCompile(`\b(price|prices|stock|stocks|invest|investment|investing|market\s+cap|ticker|shares?|crypto|bitcoin|etf)\b`), core.IntentRequiresExternalInfo},
	{regexp.MustCompile(`^\s*what\s+(is|are|does)\b`), core.IntentGenericSearch},
	{regexp.MustCompile(`\b(compare|comparison|versus|vs\.?|difference\s+between)\b`), core.IntentRequiresExternalInfo},
	{regexp.MustCompile(`\?\s*$`), core.IntentGenericSearch},
}

// Classify is pure, total and deterministic. Unmatched input degrades to
// the most general intent.
func Classify(question string) core.QueryIntent {
	q := strings.ToLower(strings.TrimSpace(question))
	for _, r := range rules {
		if r.re.MatchString(q) {
			return r.intent
		}
	}
	return core.IntentGenericSearch
}

var quotedRe = regexp.MustCompile(`"([^"]*)"`)

// QuotedTitle extracts the quoted span from a question. When several spans
// are present the last one wins; downstream lookups rely on exactly this
// behavior, so do not change it to first-match.
func QuotedTitle(question string) string {
	matches := quotedRe.FindAllStringSubmatch(question, -1)
	if len(matches) == 0 {
		return ""
	}
	return strings.TrimSpace(matches[len(matches)-1][1])
}
