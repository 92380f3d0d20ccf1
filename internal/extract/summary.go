package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// CurrencySymbol is the currency every prompt asks the model to price in.
const CurrencySymbol = "₹"

const (
	costContextRunes = 500
	tailWords        = 200
	maxSummaryRows   = 5
)

var (
	summaryHeadingRe = regexp.MustCompile(`(?i)##\s*(?:Trip\s*)?Summary`)
	costBlockRe      = regexp.MustCompile(`(?i)(?:Total|Estimated)\s*(?:Cost|Budget)`)
	currencyTokenRe  = regexp.MustCompile(regexp.QuoteMeta(CurrencySymbol) + `[\d,]+`)
	wordRe           = regexp.MustCompile(`\S+`)
	paragraphBreakRe = regexp.MustCompile(`\n[ \t\r]*\n`)
	listMarkerRe     = regexp.MustCompile(`^[*-]\s*`)
)

// summaryStrategy returns a cost block, or false when it found nothing.
type summaryStrategy func(text string) (string, bool)

var summaryStrategies = []summaryStrategy{
	summarySection,
	costBlock,
}

// ExtractSummary returns the block of text that best summarises trip costs.
// It never returns an empty string.
func ExtractSummary(text string) string {
	for _, s := range summaryStrategies {
		if block, ok := s(text); ok {
			return block
		}
	}
	return currencyTail(text)
}

// summarySection captures a "## Summary" or "## Trip Summary" section up to
// the next heading marker.
func summarySection(text string) (string, bool) {
	loc := summaryHeadingRe.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	end := len(text)
	if i := strings.Index(text[loc[1]:], "##"); i >= 0 {
		end = loc[1] + i
	}
	return text[loc[0]:end], true
}

// costBlock captures a "Total Cost" / "Estimated Budget" phrase and the text
// that follows it.
func costBlock(text string) (string, bool) {
	loc := costBlockRe.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	end := loc[1]
	for n := 0; n < costContextRunes && end < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[end:])
		end += size
	}
	return text[loc[0]:end], true
}

// currencyTail looks only at the last 200 words. The paragraph with the most
// currency amounts wins; without any amounts the whole tail is used.
func currencyTail(text string) string {
	tail := lastWords(text, tailWords)
	if !currencyTokenRe.MatchString(tail) {
		return "## Summary\n\n" + tail
	}

	paragraphs := paragraphBreakRe.Split(tail, -1)
	best := paragraphs[len(paragraphs)-1]
	maxCount := 0
	for _, para := range paragraphs {
		if n := len(currencyTokenRe.FindAllStringIndex(para, -1)); n > maxCount {
			maxCount = n
			best = para
		}
	}
	return "## Summary\n\n" + strings.TrimSpace(best)
}

// lastWords returns text from the start of its n-th last word, keeping the
// original line structure.
func lastWords(text string, n int) string {
	words := wordRe.FindAllStringIndex(text, -1)
	if len(words) == 0 {
		return ""
	}
	start := words[0][0]
	if len(words) > n {
		start = words[len(words)-n][0]
	}
	return strings.TrimSpace(text[start:])
}

// SummaryRow is one rendered cost line: either a Label/Value pair or free Text.
type SummaryRow struct {
	Label string `json:"label,omitempty"`
	Value string `json:"value,omitempty"`
	Text  string `json:"text,omitempty"`
}

// SummaryRows keeps the first five lines of block that mention an amount and
// splits "Label: Value" lines into pairs.
func SummaryRows(block string) []SummaryRow {
	lines := lo.Filter(strings.Split(block, "\n"), func(line string, _ int) bool {
		return strings.TrimSpace(line) != "" && strings.Contains(line, CurrencySymbol)
	})
	if len(lines) > maxSummaryRows {
		lines = lines[:maxSummaryRows]
	}

	return lo.Map(lines, func(line string, _ int) SummaryRow {
		clean := listMarkerRe.ReplaceAllString(strings.TrimSpace(line), "")
		clean = strings.TrimSpace(strings.ReplaceAll(clean, "**", ""))
		parts := strings.Split(clean, ":")
		if len(parts) == 2 {
			return SummaryRow{Label: strings.TrimSpace(parts[0]), Value: strings.TrimSpace(parts[1])}
		}
		return SummaryRow{Text: clean}
	})
}
