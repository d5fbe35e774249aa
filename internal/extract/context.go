package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// contextSentenceRadius controls how many sentences around the matched
	// one are kept as claim context.
	contextSentenceRadius = 1
	// contextMinChars is the threshold below which sentence-based context is
	// replaced by a fixed character window.
	contextMinChars = 50
	// contextCharWindow is the fallback window on each side of the match.
	contextCharWindow = 200
	// contextMaxChars caps the final context string.
	contextMaxChars = 500
)

type sentence struct {
	text  string
	start int
	end   int
}

var sentenceBoundaryRe = regexp.MustCompile(`[.!?]\s`)

// splitSentences slices text into sentences on .!? boundaries followed by
// whitespace, keeping byte offsets so a match position maps back to its
// sentence.
func splitSentences(text string) []sentence {
	var out []sentence
	start := 0
	for _, loc := range sentenceBoundaryRe.FindAllStringIndex(text, -1) {
		end := loc[0] + 1
		out = append(out, sentence{text: text[start:end], start: start, end: end})
		start = loc[1]
	}
	if start < len(text) {
		out = append(out, sentence{text: text[start:], start: start, end: len(text)})
	}
	return out
}

// claimContext derives the evidence context for a keyword match at pos:
// the containing sentence plus its neighbors, or a fixed character window
// when the sentences are too short to be informative.
func claimContext(text string, pos, matchLen int) string {
	sentences := splitSentences(text)
	idx := -1
	for i, s := range sentences {
		if pos >= s.start && pos < s.end {
			idx = i
			break
		}
	}

	var ctx string
	if idx >= 0 {
		lo := idx - contextSentenceRadius
		if lo < 0 {
			lo = 0
		}
		hi := idx + contextSentenceRadius
		if hi >= len(sentences) {
			hi = len(sentences) - 1
		}
		var b strings.Builder
		for i := lo; i <= hi; i++ {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strings.TrimSpace(sentences[i].text))
		}
		ctx = b.String()
	}

	if len(ctx) < contextMinChars {
		lo := pos - contextCharWindow
		if lo < 0 {
			lo = 0
		}
		hi := pos + matchLen + contextCharWindow
		if hi > len(text) {
			hi = len(text)
		}
		// Keep the window edges on rune boundaries.
		for lo > 0 && !utf8.RuneStart(text[lo]) {
			lo--
		}
		for hi < len(text) && !utf8.RuneStart(text[hi]) {
			hi++
		}
		ctx = text[lo:hi]
	}

	ctx = strings.TrimSpace(strings.ReplaceAll(ctx, "\n", " "))
	if len(ctx) > contextMaxChars {
		cut := contextMaxChars
		for cut > 0 && !utf8.RuneStart(ctx[cut]) {
			cut--
		}
		ctx = ctx[:cut]
	}
	return ctx
}

// Prioritized temporal patterns; the first match wins.
var targetYearPatterns = []*regexp.Regexp{
	regexp.MustCompile(`by\s+(20\d{2})`),
	regexp.MustCompile(`target\s+year[:\s]+(20\d{2})`),
	regexp.MustCompile(`achieve.*?(20\d{2})`),
	regexp.MustCompile(`reach.*?(20\d{2})`),
	regexp.MustCompile(`goal.*?(20\d{2})`),
}

const (
	targetYearMin = 2020
	targetYearMax = 2100
)

// targetYear extracts a claim's target year from its context, validated to
// the plausible [2020, 2100] range.
func targetYear(context string) *int {
	lower := strings.ToLower(context)
	for _, re := range targetYearPatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		year, ok := ParseNumber(m[1])
		if !ok {
			continue
		}
		y := int(year)
		if y >= targetYearMin && y <= targetYearMax {
			return &y
		}
	}
	return nil
}
