package classify

import "regexp"

// Category is a semantic event class derived from the free-text label.
type Category uint8

// Categories are not mutually exclusive: an incomplete pass is both a pass
// failure and a general possession loss.
const (
	Pass Category = iota
	PassSuccessful
	PassFailed
	LostPossession
	WonPossession
	Shot
	Goal
	numCategories
)

var categoryNames = [numCategories]string{
	Pass:           "is_pass",
	PassSuccessful: "pass_successful",
	PassFailed:     "pass_failed",
	LostPossession: "lost_possession",
	WonPossession:  "won_possession",
	Shot:           "shot",
	Goal:           "goal",
}

func (c Category) String() string {
	if c < numCategories {
		return categoryNames[c]
	}
	return "unknown"
}

// Rule binds a category to the patterns that select it. A label belongs to
// the category when any pattern matches the folded label.
type Rule struct {
	Category Category
	Patterns []*regexp.Regexp
}

// Keyword groups. Source exports are Spanish; English equivalents cover
// mixed-language providers. Patterns run against lower-cased, accent-free text.
var (
	passKeywords       = []string{"pase", "centro", "asistencia", "pass", "cross", "assist"}
	successfulKeywords = []string{
		"pase completo", "pase entre lineas", "pase filtrado", "centro completo", "asistencia",
		"completed pass", "through pass", "filtered pass", "completed cross", "assist",
	}
	failedKeywords = []string{
		"pase incompleto", "centro incompleto",
		"incomplete pass", "incomplete cross",
	}
	lostOnlyKeywords = []string{
		"balon aereo perdido", "duelo perdido", "regate fallido",
		"lost aerial duel", "lost duel", "failed dribble",
	}
	wonOnlyKeywords = []string{
		"balon aereo ganado", "duelo ganado", "tiro", "remate", "gol",
		"won aerial duel", "won duel", "shot", "goal",
	}
	shotKeywords = []string{"shot", "tiro", "remate"}
)

// DefaultRules is the rule table used when no custom table is configured.
var DefaultRules = []Rule{
	{Category: Pass, Patterns: substrings(passKeywords...)},
	{Category: PassSuccessful, Patterns: substrings(successfulKeywords...)},
	{Category: PassFailed, Patterns: substrings(failedKeywords...)},
	{Category: LostPossession, Patterns: substrings(concat(failedKeywords, lostOnlyKeywords)...)},
	{Category: WonPossession, Patterns: substrings(concat(successfulKeywords, wonOnlyKeywords)...)},
	{Category: Shot, Patterns: substrings(shotKeywords...)},
	{Category: Goal, Patterns: []*regexp.Regexp{regexp.MustCompile(`\b(?:goal|gol)\b`)}},
}

// substrings compiles literal keywords into plain substring patterns.
func substrings(keywords ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(keywords))
	for i, k := range keywords {
		out[i] = regexp.MustCompile(regexp.QuoteMeta(k))
	}
	return out
}

func concat(groups ...[]string) []string {
	var out []string
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
