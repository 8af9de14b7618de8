package intent

import "strings"

const (
	// lengthBonus is added per occurrence when the normalized keyword is
	// longer than lengthBonusThreshold runes.
	lengthBonus          = 0.5
	lengthBonusThreshold = 5

	// primaryMultiplier doubles the full contribution (bonus included) of
	// primary-language keywords.
	primaryMultiplier = 2.0

	// QuoteOverPriceRatio is the floor of the quote-over-price override: when
	// the quote category scored above zero and reached at least this fraction
	// of the price score, quote wins even if price scored higher. The value
	// is an empirically chosen constant; keep it in sync with the dashboards
	// that document the rule.
	QuoteOverPriceRatio = 0.5
)

// compiledKeyword is a precompiled table entry: normalized text plus the full
// per-occurrence weight.
type compiledKeyword struct {
	text   string
	weight float64
}

// Classifier scores normalized message text against the per-category keyword
// table. The table is compiled once at construction; classification itself is
// pure and deterministic.
type Classifier struct {
	table        map[Category][]compiledKeyword
	confirmation []string
}

// NewClassifier compiles the keyword table into its matching form.
func NewClassifier() *Classifier {
	c := &Classifier{
		table:        make(map[Category][]compiledKeyword, len(keywordTable)),
		confirmation: make([]string, 0, len(bookingConfirmations)),
	}
	for category, keywords := range keywordTable {
		compiled := make([]compiledKeyword, 0, len(keywords))
		for _, k := range keywords {
			compiled = append(compiled, compileKeyword(k))
		}
		c.table[category] = compiled
	}
	for _, k := range bookingConfirmations {
		c.confirmation = append(c.confirmation, Normalize(k.text))
	}
	return c
}

func compileKeyword(k keyword) compiledKeyword {
	normalized := Normalize(k.text)
	weight := 1.0
	if len([]rune(normalized)) > lengthBonusThreshold {
		weight += lengthBonus
	}
	if k.primary {
		weight *= primaryMultiplier
	}
	return compiledKeyword{text: normalized, weight: weight}
}

// Classify returns the intent category for the ordered set of user-authored
// message texts. All-zero scores yield CategoryOther.
func (c *Classifier) Classify(userTexts []string) Category {
	scores := c.score(userTexts)

	best := CategoryOther
	bestScore := 0.0
	for _, category := range Categories {
		if scores[category] > bestScore {
			best = category
			bestScore = scores[category]
		}
	}

	// Quote requests routinely mention prices, which drags them into the
	// price bucket; when price wins, a non-trivial quote score overrides.
	// The rule is scoped to that one competition and never unseats any
	// other winning category.
	if best == CategoryPrice {
		quoteScore := scores[CategoryQuote]
		if quoteScore > 0 && quoteScore >= bestScore*QuoteOverPriceRatio {
			return CategoryQuote
		}
	}

	if bestScore == 0 {
		return CategoryOther
	}
	return best
}

// score computes the per-category scores for the normalized concatenation of
// userTexts. Exact substring matching, 1 point per occurrence, weighted per
// compiled keyword.
func (c *Classifier) score(userTexts []string) map[Category]float64 {
	text := Normalize(strings.Join(userTexts, "\n"))

	scores := make(map[Category]float64, len(c.table))
	for category, keywords := range c.table {
		total := 0.0
		for _, k := range keywords {
			if n := strings.Count(text, k.text); n > 0 {
				total += float64(n) * k.weight
			}
		}
		scores[category] = total
	}
	return scores
}

// ConfirmsBooking reports whether any of the assistant texts contains
// booking-confirmation vocabulary.
func (c *Classifier) ConfirmsBooking(assistantTexts []string) bool {
	text := Normalize(strings.Join(assistantTexts, "\n"))
	for _, confirmation := range c.confirmation {
		if strings.Contains(text, confirmation) {
			return true
		}
	}
	return false
}
