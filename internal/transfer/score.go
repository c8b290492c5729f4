package transfer

import (
	"sort"
	"strings"
	"unicode"

	"github.com/ledgerlink-dev/ledgerlink/internal/model"
)

// Scoring constants. A direct same-day match always outranks a window match
// for an otherwise identical candidate.
const (
	directBase         = 0.99
	directPenaltyMax   = 0.04 // worst-case description dissimilarity
	windowBase         = 0.90
	windowDayPenalty   = 0.05 // per day of date distance
	windowKeywordBonus = 0.04
)

// scoreCandidate applies the match rules in priority order and fills in
// method and score. It returns false when the candidate fails every rule.
func scoreCandidate(c *candidate, opts Options) bool {
	diff := c.debit.AbsAmount().Sub(c.credit.AbsAmount()).Abs()
	if diff.GreaterThan(opts.AmountTolerance) {
		return false
	}

	gap := daysApart(c.debit.Date, c.credit.Date)
	switch {
	case gap == 0:
		affinity := descriptionAffinity(c.debit.Description, c.credit.Description)
		c.method = model.MethodDirectSameDay
		c.score = directBase - directPenaltyMax*(1-affinity)
	case gap <= opts.WindowDays:
		c.method = model.MethodWindowInterac
		c.score = windowBase - windowDayPenalty*float64(gap)
		if hasKeyword(c.debit.Description, opts.TransferKeywords) &&
			hasKeyword(c.credit.Description, opts.TransferKeywords) {
			c.score += windowKeywordBonus
		}
	default:
		return false
	}

	c.score = clamp01(c.score)
	return true
}

// attributeFees finds small same-account fee charges posted within a day of
// the debit side of a keyword transfer and records their ids on the
// candidate. Advisory only; fee ids never move the score.
func attributeFees(c *candidate, accountRecords []model.TransactionRecord, opts Options) {
	if !hasKeyword(c.debit.Description, opts.TransferKeywords) &&
		!hasKeyword(c.credit.Description, opts.TransferKeywords) {
		return
	}

	var ids []string
	for i := range accountRecords {
		rec := &accountRecords[i]
		if rec.ID == c.debit.ID || !rec.Amount.IsNegative() {
			continue
		}
		if rec.AbsAmount().GreaterThan(opts.FeeMaxAmount) {
			continue
		}
		if daysApart(rec.Date, c.debit.Date) > 1 {
			continue
		}
		if !hasKeyword(rec.Description, opts.FeeKeywords) {
			continue
		}
		ids = append(ids, rec.ID)
	}
	sort.Strings(ids)
	c.feeIDs = ids
}

// descriptionAffinity measures token-set overlap (Jaccard) between two
// descriptions in [0,1]. "E-TRANSFER OUT" vs "E-TRANSFER IN" lands at 0.5.
func descriptionAffinity(a, b string) float64 {
	sa, sb := tokenSet(a), tokenSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}

	shared := 0
	for t := range sb {
		if sa[t] {
			shared++
		}
	}
	union := len(sa) + len(sb) - shared
	return float64(shared) / float64(union)
}

// tokens splits s into uppercase word tokens in order; punctuation and
// whitespace separate tokens, so "E-TRANSFER" becomes ["E", "TRANSFER"].
func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToUpper(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range tokens(s) {
		set[t] = true
	}
	return set
}

// hasKeyword reports whether desc contains any keyword as whole word tokens.
// "FEE" does not match inside "COFFEE", and a multi-word keyword like
// "SERVICE CHARGE" must appear as a contiguous token run in order.
func hasKeyword(desc string, keywords []string) bool {
	dt := tokens(desc)
	for _, k := range keywords {
		if containsRun(dt, tokens(k)) {
			return true
		}
	}
	return false
}

func containsRun(haystack, needle []string) bool {
	if len(needle) == 0 {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
