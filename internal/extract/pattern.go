package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/credditor/credditor/internal/dateparse"
)

// PatternExtractor recovers loan terms with structural patterns over the
// title text. It is the default strategy: fast, deterministic, offline.
type PatternExtractor struct{}

var (
	// Borrow amount: the tag closer "]" followed by a parenthesized
	// monetary group, e.g. "[REQ] ($500)".
	borrowPattern = regexp.MustCompile(`\]\s*\(([^)]*)\)`)

	// Repay terms: a parenthesized group opening with the word "repay",
	// e.g. "(repay $550 by 3/15)". The capture runs to the first closing
	// paren.
	repayPattern = regexp.MustCompile(`(?i)\(\s*repay\b([^)]*)`)

	// Separator between the repay amount prefix and the trailing date. The
	// comma form requires trailing whitespace so thousands separators in
	// the amount ("$1,300") are not split.
	repaySeparator = regexp.MustCompile(`(?i)\s*(?:\bby\b|\bon\b|,\s|\()\s*`)
)

func (e *PatternExtractor) Name() string { return string(StrategyPattern) }

// Extract applies the borrow and repay patterns to the title. A pattern that
// does not match leaves its fields absent; anything unexpected is recovered
// and surfaced as a warning so one bad title cannot take down a batch.
func (e *PatternExtractor) Extract(_ context.Context, title string, postDate time.Time) (res Result, warnings []string) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			warnings = append(warnings, fmt.Sprintf("pattern extraction panicked on %q: %v", title, r))
		}
	}()

	if m := borrowPattern.FindStringSubmatch(title); m != nil {
		amt, err := NormalizeAmount(m[1])
		switch {
		case err == nil:
			res.BorrowAmount = &amt
		case errors.Is(err, ErrNoDigits):
			// Not a monetary group, e.g. "[REQ] (Denver, CO)". Leave absent.
		default:
			warnings = append(warnings, fmt.Sprintf("borrow amount %q: %v", m[1], err))
		}
	}

	if m := repayPattern.FindStringSubmatch(title); m != nil {
		amountPart, datePart := splitRepayClause(m[1])

		if amountPart != "" {
			amt, err := NormalizeAmount(amountPart)
			switch {
			case err == nil:
				res.RepayAmount = &amt
			case errors.Is(err, ErrNoDigits):
			default:
				warnings = append(warnings, fmt.Sprintf("repay amount %q: %v", amountPart, err))
			}
		}

		if datePart != "" {
			if d, ok := dateparse.Parse(datePart, postDate); ok {
				res.RepayDate = &d
			}
		}
	}

	return res, warnings
}

// splitRepayClause divides the text after "repay" into an amount prefix and
// a trailing date. With no separator present the clause is a single token:
// a date like "3/15" would survive amount normalization as garbage ("315"),
// so the date interpretation is tried first.
func splitRepayClause(clause string) (amountPart, datePart string) {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return "", ""
	}

	if loc := repaySeparator.FindStringIndex(clause); loc != nil {
		return strings.TrimSpace(clause[:loc[0]]), strings.TrimSpace(clause[loc[1]:])
	}

	if _, ok := dateparse.ParsePartial(clause); ok {
		return "", clause
	}
	return clause, ""
}
