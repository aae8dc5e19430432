// Package extract recovers the requested loan terms from a post title.
// Titles follow a loose template family like
//
//	[REQ] ($500) (repay $550 by 3/15) (Denver, CO) (PayPal)
//
// but authors improvise, so extraction is best-effort: every output field is
// optional and failures surface as warnings, never as hard errors.
package extract

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/credditor/credditor/internal/models"
)

// Result is the partial loan request recovered from a title. Nil pointers
// mean the field could not be extracted.
type Result struct {
	BorrowAmount *decimal.Decimal
	RepayAmount  *decimal.Decimal
	RepayDate    *time.Time
	Installments []models.Installment
	PaymentTypes []string
}

// Extractor is the shared contract for all extraction strategies. The
// returned warnings are the diagnostic side-channel for anything that was
// swallowed along the way; the Result is still usable when warnings are
// present.
type Extractor interface {
	Extract(ctx context.Context, title string, postDate time.Time) (Result, []string)
	Name() string
}

// Strategy selects an extraction implementation at the ingestion boundary.
type Strategy string

const (
	StrategyPattern    Strategy = "pattern"
	StrategyGenerative Strategy = "generative"
)

// New returns the extractor for the given strategy. The generative strategy
// needs a Completer; pass nil for pattern.
func New(strategy Strategy, completer Completer) (Extractor, error) {
	switch strategy {
	case StrategyPattern:
		return &PatternExtractor{}, nil
	case StrategyGenerative:
		if completer == nil {
			return nil, errors.New("generative strategy requires a completer")
		}
		return &GenerativeExtractor{Completer: completer}, nil
	default:
		return nil, errors.Errorf("unsupported extraction strategy: %q", strategy)
	}
}
