// Package redditloans is a client for the redditloans.com loan ledger API,
// the authoritative record of what was lent and repaid.
package redditloans

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://redditloans.com/api"

// Client talks to the loans API over plain HTTP. Safe for concurrent use.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client against the production API.
func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Loan is one detailed ledger record with amounts converted from minor
// units into ledger units.
type Loan struct {
	ID           int64
	Lender       string
	Borrower     string
	CurrencyCode string
	BorrowAmount decimal.Decimal
	RepaidAmount decimal.Decimal
	BorrowDate   time.Time
	RepaidDate   *time.Time

	// Permalink of the submission that created the loan, from the ledger's
	// creation event.
	CreationPermalink string
}

type loanDetailResponse struct {
	Basic struct {
		Lender                  string `json:"lender"`
		Borrower                string `json:"borrower"`
		CurrencyCode            string `json:"currency_code"`
		CurrencyExponent        int32  `json:"currency_exponent"`
		PrincipalMinor          int64  `json:"principal_minor"`
		PrincipalRepaymentMinor int64  `json:"principal_repayment_minor"`
		CreatedAt               int64  `json:"created_at"`
		RepaidAt                *int64 `json:"repaid_at"`
	} `json:"basic"`
	Events []struct {
		EventType         string `json:"event_type"`
		CreationPermalink string `json:"creation_permalink"`
	} `json:"events"`
}

// LoanIDs returns every loan id where the user appears as lender or
// borrower.
func (c *Client) LoanIDs(ctx context.Context, username string) ([]int64, error) {
	var ids []int64
	for _, role := range []string{"lender_name", "borrower_name"} {
		u := fmt.Sprintf("%s/loans?%s=%s", c.BaseURL, role, url.QueryEscape(username))
		var roleIDs []int64
		if err := c.getJSON(ctx, u, &roleIDs); err != nil {
			return nil, errors.Wrapf(err, "fetch loan ids (%s)", role)
		}
		ids = append(ids, roleIDs...)
	}
	return ids, nil
}

// LoanDetailed fetches one loan's full ledger record.
func (c *Client) LoanDetailed(ctx context.Context, id int64) (Loan, error) {
	var raw loanDetailResponse
	u := fmt.Sprintf("%s/loans/%d/detailed", c.BaseURL, id)
	if err := c.getJSON(ctx, u, &raw); err != nil {
		return Loan{}, errors.Wrapf(err, "fetch loan %d", id)
	}

	loan := Loan{
		ID:           id,
		Lender:       raw.Basic.Lender,
		Borrower:     raw.Basic.Borrower,
		CurrencyCode: raw.Basic.CurrencyCode,
		// Minor units with a currency exponent, e.g. 50000 cents with
		// exponent 2 is 500.00.
		BorrowAmount: decimal.New(raw.Basic.PrincipalMinor, -raw.Basic.CurrencyExponent),
		RepaidAmount: decimal.New(raw.Basic.PrincipalRepaymentMinor, -raw.Basic.CurrencyExponent),
		BorrowDate:   dayOfUnix(raw.Basic.CreatedAt),
	}
	if raw.Basic.RepaidAt != nil {
		d := dayOfUnix(*raw.Basic.RepaidAt)
		loan.RepaidDate = &d
	}

	for _, event := range raw.Events {
		if event.EventType == "creation" {
			loan.CreationPermalink = event.CreationPermalink
			break
		}
	}
	if loan.CreationPermalink == "" {
		return Loan{}, errors.Errorf("loan %d has no creation event", id)
	}

	return loan, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func dayOfUnix(ts int64) time.Time {
	y, m, d := time.Unix(ts, 0).UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
