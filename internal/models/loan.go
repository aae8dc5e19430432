package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanRequest holds the terms a borrower asked for in their original post.
// Extraction from post titles is best-effort, so every parsed field is
// optional; a nil pointer means "could not be extracted", which is distinct
// from a parsed zero.
type LoanRequest struct {
	CreatedAt time.Time
	Permalink string
	PostID    string

	BorrowAmount *decimal.Decimal
	RepayAmount  *decimal.Decimal
	RepayDate    *time.Time

	RepayInstallments []Installment
	PaymentTypes      []string
}

// Installment is one scheduled partial repayment from the request post.
type Installment struct {
	RepayAmount *decimal.Decimal
	RepayDate   *time.Time
}

// UserLoan is the authoritative ledger record of a loan. RepaidDate is nil
// and RepaidAmount zero while the loan is outstanding; records where only
// one of the two holds are unusual but valid and flow through untouched.
type UserLoan struct {
	Lender       string
	Borrower     string
	CurrencyCode string

	BorrowAmount decimal.Decimal
	RepaidAmount decimal.Decimal
	BorrowDate   time.Time
	RepaidDate   *time.Time

	// True if the inspected user is the borrower on this loan.
	IsBorrower bool

	Request LoanRequest
}

// Comment is a single Reddit comment from the user's recent activity.
type Comment struct {
	ID        string
	Subreddit string
	CreatedAt time.Time
	Karma     int
}

// UserData is one ingestion snapshot for a user. A refresh replaces the
// whole record rather than mutating it.
type UserData struct {
	Username     string
	CreatedAt    time.Time
	TotalKarma   int
	CommentKarma int

	Comments    []Comment
	LoanHistory []UserLoan

	// True if the user appears in the universal scammer list.
	InUSL bool

	LastLoad time.Time
}

// Day truncates a time to midnight UTC so ledger dates and post dates
// compare at day granularity.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
