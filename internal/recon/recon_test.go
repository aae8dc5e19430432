package recon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/credditor/credditor/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCheckMismatches(t *testing.T) {
	repaid := date(2024, time.March, 20)
	loan := models.UserLoan{
		Lender:       "lender",
		Borrower:     "borrower",
		BorrowAmount: decimal.RequireFromString("450"),
		RepaidAmount: decimal.RequireFromString("550"),
		BorrowDate:   date(2024, time.March, 1),
		RepaidDate:   &repaid,
		Request: models.LoanRequest{
			CreatedAt:    date(2024, time.March, 1),
			BorrowAmount: dec("500"),
			RepayAmount:  dec("550"),
			RepayDate:    timePtr(date(2024, time.March, 15)),
		},
	}

	f := Check(loan)
	if !f.BorrowAmountMismatch {
		t.Error("expected borrow amount mismatch (ask 500 vs ledger 450)")
	}
	if !f.LateRepayment {
		t.Error("expected late repayment (asked 3/15, repaid 3/20)")
	}
	if f.BorrowDateMismatch {
		t.Error("unexpected borrow date mismatch")
	}
	if !f.Any() {
		t.Error("Any should be true")
	}
}

func TestCheckCleanLoan(t *testing.T) {
	repaid := date(2024, time.March, 15)
	loan := models.UserLoan{
		BorrowAmount: decimal.RequireFromString("500"),
		BorrowDate:   date(2024, time.March, 1),
		RepaidDate:   &repaid,
		Request: models.LoanRequest{
			CreatedAt:    date(2024, time.March, 1),
			BorrowAmount: dec("500"),
			RepayDate:    timePtr(date(2024, time.March, 15)),
		},
	}

	if f := Check(loan); f.Any() {
		t.Errorf("expected no flags, got %+v", f)
	}
}

func TestCheckBorrowDateMismatch(t *testing.T) {
	loan := models.UserLoan{
		BorrowAmount: decimal.RequireFromString("500"),
		BorrowDate:   date(2024, time.March, 3),
		Request: models.LoanRequest{
			CreatedAt: date(2024, time.March, 1),
		},
	}

	f := Check(loan)
	if !f.BorrowDateMismatch {
		t.Error("expected borrow date mismatch")
	}
}

func TestCheckAbsentAskNeverFlagsAmount(t *testing.T) {
	// An unextractable ask must not be conflated with a zero ask.
	loan := models.UserLoan{
		BorrowAmount: decimal.RequireFromString("500"),
		BorrowDate:   date(2024, time.March, 1),
		Request: models.LoanRequest{
			CreatedAt: date(2024, time.March, 1),
		},
	}

	f := Check(loan)
	if f.BorrowAmountMismatch {
		t.Error("absent ask amount must not flag")
	}
	if f.LateRepayment {
		t.Error("absent ask repay date must not flag")
	}
}

func TestCheckUnknownPostDateNeverFlags(t *testing.T) {
	// Ledger-only record: the request post was deleted or unfetchable, so
	// CreatedAt is the zero time. That is an unknown, not a mismatch.
	loan := models.UserLoan{
		BorrowAmount: decimal.RequireFromString("500"),
		BorrowDate:   date(2024, time.March, 1),
		Request:      models.LoanRequest{},
	}

	if f := Check(loan); f.BorrowDateMismatch {
		t.Error("unknown post date must not flag a borrow date mismatch")
	}
}

func TestCheckUnpaidLoanNeverLate(t *testing.T) {
	loan := models.UserLoan{
		BorrowAmount: decimal.RequireFromString("500"),
		BorrowDate:   date(2024, time.March, 1),
		RepaidDate:   nil,
		Request: models.LoanRequest{
			CreatedAt: date(2024, time.March, 1),
			RepayDate: timePtr(date(2024, time.March, 15)),
		},
	}

	if f := Check(loan); f.LateRepayment {
		t.Error("unpaid loan must not flag late repayment")
	}
}

func TestCheckAmountScaleInsensitive(t *testing.T) {
	// 500 and 500.00 are the same money; decimal comparison must not flag.
	loan := models.UserLoan{
		BorrowAmount: decimal.RequireFromString("500.00"),
		BorrowDate:   date(2024, time.March, 1),
		Request: models.LoanRequest{
			CreatedAt:    date(2024, time.March, 1),
			BorrowAmount: dec("500"),
		},
	}

	if f := Check(loan); f.BorrowAmountMismatch {
		t.Error("500 vs 500.00 must not flag")
	}
}

func timePtr(t time.Time) *time.Time { return &t }
