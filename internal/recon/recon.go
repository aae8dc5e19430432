// Package recon compares the terms a borrower asked for against the ledger
// record of what actually happened.
package recon

import "github.com/credditor/credditor/internal/models"

// Flags marks the discrepancies between a loan request and its ledger
// record. Each flag is independent. Flags are derived on every render and
// never persisted.
type Flags struct {
	// The post date differs from the ledger borrow date: the loan was not
	// funded the day it was requested.
	BorrowDateMismatch bool `json:"borrowDateMismatch"`

	// The requested amount differs from what was actually lent. Only
	// meaningful when the request amount could be extracted; an absent ask
	// never flags.
	BorrowAmountMismatch bool `json:"borrowAmountMismatch"`

	// The loan was repaid after the date the borrower proposed.
	LateRepayment bool `json:"lateRepayment"`
}

// Check computes the discrepancy flags for one loan. Pure: no I/O, no
// mutation.
func Check(loan models.UserLoan) Flags {
	var f Flags

	// A zero CreatedAt means the request post could not be fetched; an
	// unknown post date must not flag, like an absent ask amount.
	if !loan.Request.CreatedAt.IsZero() {
		f.BorrowDateMismatch = !models.Day(loan.Request.CreatedAt).Equal(models.Day(loan.BorrowDate))
	}

	if loan.Request.BorrowAmount != nil {
		f.BorrowAmountMismatch = !loan.Request.BorrowAmount.Equal(loan.BorrowAmount)
	}

	if loan.Request.RepayDate != nil && loan.RepaidDate != nil {
		f.LateRepayment = loan.Request.RepayDate.Before(*loan.RepaidDate)
	}

	return f
}

// Any reports whether at least one flag is raised.
func (f Flags) Any() bool {
	return f.BorrowDateMismatch || f.BorrowAmountMismatch || f.LateRepayment
}
