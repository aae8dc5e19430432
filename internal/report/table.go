// Package report renders a user's loan history with the reconciliation
// flags highlighted, for terminal display and CSV export.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/credditor/credditor/internal/models"
	"github.com/credditor/credditor/internal/recon"
)

var (
	warnCell   = color.New(color.FgYellow).SprintFunc()
	paidCell   = color.New(color.FgGreen, color.Bold).SprintFunc()
	unpaidCell = color.New(color.FgRed, color.Bold).SprintFunc()
	selfCell   = color.New(color.FgBlue, color.Bold).SprintFunc()
)

// Flag markers shown next to highlighted cells so the legend can explain
// them.
const (
	markBorrowAmount = 1
	markBorrowDate   = 2
	markRepayDate    = 3
)

// WriteTable renders the loan history table with a legend. Cells touched by
// a reconciliation flag are highlighted and suffixed with |n referencing the
// legend entry.
func WriteTable(out io.Writer, data models.UserData) error {
	fmt.Fprintln(out, "Fields in yellow are warnings. The number after the | marks the corresponding note.")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  [%d] Borrow Amount: the requested amount does not match the actual borrow amount.\n", markBorrowAmount)
	fmt.Fprintf(out, "  [%d] Borrow Date: the post date does not match the borrowed date.\n", markBorrowDate)
	fmt.Fprintf(out, "  [%d] Repay Date: the loan was repaid after the requested repay date.\n", markRepayDate)
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tLENDER\tBORROWER\tCUR\tAMT\tREPAID\tBORROW DT\tREPAY DT\tREQ DT\tREQ AMT\tRQ REPAY AMT\tRQ REPAY DT\tINST\tLINK")

	for _, loan := range data.LoanHistory {
		flags := recon.Check(loan)

		status := paidCell("Paid")
		if loan.RepaidDate == nil {
			status = unpaidCell("Unpaid")
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			status,
			highlightUser(loan.Lender, data.Username),
			highlightUser(loan.Borrower, data.Username),
			loan.CurrencyCode,
			warnIf(fmtAmount(loan.BorrowAmount), flags.BorrowAmountMismatch, markBorrowAmount),
			fmtAmount(loan.RepaidAmount),
			warnIf(fmtDate(loan.BorrowDate), flags.BorrowDateMismatch, markBorrowDate),
			warnIf(fmtOptDate(loan.RepaidDate), flags.LateRepayment, markRepayDate),
			warnIf(fmtDate(loan.Request.CreatedAt), flags.BorrowDateMismatch, markBorrowDate),
			warnIf(fmtOptAmount(loan.Request.BorrowAmount), flags.BorrowAmountMismatch, markBorrowAmount),
			fmtOptAmount(loan.Request.RepayAmount),
			warnIf(fmtOptDate(loan.Request.RepayDate), flags.LateRepayment, markRepayDate),
			fmtInstallments(loan.Request.RepayInstallments),
			loan.Request.Permalink,
		)
	}

	return w.Flush()
}

func highlightUser(username, inspected string) string {
	if strings.EqualFold(username, inspected) {
		return selfCell(username)
	}
	return username
}

func warnIf(value string, flagged bool, mark int) string {
	if flagged {
		return warnCell(fmt.Sprintf("%s|%d", value, mark))
	}
	return value
}

func fmtAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func fmtOptAmount(d *decimal.Decimal) string {
	if d == nil {
		return "?"
	}
	return d.StringFixed(2)
}

func fmtDate(t time.Time) string {
	if t.IsZero() {
		return "?"
	}
	return t.Format("2006-01-02")
}

func fmtOptDate(t *time.Time) string {
	if t == nil {
		return "?"
	}
	return t.Format("2006-01-02")
}

func fmtInstallments(installments []models.Installment) string {
	if len(installments) == 0 {
		return "?"
	}
	return fmt.Sprintf("%d", len(installments))
}
