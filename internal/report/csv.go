package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/credditor/credditor/internal/models"
	"github.com/credditor/credditor/internal/recon"
)

// CSVWriter exports a user's loan history, one row per loan, with the
// reconciliation flags as explicit columns.
type CSVWriter struct {
	IncludeHeader bool
}

// WriteToFile writes the loan history to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, data models.UserData) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, data)
}

// Write writes the loan history in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, data models.UserData) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	if w.IncludeHeader {
		writer.Write([]string{"# Username", data.Username})
		writer.Write([]string{"# Total Karma", strconv.Itoa(data.TotalKarma)})
		writer.Write([]string{"# Comment Karma", strconv.Itoa(data.CommentKarma)})
		writer.Write([]string{"# In USL", strconv.FormatBool(data.InUSL)})
		if !data.LastLoad.IsZero() {
			writer.Write([]string{"# Last Load", data.LastLoad.Format("2006-01-02 15:04:05")})
		}
	}

	header := []string{
		"Status", "Lender", "Borrower", "Currency",
		"BorrowAmount", "RepaidAmount", "BorrowDate", "RepaidDate",
		"ReqDate", "ReqBorrowAmount", "ReqRepayAmount", "ReqRepayDate",
		"Installments", "Permalink",
		"FlagBorrowAmount", "FlagBorrowDate", "FlagLateRepayment",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, loan := range data.LoanHistory {
		flags := recon.Check(loan)

		status := "Paid"
		if loan.RepaidDate == nil {
			status = "Unpaid"
		}

		row := []string{
			status,
			loan.Lender,
			loan.Borrower,
			loan.CurrencyCode,
			fmtAmount(loan.BorrowAmount),
			fmtAmount(loan.RepaidAmount),
			fmtDate(loan.BorrowDate),
			fmtOptDate(loan.RepaidDate),
			fmtDate(loan.Request.CreatedAt),
			fmtOptAmount(loan.Request.BorrowAmount),
			fmtOptAmount(loan.Request.RepayAmount),
			fmtOptDate(loan.Request.RepayDate),
			fmtInstallments(loan.Request.RepayInstallments),
			loan.Request.Permalink,
			strconv.FormatBool(flags.BorrowAmountMismatch),
			strconv.FormatBool(flags.BorrowDateMismatch),
			strconv.FormatBool(flags.LateRepayment),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return nil
}
