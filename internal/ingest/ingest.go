// Package ingest assembles a full user snapshot: Reddit profile and
// activity, ledger loan history, and the extracted request terms for every
// loan. Extraction is isolated per loan; one unparseable post title never
// blocks the rest of the batch.
package ingest

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"github.com/credditor/credditor/internal/extract"
	"github.com/credditor/credditor/internal/models"
	"github.com/credditor/credditor/internal/reddit"
	"github.com/credditor/credditor/internal/redditloans"
)

// Default activity window and comment fetch size.
const (
	DefaultActivityDaysBack = 120
	DefaultCommentLimit     = 200
)

// RedditClient is the slice of the Reddit API the loader needs.
type RedditClient interface {
	UserAbout(ctx context.Context, username string) (reddit.User, error)
	Comments(ctx context.Context, username string, limit int) ([]models.Comment, error)
	Submission(ctx context.Context, postID string) (reddit.Submission, error)
	InUSL(ctx context.Context, username string) (bool, error)
}

// LoansClient is the slice of the ledger API the loader needs.
type LoansClient interface {
	LoanIDs(ctx context.Context, username string) ([]int64, error)
	LoanDetailed(ctx context.Context, id int64) (redditloans.Loan, error)
}

// Loader runs one ingestion pass per user.
type Loader struct {
	Reddit    RedditClient
	Loans     LoansClient
	Extractor extract.Extractor

	ActivityDaysBack int
	CommentLimit     int

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

var permalinkPostID = regexp.MustCompile(`https://www\.reddit\.com/comments/([^/]+)`)

// LoadUser builds a fresh UserData snapshot. The returned warnings describe
// every loan whose request details could not be fully recovered; the
// snapshot itself still carries the ledger-truth fields for those loans.
func (l *Loader) LoadUser(ctx context.Context, username string) (models.UserData, []string, error) {
	runID := uuid.NewString()
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	daysBack := l.ActivityDaysBack
	if daysBack <= 0 {
		daysBack = DefaultActivityDaysBack
	}
	commentLimit := l.CommentLimit
	if commentLimit <= 0 {
		commentLimit = DefaultCommentLimit
	}

	log.Infof("[Ingest] run=%s loading user %q", runID, username)

	user, err := l.Reddit.UserAbout(ctx, username)
	if err != nil {
		return models.UserData{}, nil, err
	}

	inUSL, err := l.Reddit.InUSL(ctx, user.Name)
	if err != nil {
		return models.UserData{}, nil, err
	}

	comments, err := l.Reddit.Comments(ctx, user.Name, commentLimit)
	if err != nil {
		return models.UserData{}, nil, err
	}
	floor := models.Day(now().AddDate(0, 0, -daysBack))
	recent := comments[:0]
	for _, c := range comments {
		if !c.CreatedAt.Before(floor) {
			recent = append(recent, c)
		}
	}

	ids, err := l.Loans.LoanIDs(ctx, user.Name)
	if err != nil {
		return models.UserData{}, nil, err
	}
	log.Infof("[Ingest] run=%s found %d loans for %q", runID, len(ids), user.Name)

	var warnings []string
	history := make([]models.UserLoan, 0, len(ids))
	for _, id := range ids {
		loan, warns := l.loadLoan(ctx, runID, user.Name, id)
		warnings = append(warnings, warns...)
		if loan != nil {
			history = append(history, *loan)
		}
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].BorrowDate.Before(history[j].BorrowDate)
	})

	return models.UserData{
		Username:     user.Name,
		CreatedAt:    user.CreatedAt,
		TotalKarma:   user.TotalKarma,
		CommentKarma: user.CommentKarma,
		Comments:     recent,
		LoanHistory:  history,
		InUSL:        inUSL,
		LastLoad:     now(),
	}, warnings, nil
}

// loadLoan fetches one ledger record and attaches the extracted request
// terms. Returns nil when the ledger record itself is unavailable; request
// extraction failures degrade to a ledger-only record.
func (l *Loader) loadLoan(ctx context.Context, runID, username string, id int64) (loan *models.UserLoan, warnings []string) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[Ingest] run=%s panic on loan %d: %v", runID, id, r)
			loan = nil
			warnings = append(warnings, fmt.Sprintf("loan %d: %v", id, r))
		}
	}()

	ledger, err := l.Loans.LoanDetailed(ctx, id)
	if err != nil {
		log.Errorf("[Ingest] run=%s loan %d: %v", runID, id, err)
		return nil, []string{fmt.Sprintf("loan %d: %v", id, err)}
	}

	result := models.UserLoan{
		Lender:       ledger.Lender,
		Borrower:     ledger.Borrower,
		CurrencyCode: ledger.CurrencyCode,
		BorrowAmount: ledger.BorrowAmount,
		RepaidAmount: ledger.RepaidAmount,
		BorrowDate:   ledger.BorrowDate,
		RepaidDate:   ledger.RepaidDate,
		IsBorrower:   strings.EqualFold(username, ledger.Borrower),
		Request: models.LoanRequest{
			Permalink: ledger.CreationPermalink,
		},
	}

	m := permalinkPostID.FindStringSubmatch(ledger.CreationPermalink)
	if m == nil {
		warnings = append(warnings, fmt.Sprintf("loan %d: unrecognized permalink %q", id, ledger.CreationPermalink))
		return &result, warnings
	}
	result.Request.PostID = m[1]

	post, err := l.Reddit.Submission(ctx, result.Request.PostID)
	if err != nil {
		log.Warnf("[Ingest] run=%s loan %d: %v", runID, id, err)
		warnings = append(warnings, fmt.Sprintf("loan %d: %v", id, err))
		return &result, warnings
	}
	result.Request.CreatedAt = post.CreatedAt

	extracted, warns := l.Extractor.Extract(ctx, post.Title, post.CreatedAt)
	for _, w := range warns {
		log.Warnf("[Ingest] run=%s loan %d (%s): %s", runID, id, l.Extractor.Name(), w)
		warnings = append(warnings, fmt.Sprintf("loan %d: %s", id, w))
	}
	result.Request.BorrowAmount = extracted.BorrowAmount
	result.Request.RepayAmount = extracted.RepayAmount
	result.Request.RepayDate = extracted.RepayDate
	result.Request.RepayInstallments = extracted.Installments
	result.Request.PaymentTypes = extracted.PaymentTypes

	return &result, warnings
}
