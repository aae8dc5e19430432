package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/credditor/credditor/internal/models"
)

// extractSystemPrompt instructs the model to emit the structured extraction
// result as bare JSON. The user message carries the post date so the model
// can anchor year-less dates the same way the pattern strategy does.
const extractSystemPrompt = `You extract loan request details from Reddit post titles.

Input is a single line of the form "(Post Date: YYYY-MM-DD) <post title>".
The title describes a loan request: an amount to borrow and, usually, one or
more planned repayments.

Respond with a single JSON object and nothing else:

{
  "borrow_amount": 500.0,
  "repay_installments": [
    {"repay_amount": 550.0, "repay_date": "2024-03-15"}
  ],
  "payment_types": ["PayPal"]
}

Rules:
- "borrow_amount" is the requested principal, or null if the title does not state one.
- "repay_installments" lists every planned repayment. Use null for an unknown
  amount or date. Dates are "YYYY-MM-DD"; resolve missing years against the
  post date, preferring the nearest occurrence. Omit the array if the title
  plans no repayments.
- "payment_types" lists payment services named in the title (PayPal, Venmo,
  Zelle, Cash App, ...). Omit if none.
- Never invent values. Never wrap the JSON in markdown.`

// Completer is the minimal surface of a text-completion service. The real
// implementation talks to the Anthropic API; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ClaudeCompleter calls the Anthropic Messages API.
type ClaudeCompleter struct {
	client anthropic.Client
	model  string
}

// NewClaudeCompleter builds a Completer backed by the Anthropic API.
func NewClaudeCompleter(apiKey, model string) (*ClaudeCompleter, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic api key is not set")
	}
	if model == "" {
		model = "claude-3-5-haiku-latest"
	}
	return &ClaudeCompleter{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (c *ClaudeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   1024,
		Temperature: anthropic.Float(0),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "anthropic messages.new")
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return "", errors.New("empty completion response")
	}
	return text, nil
}

// GenerativeExtractor delegates extraction to a text-completion service. The
// service is untrusted: its output may be malformed, partial, or wrong, so
// everything is parsed defensively and failures degrade to an absent result.
type GenerativeExtractor struct {
	Completer Completer
}

// wireResult is the service's response shape. All fields are optional.
type wireResult struct {
	BorrowAmount      *float64 `json:"borrow_amount"`
	RepayInstallments []struct {
		RepayAmount *float64 `json:"repay_amount"`
		RepayDate   *string  `json:"repay_date"`
	} `json:"repay_installments"`
	PaymentTypes []string `json:"payment_types"`
}

func (e *GenerativeExtractor) Name() string { return string(StrategyGenerative) }

func (e *GenerativeExtractor) Extract(ctx context.Context, title string, postDate time.Time) (Result, []string) {
	query := fmt.Sprintf("(Post Date: %s) %s", postDate.Format("2006-01-02"), title)

	raw, err := e.Completer.Complete(ctx, extractSystemPrompt, query)
	if err != nil {
		log.Warnf("[Extract] completion failed for %q: %v", title, err)
		return Result{}, []string{fmt.Sprintf("completion failed: %v", err)}
	}

	wire, err := decodeWireResult(raw)
	if err != nil {
		log.Warnf("[Extract] bad completion for %q: %v (raw: %s)", title, err, raw)
		return Result{}, []string{fmt.Sprintf("bad completion response: %v", err)}
	}

	var res Result
	var warnings []string

	if wire.BorrowAmount != nil {
		amt := decimal.NewFromFloat(*wire.BorrowAmount)
		res.BorrowAmount = &amt
	}
	res.PaymentTypes = wire.PaymentTypes

	// Fold installments: repay amount is the sum of the known amounts, a
	// present zero when none carry one (or no repayments were planned at
	// all); repay date is the latest known date, absent when there is none.
	repaySum := decimal.Zero
	var repayMax *time.Time
	for _, inst := range wire.RepayInstallments {
		folded := models.Installment{}
		if inst.RepayAmount != nil {
			amt := decimal.NewFromFloat(*inst.RepayAmount)
			folded.RepayAmount = &amt
			repaySum = repaySum.Add(amt)
		}
		if inst.RepayDate != nil {
			d, err := time.Parse("2006-01-02", *inst.RepayDate)
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("unparseable installment date %q", *inst.RepayDate))
			} else {
				d = models.Day(d)
				folded.RepayDate = &d
				if repayMax == nil || d.After(*repayMax) {
					repayMax = &d
				}
			}
		}
		res.Installments = append(res.Installments, folded)
	}
	res.RepayAmount = &repaySum
	res.RepayDate = repayMax

	return res, warnings
}

// decodeWireResult pulls the JSON object out of the completion text. Models
// occasionally wrap output in prose or code fences despite instructions, so
// the outermost braces delimit what gets decoded.
func decodeWireResult(raw string) (wireResult, error) {
	var wire wireResult

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return wire, errors.New("no JSON object in response")
	}

	if err := json.Unmarshal([]byte(raw[start:end+1]), &wire); err != nil {
		return wire, errors.Wrap(err, "decode response")
	}
	return wire, nil
}
