package telegram

import (
	"context"
	"errors"
	"log"
	"strings"

	"spendlog/internal/domain/entry"
	"spendlog/internal/shared/messages"
	"spendlog/internal/shared/telemetry"
)

// Recorder stores quick expenses. entry.Service satisfies it.
type Recorder interface {
	SubmitQuickExpense(ctx context.Context, q entry.QuickExpense) (*entry.Expense, error)
}

// Replier turns incoming chat text into the reply the bot sends back.
type Replier struct {
	rec  Recorder
	msgs *messages.Messages
}

func NewReplier(rec Recorder, msgs *messages.Messages) *Replier {
	if msgs == nil {
		msgs = messages.Defaults()
	}
	return &Replier{rec: rec, msgs: msgs}
}

// Usage is the reply to /start and to any other command.
func (r *Replier) Usage() string {
	return r.msgs.Start
}

// Reply records text as a quick expense and describes the outcome.
func (r *Replier) Reply(ctx context.Context, text string) string {
	q, err := entry.ParseExpenseText(text)
	if err != nil {
		telemetry.RecordSubmission(ctx, "expense", "quick", telemetry.OutcomeRejected, 0)
		return messages.Render(r.msgs.Invalid, map[string]string{"error": err.Error()})
	}

	e, err := r.rec.SubmitQuickExpense(ctx, q)
	if err != nil {
		var pe *entry.PersistError
		if errors.As(err, &pe) {
			telemetry.RecordSubmission(ctx, "expense", "quick", telemetry.OutcomeFailed, 0)
			log.Printf("Error storing bot expense: %v: %v", pe, pe.Err)
			return r.msgs.Failed
		}
		telemetry.RecordSubmission(ctx, "expense", "quick", telemetry.OutcomeRejected, 0)
		return messages.Render(r.msgs.Invalid, map[string]string{"error": err.Error()})
	}

	telemetry.RecordSubmission(ctx, "expense", "quick", telemetry.OutcomeOK, 1)
	return messages.Render(r.msgs.Added, map[string]string{
		"item":     e.Item,
		"amount":   e.Amount.StringFixed(2),
		"payment":  e.PaymentMode,
		"category": e.Category,
	})
}

// respond picks the reply for a message: usage for commands, otherwise the
// outcome of recording it.
func (r *Replier) respond(ctx context.Context, text string, isCommand bool) string {
	if isCommand || strings.TrimSpace(text) == "" {
		return r.Usage()
	}
	return r.Reply(ctx, text)
}
