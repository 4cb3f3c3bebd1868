package worker

import (
	"context"
	"log/slog"

	"pollboard/internal/metrics"
)

// VoteEvent describes a processed ballot for the audit trail.
type VoteEvent struct {
	QuestionID int64
	ChoiceID   int64
	UserID     int64
	Outcome    string
}

// AuditWorker drains vote events off the hot request path, writing the
// audit log and feeding the votes counter.
type AuditWorker struct {
	Ch     <-chan VoteEvent
	logger *slog.Logger
}

func NewAuditWorker(ch <-chan VoteEvent, logger *slog.Logger) *AuditWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditWorker{Ch: ch, logger: logger}
}

func (w *AuditWorker) Run(ctx context.Context) {
	w.logger.Info("audit worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("audit worker stopped")
			return
		case ev := <-w.Ch:
			metrics.IncVote(ev.Outcome)
			w.logger.Info("vote",
				"question_id", ev.QuestionID,
				"choice_id", ev.ChoiceID,
				"user_id", ev.UserID,
				"outcome", ev.Outcome,
			)
		}
	}
}
