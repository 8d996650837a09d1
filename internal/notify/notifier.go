package notify

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/google/uuid"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/common"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Transport delivers a composed message. The notifier never retries
// transport failures; they surface as step failures upstream.
type Transport interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Notifier composes and sends workflow notifications. With a nil transport
// it runs in dev mode: messages are logged, not sent.
type Notifier struct {
	transport Transport
	logger    *slog.Logger
}

func New(transport Transport, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{transport: transport, logger: logger}
}

// Notify formats the template for the decided action and hands it to the
// transport. Whether to notify at all is the caller's decision.
func (n *Notifier) Notify(ctx context.Context, to string, action constants.WorkflowAction, docType constants.DocumentType, docID uuid.UUID, extracted map[string]string, rationale string) error {
	if !emailPattern.MatchString(to) {
		return fmt.Errorf("%w: invalid email address %q", common.ErrNotifyFailure, to)
	}

	msg := Compose(action, docType, docID, extracted, rationale)

	if n.transport == nil {
		n.logger.Info("notify.dev_mode",
			"to", to,
			"subject", msg.Subject,
			"body_bytes", len(msg.Body),
		)
		return nil
	}

	if err := n.transport.Send(ctx, to, msg.Subject, msg.Body); err != nil {
		return fmt.Errorf("%w: %v", common.ErrNotifyFailure, err)
	}
	n.logger.Info("notify.sent", "to", to, "subject", msg.Subject)
	return nil
}
