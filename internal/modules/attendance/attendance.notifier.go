package attendance

import (
	"context"
	"fmt"
	"strings"

	"github.com/vipin760/hand-pass-BE/internal/config"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/email"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/observability"
	"go.uber.org/zap"
)

// Notifier delivers a missed punch-in batch. Delivery failures must
// never bubble into the trigger loop; callers log and move on.
type Notifier interface {
	Send(ctx context.Context, batch *NotificationBatch) error
}

// EmailNotifier sends the batch by email. The default mode is a single
// digest to the configured admin address; per-user mode mails each
// absentee directly instead.
type EmailNotifier struct {
	sender  email.Sender
	email   config.EmailConfig
	perUser bool
	metrics *observability.Metrics
	logger  *observability.Logger
}

func NewEmailNotifier(
	sender email.Sender,
	emailCfg config.EmailConfig,
	attCfg config.AttendanceConfig,
	metrics *observability.Metrics,
	logger *observability.Logger,
) *EmailNotifier {
	return &EmailNotifier{
		sender:  sender,
		email:   emailCfg,
		perUser: attCfg.PerUserNotify,
		metrics: metrics,
		logger:  logger,
	}
}

func (n *EmailNotifier) Send(ctx context.Context, batch *NotificationBatch) error {
	if n.perUser {
		return n.sendPerUser(ctx, batch)
	}
	return n.sendDigest(ctx, batch)
}

func (n *EmailNotifier) sendDigest(ctx context.Context, batch *NotificationBatch) error {
	msg := &email.Message{
		From:    n.email.From,
		To:      []string{n.email.AdminEmail},
		Subject: fmt.Sprintf("%s Missed punch-ins for %s (%d)", n.email.SubjectTag, batch.Date, len(batch.Absent)),
		Text:    digestText(batch),
		HTML:    digestHTML(batch),
	}

	if err := n.sender.Send(ctx, msg); err != nil {
		n.metrics.NotificationsTotal.WithLabelValues("digest", "error").Inc()
		return err
	}
	n.metrics.NotificationsTotal.WithLabelValues("digest", "sent").Inc()
	return nil
}

// sendPerUser mails every absentee and keeps going past individual
// failures so one bad address does not starve the rest.
func (n *EmailNotifier) sendPerUser(ctx context.Context, batch *NotificationBatch) error {
	var failed int
	for _, a := range batch.Absent {
		msg := &email.Message{
			From:    n.email.From,
			To:      []string{a.Email},
			Subject: fmt.Sprintf("%s No punch-in recorded for %s", n.email.SubjectTag, batch.Date),
			Text: fmt.Sprintf("Hi %s,\r\n\r\nNo punch-in was recorded for you on %s. "+
				"If you were at work, please contact your administrator.\r\n", a.Name, batch.Date),
		}

		if err := n.sender.Send(ctx, msg); err != nil {
			failed++
			n.metrics.NotificationsTotal.WithLabelValues("per_user", "error").Inc()
			n.logger.Error(ctx, "Failed to send missed punch-in email",
				zap.String("user_id", a.UserID), zap.Error(err))
			continue
		}
		n.metrics.NotificationsTotal.WithLabelValues("per_user", "sent").Inc()
	}

	if failed > 0 {
		return fmt.Errorf("failed to notify %d of %d absentees", failed, len(batch.Absent))
	}
	return nil
}

func digestText(batch *NotificationBatch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Users without a punch-in on %s:\r\n\r\n", batch.Date)
	for _, a := range batch.Absent {
		fmt.Fprintf(&b, "  - %s <%s>\r\n", a.Name, a.Email)
	}
	fmt.Fprintf(&b, "\r\nTotal: %d\r\n", len(batch.Absent))
	return b.String()
}

func digestHTML(batch *NotificationBatch) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>Users without a punch-in on %s</h3><ul>", batch.Date)
	for _, a := range batch.Absent {
		fmt.Fprintf(&b, "<li>%s &lt;%s&gt;</li>", a.Name, a.Email)
	}
	fmt.Fprintf(&b, "</ul><p>Total: %d</p>", len(batch.Absent))
	return b.String()
}

// LogNotifier stands in when email delivery is disabled. The batch is
// written to the application log so the information is not lost.
type LogNotifier struct {
	metrics *observability.Metrics
	logger  *observability.Logger
}

func NewLogNotifier(metrics *observability.Metrics, logger *observability.Logger) *LogNotifier {
	return &LogNotifier{metrics: metrics, logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, batch *NotificationBatch) error {
	names := make([]string, 0, len(batch.Absent))
	for _, a := range batch.Absent {
		names = append(names, a.Name)
	}
	n.logger.Info(ctx, "Missed punch-in batch (email disabled)",
		zap.String("date", batch.Date),
		zap.Int("count", len(batch.Absent)),
		zap.Strings("users", names))
	n.metrics.NotificationsTotal.WithLabelValues("log", "sent").Inc()
	return nil
}
