package attendance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vipin760/hand-pass-BE/internal/config"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/email"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/observability"
)

type captureSender struct {
	sent    []*email.Message
	failFor map[string]error
}

func (s *captureSender) Send(ctx context.Context, msg *email.Message) error {
	if err, ok := s.failFor[msg.To[0]]; ok {
		return err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func testEmailConfig() config.EmailConfig {
	return config.EmailConfig{
		Enabled:    true,
		From:       "Attendance System <no-reply@company.com>",
		AdminEmail: "admin@company.com",
		SubjectTag: "[Attendance]",
	}
}

func testBatch() *NotificationBatch {
	return &NotificationBatch{
		Date: "2024-01-24",
		Absent: []Absentee{
			{UserID: "u1", Name: "Asha", Email: "asha@company.com"},
			{UserID: "u2", Name: "Ravi", Email: "ravi@company.com"},
			{UserID: "u3", Name: "Sara", Email: "sara@company.com"},
		},
	}
}

func newTestNotifier(t *testing.T, sender email.Sender, perUser bool) *EmailNotifier {
	t.Helper()

	logger, err := observability.NewLogger("error", "console")
	require.NoError(t, err)

	return NewEmailNotifier(sender, testEmailConfig(),
		config.AttendanceConfig{PerUserNotify: perUser},
		observability.NewMetrics(), logger)
}

func TestEmailNotifier_Digest(t *testing.T) {
	sender := &captureSender{}
	n := newTestNotifier(t, sender, false)

	require.NoError(t, n.Send(context.Background(), testBatch()))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"admin@company.com"}, msg.To)
	assert.Contains(t, msg.Subject, "[Attendance]")
	assert.Contains(t, msg.Subject, "2024-01-24")
	assert.Contains(t, msg.Subject, "(3)")
	assert.Contains(t, msg.Text, "Asha <asha@company.com>")
	assert.Contains(t, msg.Text, "Total: 3")
	assert.Contains(t, msg.HTML, "<li>Ravi")
}

func TestEmailNotifier_Digest_SenderFailure(t *testing.T) {
	sender := &captureSender{failFor: map[string]error{
		"admin@company.com": errors.New("ses throttled"),
	}}
	n := newTestNotifier(t, sender, false)

	err := n.Send(context.Background(), testBatch())
	require.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestEmailNotifier_PerUser(t *testing.T) {
	sender := &captureSender{}
	n := newTestNotifier(t, sender, true)

	require.NoError(t, n.Send(context.Background(), testBatch()))
	require.Len(t, sender.sent, 3)
	assert.Equal(t, []string{"asha@company.com"}, sender.sent[0].To)
	assert.Contains(t, sender.sent[0].Text, "Hi Asha")
}

func TestEmailNotifier_PerUser_ContinuesPastFailures(t *testing.T) {
	sender := &captureSender{failFor: map[string]error{
		"ravi@company.com": errors.New("mailbox full"),
	}}
	n := newTestNotifier(t, sender, true)

	err := n.Send(context.Background(), testBatch())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3")

	// The failure on the second address must not stop the third.
	require.Len(t, sender.sent, 2)
	assert.Equal(t, []string{"asha@company.com"}, sender.sent[0].To)
	assert.Equal(t, []string{"sara@company.com"}, sender.sent[1].To)
}

func TestLogNotifier(t *testing.T) {
	logger, err := observability.NewLogger("error", "console")
	require.NoError(t, err)

	n := NewLogNotifier(observability.NewMetrics(), logger)
	assert.NoError(t, n.Send(context.Background(), testBatch()))
}
