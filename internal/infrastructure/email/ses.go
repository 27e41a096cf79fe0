package email

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/vipin760/hand-pass-BE/internal/config"
	"github.com/vipin760/hand-pass-BE/internal/infrastructure/observability"
)

// Message is a single outbound email with an optional HTML alternative.
type Message struct {
	From    string
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers email messages.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// SESSender sends mail through Amazon SES as raw MIME messages so the
// text and HTML parts travel in one multipart/alternative body.
type SESSender struct {
	client *ses.Client
	from   string
	logger *observability.Logger
}

func NewSESSender(ctx context.Context, cfg *config.EmailConfig, logger *observability.Logger) (*SESSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESSender{
		client: ses.NewFromConfig(awsCfg),
		from:   cfg.From,
		logger: logger,
	}, nil
}

func (s *SESSender) Send(ctx context.Context, msg *Message) error {
	if msg.From == "" {
		msg.From = s.from
	}

	raw, err := buildRawMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to build email: %w", err)
	}

	res, err := s.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage: &types.RawMessage{
			Data: raw.Bytes(),
		},
	})
	if err != nil {
		return err
	}

	s.logger.Debug(ctx, "Email sent",
		s.logger.Field("message_id", *res.MessageId),
		s.logger.Field("recipients", len(msg.To)),
	)
	return nil
}

func buildRawMessage(msg *Message) (*bytes.Buffer, error) {
	var raw bytes.Buffer
	writer := multipart.NewWriter(&raw)
	boundary := writer.Boundary()

	headers := fmt.Sprintf("From: %s\r\n", msg.From)
	headers += fmt.Sprintf("To: %s\r\n", strings.Join(msg.To, ", "))
	headers += fmt.Sprintf("Subject: %s\r\n", msg.Subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += fmt.Sprintf("Content-Type: multipart/mixed; boundary=\"%s\"\r\n", boundary)
	headers += "\r\n"
	raw.WriteString(headers)

	// Alternative part (text/plain + text/html)
	altBuf := &bytes.Buffer{}
	altWriter := multipart.NewWriter(altBuf)
	altBoundary := altWriter.Boundary()

	altHeaders := textproto.MIMEHeader{}
	altHeaders.Set("Content-Type", "multipart/alternative; boundary="+altBoundary)
	altPart, err := writer.CreatePart(altHeaders)
	if err != nil {
		return nil, err
	}

	if msg.Text != "" {
		part, err := altWriter.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"text/plain; charset=UTF-8"},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(part)
		qp.Write([]byte(msg.Text))
		qp.Close()
	}

	if msg.HTML != "" {
		part, err := altWriter.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"text/html; charset=UTF-8"},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(part)
		qp.Write([]byte(msg.HTML))
		qp.Close()
	}

	altWriter.Close()
	altPart.Write(altBuf.Bytes())
	writer.Close()

	return &raw, nil
}
