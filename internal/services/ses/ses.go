// Package ses sends portfolio report digests via AWS SES
package ses

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	appConfig "bnpl-portfolio-engine/internal/config"
	"bnpl-portfolio-engine/internal/models"
	"bnpl-portfolio-engine/internal/utils"
)

// Service handles SES email operations
type Service struct {
	client    *ses.Client
	fromEmail string
}

// DigestParams contains the data for a report digest email
type DigestParams struct {
	Recipient   string
	Report      *models.PortfolioReport
	DownloadURL string
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// NewService creates a new SES service
func NewService(ctx context.Context) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	appCfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	return &Service{
		client:    ses.NewFromConfig(cfg),
		fromEmail: appCfg.SESSenderEmail,
	}, nil
}

var digestTemplate = template.Must(template.New("digest").Parse(`
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
  <h2>Portfolio health digest</h2>
  <p>Window {{.Report.Window.From.Format "2006-01-02"}} to {{.Report.Window.To.Format "2006-01-02"}}</p>
  {{if .Report.Ranking}}
  <p>Market position: <strong>#{{.Report.Ranking.Rank}} of {{.Report.Ranking.ProviderCount}}</strong>
     (composite {{printf "%.1f" .Report.Ranking.CompositeScore}})</p>
  {{end}}
  {{if .Report.Insights}}
  <h3>Findings</h3>
  <ul>
    {{range .Report.Insights}}<li><strong>{{.Severity}}</strong>: {{.Message}}</li>{{end}}
  </ul>
  {{end}}
  {{if .DownloadURL}}
  <p><a href="{{.DownloadURL}}">Download the full workbook</a></p>
  {{end}}
  <p style="color: #888; font-size: 12px;">Report {{.Report.ReportID}}</p>
</body>
</html>`))

// SendDigest renders and sends the report digest email.
func (s *Service) SendDigest(ctx context.Context, params DigestParams) (*SendEmailResult, error) {
	if params.Recipient == "" {
		return nil, fmt.Errorf("digest recipient not configured")
	}

	var body bytes.Buffer
	if err := digestTemplate.Execute(&body, params); err != nil {
		return nil, fmt.Errorf("failed to render digest: %w", err)
	}

	subject := fmt.Sprintf("Portfolio health digest %s", params.Report.Window.To.Format("2006-01-02"))

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.Recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(body.String()), Charset: aws.String("UTF-8")},
			},
		},
	}

	output, err := s.client.SendEmail(ctx, input)
	if err != nil {
		utils.Logger.Error("Failed to send report digest",
			zap.String("recipient", params.Recipient),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send digest: %w", err)
	}

	utils.Logger.Info("Sent report digest",
		zap.String("recipient", params.Recipient),
		zap.String("message_id", aws.ToString(output.MessageId)),
	)

	return &SendEmailResult{
		MessageID: aws.ToString(output.MessageId),
		SentAt:    time.Now().UTC(),
	}, nil
}
