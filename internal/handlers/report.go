// Package handlers provides HTTP handlers for the portfolio intelligence engine.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	appConfig "bnpl-portfolio-engine/internal/config"
	"bnpl-portfolio-engine/internal/engine"
	"bnpl-portfolio-engine/internal/models"
	"bnpl-portfolio-engine/internal/services/database"
	"bnpl-portfolio-engine/internal/services/export"
	s3service "bnpl-portfolio-engine/internal/services/s3"
	sesservice "bnpl-portfolio-engine/internal/services/ses"
	"bnpl-portfolio-engine/internal/utils"
)

// ReportHandler runs the scoring pipeline and delivers the result.
type ReportHandler struct {
	cfg    *appConfig.Config
	db     *database.DB
	engine *engine.Engine
}

// NewReportHandler creates a new report handler.
func NewReportHandler() (*ReportHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &ReportHandler{
		cfg:    cfg,
		db:     db,
		engine: engine.New(database.NewStore(db)),
	}, nil
}

// ReportRequest is the request body for generating a report.
type ReportRequest struct {
	WindowFrom    string `json:"window_from,omitempty"`
	WindowTo      string `json:"window_to,omitempty"`
	Market        string `json:"market,omitempty"`
	WeightByValue *bool  `json:"weight_by_value,omitempty"`
	Compare       bool   `json:"compare,omitempty"`
	Deliver       bool   `json:"deliver,omitempty"`
	Recipient     string `json:"recipient,omitempty"`
}

// ReportResponse is the response for a report generation request.
type ReportResponse struct {
	Message     string                  `json:"message"`
	Report      *models.PortfolioReport `json:"report"`
	DownloadURL string                  `json:"download_url,omitempty"`
	EmailID     string                  `json:"email_id,omitempty"`
}

// Handle processes API Gateway requests to generate a portfolio report.
func (h *ReportHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := utils.GetLogger()

	headers := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": "POST,OPTIONS",
		"Content-Type":                 "application/json",
	}

	// Handle CORS preflight
	if request.HTTPMethod == "OPTIONS" {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	var req ReportRequest
	if request.Body != "" {
		if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
			return errorResponse(headers, http.StatusBadRequest, "Invalid JSON in request body")
		}
	}

	engineCfg, err := EngineConfig(h.cfg, req)
	if err != nil {
		return errorResponse(headers, http.StatusBadRequest, err.Error())
	}

	report, err := h.engine.BuildReport(ctx, engineCfg)
	if err != nil {
		logger.Error("Failed to build report", zap.Error(err))
		return errorResponse(headers, http.StatusUnprocessableEntity, fmt.Sprintf("Failed to build report: %v", err))
	}

	response := ReportResponse{
		Message: "Report generated",
		Report:  report,
	}

	if req.Deliver {
		downloadURL, emailID, err := h.deliver(ctx, report, req.Recipient)
		if err != nil {
			// The report itself is still usable, so deliver failures are
			// reported rather than failing the invocation.
			logger.Error("Failed to deliver report", zap.Error(err))
			response.Message = fmt.Sprintf("Report generated, delivery failed: %v", err)
		} else {
			response.DownloadURL = downloadURL
			response.EmailID = emailID
		}
	}

	logger.Info("Report request completed",
		zap.String("reportID", report.ReportID),
		zap.Int("insights", len(report.Insights)),
		zap.Int("skipped", len(report.Skipped)))

	body, _ := json.Marshal(response)
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// EngineConfig builds the pipeline configuration from a request, falling back
// to the environment defaults for anything not supplied.
func EngineConfig(cfg *appConfig.Config, req ReportRequest) (engine.Config, error) {
	now := time.Now().UTC()
	window := models.Window{
		From: now.AddDate(0, 0, -cfg.ReportWindowDays),
		To:   now,
	}

	if req.WindowFrom != "" && req.WindowTo != "" {
		from, err := time.Parse("2006-01-02", req.WindowFrom)
		if err != nil {
			return engine.Config{}, fmt.Errorf("invalid window_from: %w", err)
		}
		to, err := time.Parse("2006-01-02", req.WindowTo)
		if err != nil {
			return engine.Config{}, fmt.Errorf("invalid window_to: %w", err)
		}
		window = models.Window{From: from, To: to}
	}

	market := req.Market
	if market == "" {
		market = cfg.DefaultMarket
	}

	engineCfg := engine.DefaultConfig(window, market)
	engineCfg.WeightByValue = cfg.WeightByValue
	if req.WeightByValue != nil {
		engineCfg.WeightByValue = *req.WeightByValue
	}

	if req.Compare {
		compare := models.Window{
			From: window.From.AddDate(0, 0, -cfg.CompareWindowDays),
			To:   window.From,
		}
		engineCfg.CompareWindow = &compare
	}

	return engineCfg, nil
}

// deliver renders the workbook, stores it in S3 and emails the digest.
func (h *ReportHandler) deliver(ctx context.Context, report *models.PortfolioReport, recipient string) (string, string, error) {
	workbook, err := export.BuildWorkbook(report)
	if err != nil {
		return "", "", fmt.Errorf("failed to build workbook: %w", err)
	}

	storage, err := s3service.NewService(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to create S3 service: %w", err)
	}

	upload, err := storage.UploadReport(ctx, report.ReportID, workbook)
	if err != nil {
		return "", "", fmt.Errorf("failed to upload workbook: %w", err)
	}

	if recipient == "" {
		recipient = h.cfg.ReportRecipient
	}
	if recipient == "" {
		return upload.DownloadURL, "", nil
	}

	mailer, err := sesservice.NewService(ctx)
	if err != nil {
		return upload.DownloadURL, "", fmt.Errorf("failed to create SES service: %w", err)
	}

	sent, err := mailer.SendDigest(ctx, sesservice.DigestParams{
		Recipient:   recipient,
		Report:      report,
		DownloadURL: upload.DownloadURL,
	})
	if err != nil {
		return upload.DownloadURL, "", fmt.Errorf("failed to send digest: %w", err)
	}

	return upload.DownloadURL, sent.MessageID, nil
}

// Close cleans up resources.
func (h *ReportHandler) Close() {
	if h.db != nil {
		h.db.Close()
	}
}

// errorResponse builds a JSON error response.
func errorResponse(headers map[string]string, statusCode int, message string) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(map[string]string{"error": message})
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}
