package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"science-helper/internal/domain"
	"science-helper/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

// Processor is the single operation the core exposes to presentation layers.
type Processor interface {
	Process(ctx context.Context, text string) (usecase.ProcessOutput, error)
}

type Handler struct {
	processor Processor
	log       *slog.Logger
}

type explainRequest struct {
	Text string `json:"text"`
}

type explainResponse struct {
	RunID           string                  `json:"runId"`
	Columns         []string                `json:"columns"`
	Rows            []domain.SentenceRecord `json:"rows"`
	SentenceCount   int                     `json:"sentenceCount"`
	ParseFailures   int                     `json:"parseFailures"`
	ServiceFailures int                     `json:"serviceFailures"`
	Failures        []usecase.Failure       `json:"failures"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func NewHandler(p Processor, log *slog.Logger) (*Handler, error) {
	if p == nil {
		return nil, errors.New("handler: processor must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{processor: p, log: log}, nil
}

// Handle serves POST {"text": "..."} through API Gateway.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(req.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	log := h.log.With(slog.String("correlation_id", correlationID))

	if req.HTTPMethod != "" && req.HTTPMethod != http.MethodPost {
		return respond(http.StatusMethodNotAllowed, correlationID, errorResponse{Error: string(usecase.ErrorInvalidInput), Reason: "method_not_allowed"}), nil
	}

	var in explainRequest
	if err := json.Unmarshal([]byte(req.Body), &in); err != nil {
		return respond(http.StatusBadRequest, correlationID, errorResponse{Error: string(usecase.ErrorInvalidInput), Reason: "invalid_body"}), nil
	}

	out, err := h.processor.Process(ctx, in.Text)
	if err != nil {
		status, body := mapError(err)
		log.WarnContext(ctx, "explain request failed", slog.Int("status", status), slog.String("code", body.Error), slog.Any("err", err))
		return respond(status, correlationID, body), nil
	}

	return respond(http.StatusOK, correlationID, explainResponse{
		RunID:           out.RunID,
		Columns:         out.Table().Columns(),
		Rows:            out.Records,
		SentenceCount:   out.SentenceCount,
		ParseFailures:   out.ParseFailures(),
		ServiceFailures: out.ServiceFailures(),
		Failures:        out.Failures,
	}), nil
}

func mapError(err error) (int, errorResponse) {
	var uerr *usecase.Error
	if !errors.As(err, &uerr) {
		return http.StatusInternalServerError, errorResponse{Error: string(usecase.ErrorInternal)}
	}
	body := errorResponse{Error: string(uerr.Code), Reason: uerr.Reason}
	switch uerr.Code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest, body
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests, body
	case usecase.ErrorService, usecase.ErrorParse:
		return http.StatusBadGateway, body
	case usecase.ErrorCanceled:
		return http.StatusGatewayTimeout, body
	default:
		return http.StatusInternalServerError, body
	}
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func respond(status int, correlationID string, body any) events.APIGatewayProxyResponse {
	buf, err := json.Marshal(body)
	if err != nil {
		status = http.StatusInternalServerError
		buf = []byte(`{"error":"INTERNAL_ERROR"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: correlationID,
		},
		Body: string(buf),
	}
}
