package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"llm-chat-proxy/internal/domain"
	"llm-chat-proxy/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

var corsHeaders = map[string]string{
	"Content-Type":                 "application/json",
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "Content-Type,X-Amz-Date,Authorization,X-Api-Key,X-Amz-Security-Token",
	"Access-Control-Allow-Methods": "OPTIONS,POST",
}

type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type chatRequest struct {
	Message             *string              `json:"message"`
	ConversationHistory []domain.ChatMessage `json:"conversationHistory"`
}

type chatResponse struct {
	Success             bool                 `json:"success"`
	Response            string               `json:"response"`
	ConversationHistory []domain.ChatMessage `json:"conversationHistory"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type Handler struct {
	chat   ChatUseCase
	logger *slog.Logger
}

func NewHandler(chat ChatUseCase, logger *slog.Logger) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat use case must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{chat: chat, logger: logger}, nil
}

// Handle serves one API Gateway proxy invocation. It never returns an error:
// every failure is rendered as a 500 envelope so API Gateway always gets the
// CORS headers.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	correlationID := resolveCorrelationID(event)
	logger := h.logger.With("correlation_id", correlationID)

	defer func() {
		if r := recover(); r != nil {
			resp = writeError(logger, correlationID, &usecase.Error{
				Code:    usecase.ErrorInternal,
				Reason:  "panic",
				Message: fmt.Sprint(r),
			})
			err = nil
		}
	}()

	logger.Info("request received",
		"method", event.HTTPMethod,
		"path", event.Path,
		"request_id", event.RequestContext.RequestID,
		"body", event.Body,
	)

	in, parseErr := parseRequest(event)
	if parseErr != nil {
		return writeError(logger, correlationID, parseErr), nil
	}
	in.Claims = claimsFrom(event)

	out, chatErr := h.chat.Chat(ctx, in)
	if chatErr != nil {
		return writeError(logger, correlationID, chatErr), nil
	}

	return writeJSON(logger, correlationID, http.StatusOK, chatResponse{
		Success:             true,
		Response:            out.Response,
		ConversationHistory: out.History,
	}), nil
}

func parseRequest(event events.APIGatewayProxyRequest) (usecase.ChatInput, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return usecase.ChatInput{}, usecase.InvalidInput("invalid_base64", "request body is not valid base64", err)
		}
		body = decoded
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return usecase.ChatInput{}, usecase.InvalidInput("empty_body", "request body is empty", nil)
	}

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return usecase.ChatInput{}, usecase.InvalidInput("invalid_json", "invalid request body: "+err.Error(), err)
	}
	if req.Message == nil {
		return usecase.ChatInput{}, usecase.InvalidInput("missing_message", "missing required field: message", nil)
	}
	return usecase.ChatInput{
		Message: *req.Message,
		History: req.ConversationHistory,
	}, nil
}

// claimsFrom reads Cognito claims attached by an API Gateway authorizer.
func claimsFrom(event events.APIGatewayProxyRequest) domain.AuthClaims {
	raw, ok := event.RequestContext.Authorizer["claims"]
	if !ok {
		return nil
	}
	claims, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	return domain.AuthClaims(claims)
}

func resolveCorrelationID(event events.APIGatewayProxyRequest) string {
	for k, v := range event.Headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if id := strings.TrimSpace(event.RequestContext.RequestID); id != "" {
		return id
	}
	return uuid.NewString()
}

func writeError(logger *slog.Logger, correlationID string, err error) events.APIGatewayProxyResponse {
	message := err.Error()
	var usecaseErr *usecase.Error
	if errors.As(err, &usecaseErr) {
		logger.Error("chat request failed",
			"code", usecaseErr.Code,
			"reason", usecaseErr.Reason,
			"err", err,
		)
		if usecaseErr.Message != "" {
			message = usecaseErr.Message
		}
	} else {
		logger.Error("chat request failed", "code", usecase.ErrorInternal, "err", err)
	}
	return writeJSON(logger, correlationID, http.StatusInternalServerError, errorResponse{
		Success: false,
		Error:   message,
	})
}

func writeJSON(logger *slog.Logger, correlationID string, status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to encode response", "err", err)
		status = http.StatusInternalServerError
		body = []byte(`{"success":false,"error":"failed to encode response"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    responseHeaders(correlationID),
		Body:       string(body),
	}
}

func responseHeaders(correlationID string) map[string]string {
	h := make(map[string]string, len(corsHeaders)+1)
	for k, v := range corsHeaders {
		h[k] = v
	}
	h[correlationHeader] = correlationID
	return h
}
