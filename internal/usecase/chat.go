package usecase

import (
	"context"
	"errors"
	"log/slog"

	"llm-chat-proxy/internal/domain"
	"llm-chat-proxy/internal/integrations/generation"
)

type Generator interface {
	Generate(ctx context.Context, in generation.Request) (generation.Response, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

type ChatService struct {
	gen    Generator
	logger *slog.Logger
}

type ChatInput struct {
	Message string
	History []domain.ChatMessage
	Claims  domain.AuthClaims
}

type ChatOutput struct {
	Response string
	History  []domain.ChatMessage
}

func NewChatService(gen Generator, logger *slog.Logger) (*ChatService, error) {
	if gen == nil {
		return nil, errors.New("usecase: generator must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{gen: gen, logger: logger}, nil
}

// Chat runs one exchange: it records the user turn, makes exactly one
// generation call and records the reply. On error the returned history is
// nil and the caller's history is untouched.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	if identity := in.Claims.Identity(); identity != "" {
		s.logger.Info("authenticated user", "user", identity)
	}
	s.logger.Info("processing message", "message", in.Message, "history_len", len(in.History))

	history := domain.CloneHistory(in.History)
	history = append(history, domain.ChatMessage{Role: domain.RoleUser, Content: in.Message})

	out, err := s.gen.Generate(ctx, buildGenerationRequest(in.Message))
	if err != nil {
		var statusErr httpStatusCoder
		if errors.As(err, &statusErr) {
			return ChatOutput{}, newError(ErrorUpstream, "llm_status_error", err.Error(), err)
		}
		return ChatOutput{}, newError(ErrorUpstream, "llm_request_error", err.Error(), err)
	}
	if out.GeneratedText == "" {
		return ChatOutput{}, newError(ErrorUpstream, "llm_empty_response", "No generated_text in response", nil)
	}

	history = append(history, domain.ChatMessage{Role: domain.RoleAssistant, Content: out.GeneratedText})
	return ChatOutput{
		Response: out.GeneratedText,
		History:  history,
	}, nil
}
