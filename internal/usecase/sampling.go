package usecase

import "llm-chat-proxy/internal/integrations/generation"

// Sampling parameters forwarded verbatim on every call.
const (
	maxNewTokens = 512
	doSample     = true
	temperature  = 0.7
	topP         = 0.9
)

// buildGenerationRequest sends only the latest message as the prompt. Prior
// turns are returned to the caller but are not given to the model.
func buildGenerationRequest(message string) generation.Request {
	return generation.Request{
		Prompt:       message,
		MaxNewTokens: maxNewTokens,
		DoSample:     doSample,
		Temperature:  temperature,
		TopP:         topP,
	}
}
