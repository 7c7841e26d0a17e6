package websearch

import (
	"context"
	"errors"
	"fmt"

	"github.com/helixir/research-assistant-service/internal/domain"
	"github.com/helixir/research-assistant-service/internal/llm"
)

const (
	// ReasonUnparseable is shown when the model answer fails decoding or validation.
	ReasonUnparseable = "Could not parse model output."

	// ReasonModelDeclined is used when the model refuses without giving a reason.
	ReasonModelDeclined = "The research assistant declined this request."
)

var vendorNames = map[string]string{
	"openai":    "OpenAI",
	"anthropic": "Anthropic",
	"gemini":    "Gemini",
}

// RefusalReason maps an error from Search to the user-visible refusal text.
func RefusalReason(err error) string {
	var (
		refusal  *domain.PolicyRefusalError
		schema   *domain.SchemaViolationError
		cfgErr   *domain.ConfigurationError
		apiErr   *llm.APIError
		provider *domain.ProviderError
	)

	switch {
	case err == nil:
		return ""
	case errors.As(err, &refusal):
		if refusal.Reason == "" {
			return ReasonModelDeclined
		}
		return refusal.Reason
	case errors.As(err, &schema):
		return ReasonUnparseable
	case errors.As(err, &cfgErr):
		return cfgErr.Message
	case errors.As(err, &apiErr) && apiErr.StatusCode > 0:
		return fmt.Sprintf("%s error %d: %s", vendorName(apiErr.Provider), apiErr.StatusCode, domain.TruncateDetail(apiErr.Message))
	case errors.Is(err, context.DeadlineExceeded):
		return "The research request timed out. Please try again."
	case errors.As(err, &provider):
		return fmt.Sprintf("%s request failed: %s", vendorName(provider.Provider), domain.TruncateDetail(fmt.Sprint(provider.Cause)))
	default:
		return "Research failed: " + domain.TruncateDetail(err.Error())
	}
}

func vendorName(provider string) string {
	if name, ok := vendorNames[provider]; ok {
		return name
	}
	return provider
}
