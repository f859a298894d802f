package llm

import (
	"errors"
	"strings"
)

var (
	// ErrConfiguration matches any *ConfigurationError.
	ErrConfiguration = errors.New("llm configuration error")
	// ErrProvider matches any *ProviderError.
	ErrProvider = errors.New("llm provider error")
)

const genericFailure = "Analysis failed. Ensure documents are valid and API key is set."

// ConfigurationError reports a missing precondition, such as an absent credential.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// ProviderError reports a call that completed without a usable payload.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// UserMessage converts an analysis failure into the text shown to the underwriter.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return genericFailure
}
