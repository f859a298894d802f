package health

// Service reports liveness and which analysis provider is configured.
type Service struct {
	provider string
}

// NewService constructs a new health service.
func NewService(provider string) *Service {
	return &Service{provider: provider}
}

// Status returns the health payload.
func (s *Service) Status() map[string]any {
	out := map[string]any{"ok": true}
	if s.provider != "" {
		out["provider"] = s.provider
	}
	return out
}
