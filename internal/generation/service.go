package generation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// PlaceholderAPIKey is the sample value shipped in .env templates. It is treated as unset.
const PlaceholderAPIKey = "your_gemini_api_key_here"

// Service runs a single generation call per request. No retry is performed.
type Service struct {
	keyFunc      func() string
	newGenerator GeneratorFactory
	timeout      time.Duration
	logger       *slog.Logger
}

// NewService wires the key source, client factory and per-call timeout.
func NewService(keyFunc func() string, factory GeneratorFactory, timeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		keyFunc:      keyFunc,
		newGenerator: factory,
		timeout:      timeout,
		logger:       logger,
	}
}

// Configured reports whether a usable credential is currently available.
func (s *Service) Configured() bool {
	return usableKey(s.apiKey())
}

func (s *Service) apiKey() string {
	if s.keyFunc == nil {
		return ""
	}
	return strings.TrimSpace(s.keyFunc())
}

func usableKey(key string) bool {
	return key != "" && key != PlaceholderAPIKey
}

// Generate sends prompt upstream and returns normalized HTML. Every failure is an *Error.
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	key := s.apiKey()
	if !usableKey(key) {
		return "", &Error{Kind: KindConfiguration}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	gen, err := s.newGenerator(ctx, key)
	if err != nil {
		return "", s.fail(ctx, err)
	}
	defer func() {
		if closeErr := gen.Close(); closeErr != nil {
			s.logger.Warn("close generator", "error", closeErr)
		}
	}()

	start := time.Now()
	text, err := gen.GenerateContent(ctx, prompt)
	if err != nil {
		return "", s.fail(ctx, err)
	}
	s.logger.Debug("generation completed", "duration", time.Since(start), "chars", len(text))
	return NormalizeContent(text), nil
}

func (s *Service) fail(ctx context.Context, err error) error {
	kind := Classify(err)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		kind = KindTimeout
	}
	s.logger.Error("generation failed", "kind", kind, "error", err)
	return &Error{Kind: kind, Details: err.Error(), Err: err}
}
