package generation

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/contentforge/contentforge/internal/quota"
)

// UsageRecorder performs the atomic admit-and-record update on the user
// document. Satisfied by user.Storage.
type UsageRecorder interface {
	IncrementUsage(ctx context.Context, id bson.ObjectID, limit int, historyID bson.ObjectID) (bool, error)
}

// HistoryWriter persists and removes history documents. Satisfied by
// HistoryStore.
type HistoryWriter interface {
	Create(ctx context.Context, h *History) error
	Delete(ctx context.Context, id, userID bson.ObjectID) error
	ByUser(ctx context.Context, userID bson.ObjectID) ([]History, error)
}

// Service orchestrates a generation request: quota admission, the upstream
// call, history persistence, and the usage increment.
type Service struct {
	providers map[string]Provider
	gate      *quota.Gate
	users     UsageRecorder
	history   HistoryWriter
}

func NewService(gate *quota.Gate, users UsageRecorder, history HistoryWriter, providers ...Provider) *Service {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Service{providers: byName, gate: gate, users: users, history: history}
}

// Generate runs one completion for the user and returns the stored history
// entry. The quota is checked before the upstream call so a user at their
// limit never burns provider credit, and enforced again atomically when
// the usage counter is bumped.
func (s *Service) Generate(ctx context.Context, userID bson.ObjectID, providerName, prompt string) (*History, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	p, ok := s.providers[providerName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, providerName)
	}

	u, err := s.gate.Admit(ctx, userID)
	if err != nil {
		return nil, err
	}

	text, err := p.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResult
	}

	h := &History{
		UserID:   userID,
		Prompt:   prompt,
		Content:  text,
		Provider: p.Name(),
		Model:    p.Model(),
	}
	if err := s.history.Create(ctx, h); err != nil {
		return nil, fmt.Errorf("failed to persist history: %w", err)
	}

	limit := s.gate.Limit(u)
	admitted, err := s.users.IncrementUsage(ctx, userID, limit, h.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}
	if !admitted {
		// A concurrent request took the last slot between the pre-check
		// and the increment. The orphaned document is removed so the
		// rejected request leaves no trace.
		_ = s.history.Delete(ctx, h.ID, userID)
		return nil, &quota.ExceededError{Current: limit, Limit: limit}
	}
	return h, nil
}

// ListHistory returns the user's stored completions, newest first.
func (s *Service) ListHistory(ctx context.Context, userID bson.ObjectID) ([]History, error) {
	return s.history.ByUser(ctx, userID)
}
