package generation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/contentforge/contentforge/internal/generation"
	"github.com/contentforge/contentforge/internal/plan"
	"github.com/contentforge/contentforge/internal/quota"
	"github.com/contentforge/contentforge/internal/user"
)

type mockUserReader struct {
	mock.Mock
}

func (m *mockUserReader) ByID(ctx context.Context, id bson.ObjectID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type mockRecorder struct {
	mock.Mock
}

func (m *mockRecorder) IncrementUsage(ctx context.Context, id bson.ObjectID, limit int, historyID bson.ObjectID) (bool, error) {
	args := m.Called(ctx, id, limit, historyID)
	return args.Bool(0), args.Error(1)
}

type mockHistory struct {
	mock.Mock
}

func (m *mockHistory) Create(ctx context.Context, h *generation.History) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *mockHistory) Delete(ctx context.Context, id, userID bson.ObjectID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *mockHistory) ByUser(ctx context.Context, userID bson.ObjectID) ([]generation.History, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]generation.History), args.Error(1)
}

type stubProvider struct {
	name  string
	model string
	text  string
	err   error
}

func (p *stubProvider) Name() string  { return p.name }
func (p *stubProvider) Model() string { return p.model }

func (p *stubProvider) Generate(_ context.Context, _ string) (string, error) {
	return p.text, p.err
}

func TestService_Generate(t *testing.T) {
	t.Parallel()

	userID := bson.NewObjectID()
	basicUser := func() *user.User {
		return &user.User{ID: userID, SubscriptionPlan: plan.Basic, APIRequestCount: 3}
	}

	t.Run("persists history and bumps usage", func(t *testing.T) {
		t.Parallel()

		reader := new(mockUserReader)
		reader.On("ByID", mock.Anything, userID).Return(basicUser(), nil)
		recorder := new(mockRecorder)
		recorder.On("IncrementUsage", mock.Anything, userID, 50, mock.Anything).Return(true, nil)
		history := new(mockHistory)
		history.On("Create", mock.Anything, mock.MatchedBy(func(h *generation.History) bool {
			return h.UserID == userID && h.Prompt == "write a tagline" && h.Content == "Ship it."
		})).Return(nil)

		svc := generation.NewService(
			quota.NewGate(reader, plan.DefaultCatalog()),
			recorder, history,
			&stubProvider{name: generation.ProviderGroq, model: "llama-3.3-70b-versatile", text: "Ship it."},
		)

		h, err := svc.Generate(context.Background(), userID, generation.ProviderGroq, "write a tagline")
		require.NoError(t, err)
		assert.Equal(t, "Ship it.", h.Content)
		assert.Equal(t, generation.ProviderGroq, h.Provider)
		assert.Equal(t, "llama-3.3-70b-versatile", h.Model)
		recorder.AssertExpectations(t)
		history.AssertExpectations(t)
	})

	t.Run("rejects blank prompt before touching anything", func(t *testing.T) {
		t.Parallel()

		svc := generation.NewService(
			quota.NewGate(new(mockUserReader), plan.DefaultCatalog()),
			new(mockRecorder), new(mockHistory),
		)

		_, err := svc.Generate(context.Background(), userID, generation.ProviderGroq, "   ")
		assert.ErrorIs(t, err, generation.ErrEmptyPrompt)
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()

		svc := generation.NewService(
			quota.NewGate(new(mockUserReader), plan.DefaultCatalog()),
			new(mockRecorder), new(mockHistory),
		)

		_, err := svc.Generate(context.Background(), userID, "claude", "hello")
		assert.ErrorIs(t, err, generation.ErrUnknownProvider)
	})

	t.Run("quota pre-check blocks the upstream call", func(t *testing.T) {
		t.Parallel()

		reader := new(mockUserReader)
		reader.On("ByID", mock.Anything, userID).Return(
			&user.User{ID: userID, SubscriptionPlan: plan.Free, APIRequestCount: 5}, nil)
		history := new(mockHistory)

		svc := generation.NewService(
			quota.NewGate(reader, plan.DefaultCatalog()),
			new(mockRecorder), history,
			&stubProvider{name: generation.ProviderGemini, model: "gemini-2.0-flash", text: "never reached"},
		)

		_, err := svc.Generate(context.Background(), userID, generation.ProviderGemini, "hello")
		var exceeded *quota.ExceededError
		require.ErrorAs(t, err, &exceeded)
		history.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("lost increment race removes the orphaned history", func(t *testing.T) {
		t.Parallel()

		reader := new(mockUserReader)
		reader.On("ByID", mock.Anything, userID).Return(basicUser(), nil)
		recorder := new(mockRecorder)
		recorder.On("IncrementUsage", mock.Anything, userID, 50, mock.Anything).Return(false, nil)
		history := new(mockHistory)
		history.On("Create", mock.Anything, mock.Anything).Return(nil)
		history.On("Delete", mock.Anything, mock.Anything, userID).Return(nil)

		svc := generation.NewService(
			quota.NewGate(reader, plan.DefaultCatalog()),
			recorder, history,
			&stubProvider{name: generation.ProviderGroq, model: "llama-3.3-70b-versatile", text: "text"},
		)

		_, err := svc.Generate(context.Background(), userID, generation.ProviderGroq, "hello")
		var exceeded *quota.ExceededError
		require.ErrorAs(t, err, &exceeded)
		assert.Equal(t, 50, exceeded.Limit)
		history.AssertCalled(t, "Delete", mock.Anything, mock.Anything, userID)
	})

	t.Run("provider failure leaves no history", func(t *testing.T) {
		t.Parallel()

		reader := new(mockUserReader)
		reader.On("ByID", mock.Anything, userID).Return(basicUser(), nil)
		history := new(mockHistory)

		svc := generation.NewService(
			quota.NewGate(reader, plan.DefaultCatalog()),
			new(mockRecorder), history,
			&stubProvider{name: generation.ProviderGroq, model: "m", err: generation.ErrUpstreamUnreachable},
		)

		_, err := svc.Generate(context.Background(), userID, generation.ProviderGroq, "hello")
		assert.ErrorIs(t, err, generation.ErrUpstreamUnreachable)
		history.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("blank completion is an error", func(t *testing.T) {
		t.Parallel()

		reader := new(mockUserReader)
		reader.On("ByID", mock.Anything, userID).Return(basicUser(), nil)

		svc := generation.NewService(
			quota.NewGate(reader, plan.DefaultCatalog()),
			new(mockRecorder), new(mockHistory),
			&stubProvider{name: generation.ProviderGroq, model: "m", text: "  \n"},
		)

		_, err := svc.Generate(context.Background(), userID, generation.ProviderGroq, "hello")
		assert.ErrorIs(t, err, generation.ErrEmptyResult)
	})
}
