package user

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

// HistoryDeleter removes a content history document. Implemented by the
// generation package's history store; the indirection keeps this package
// free of a dependency on generated-content internals.
type HistoryDeleter interface {
	Delete(ctx context.Context, id, userID bson.ObjectID) error
}

// Service implements account workflows over Storage.
type Service struct {
	store   Storage
	history HistoryDeleter
}

func NewService(store Storage, history HistoryDeleter) *Service {
	return &Service{store: store, history: history}
}

// Register creates an account with trial defaults. The email is lowercased
// and trimmed before storage so the uniqueness invariant is case-blind.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	email = NormalizeEmail(email)
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	u := NewTrialUser(username, email, string(hash))
	if err := s.store.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials. A missing account and a wrong password yield
// the same error so responses never reveal which field was wrong.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	u, err := s.store.ByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Get returns the user by id.
func (s *Service) Get(ctx context.Context, id bson.ObjectID) (*User, error) {
	return s.store.ByID(ctx, id)
}

// UpdateProfile applies optional identity changes; a new password is
// hashed before it reaches storage.
func (s *Service) UpdateProfile(ctx context.Context, id bson.ObjectID, username, email, password string) (*User, error) {
	update := ProfileUpdate{
		Username: strings.TrimSpace(username),
		Email:    NormalizeEmail(email),
	}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = string(hash)
	}
	return s.store.UpdateProfile(ctx, id, update)
}

// DeleteHistory removes one generated item owned by the user: the
// reference leaves the user record first, then the document itself is
// deleted. The two steps are not transactional; a crash in between leaves
// an unreferenced document, which is harmless.
func (s *Service) DeleteHistory(ctx context.Context, userID, historyID bson.ObjectID) error {
	if err := s.store.RemoveHistoryRef(ctx, userID, historyID); err != nil {
		return err
	}
	return s.history.Delete(ctx, historyID, userID)
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
