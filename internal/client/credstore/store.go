// Package credstore owns the durable credential slot: at most one bearer
// token, persisted under common.CredentialKey so it survives restarts until
// it is explicitly cleared.
//
// Only the session manager and the HTTP transport write the slot.
package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophsocial/internal/common"
)

var ErrEmptyCredential = errors.New("empty credential")

// Store is the credential slot. Token returns "" when no credential is stored.
type Store interface {
	Token(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	// ClearIf removes the credential only while the slot still holds token,
	// so a late rejection of an old token cannot erase a newer one.
	ClearIf(ctx context.Context, token string) (bool, error)
}

type repoStore struct {
	repo metadata.Repository
}

// New returns a Store backed by the metadata repository.
func New(repo metadata.Repository) Store {
	return &repoStore{repo: repo}
}

func (s *repoStore) Token(ctx context.Context) (string, error) {
	v, err := s.repo.Get(ctx, common.CredentialKey)
	if err != nil {
		return "", fmt.Errorf("read credential: %w", err)
	}
	return string(v), nil
}

func (s *repoStore) Save(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyCredential
	}
	if err := s.repo.Set(ctx, common.CredentialKey, []byte(token)); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	return nil
}

func (s *repoStore) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, common.CredentialKey); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

func (s *repoStore) ClearIf(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	ok, err := s.repo.DeleteIfEqual(ctx, common.CredentialKey, []byte(token))
	if err != nil {
		return false, fmt.Errorf("clear credential: %w", err)
	}
	return ok, nil
}
