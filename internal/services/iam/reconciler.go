package iam

import (
	"context"
	"errors"
	"fmt"

	"github.com/librarydirecto/catalogapi/internal/auth"
	"github.com/librarydirecto/catalogapi/internal/db/models"
	"github.com/librarydirecto/catalogapi/internal/repository"
)

// Reconcile upserts the identity for a federated login.
//
// A new email becomes a USER identity with FEDERATED source and no password.
// An existing identity, whatever its source, only gets its name and picture
// overwritten. When a concurrent login wins the insert, the unique email
// constraint rejects ours and the call continues as an update.
func (s *Service) Reconcile(ctx context.Context, claims auth.FederatedClaims) (*models.User, error) {
	if claims.Email == "" {
		return nil, auth.ErrMissingEmailClaim
	}

	user, err := s.reconcileOnce(ctx, claims)
	if errors.Is(err, repository.ErrDuplicateIdentity) {
		s.logger.Debug().Str("email", claims.Email).Msg("lost concurrent identity insert, updating instead")
		existing, lookupErr := s.users.GetByEmail(ctx, claims.Email)
		if lookupErr != nil {
			return nil, fmt.Errorf("reload identity after duplicate insert: %w", lookupErr)
		}
		return s.applyProfile(ctx, existing, claims)
	}
	return user, err
}

func (s *Service) reconcileOnce(ctx context.Context, claims auth.FederatedClaims) (*models.User, error) {
	existing, err := s.users.GetByEmail(ctx, claims.Email)
	switch {
	case err == nil:
		return s.applyProfile(ctx, existing, claims)
	case errors.Is(err, repository.ErrIdentityNotFound):
	default:
		return nil, fmt.Errorf("lookup identity: %w", err)
	}

	user := &models.User{
		Email:      claims.Email,
		Name:       optional(claims.Name),
		Picture:    optional(claims.Picture),
		Role:       models.RoleUser,
		AuthSource: models.AuthSourceFederated,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("created federated identity")
	return user, nil
}

func (s *Service) applyProfile(ctx context.Context, user *models.User, claims auth.FederatedClaims) (*models.User, error) {
	name, picture := optional(claims.Name), optional(claims.Picture)
	if err := s.users.UpdateProfile(ctx, user.ID, name, picture); err != nil {
		return nil, fmt.Errorf("update federated profile: %w", err)
	}
	user.Name = name
	user.Picture = picture
	return user, nil
}
