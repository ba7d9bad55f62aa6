package iam

import (
	"context"
	"errors"
	"fmt"

	"github.com/librarydirecto/catalogapi/internal/auth"
	"github.com/librarydirecto/catalogapi/internal/db/models"
	"github.com/librarydirecto/catalogapi/internal/repository"
)

// StaffRegistration describes a new locally authenticated staff identity.
type StaffRegistration struct {
	Email    string
	Password string
	Name     string
	Role     models.Role
}

// LoginResult is a successful local login.
type LoginResult struct {
	Token string
	User  *models.User
}

// RegisterStaff creates a LOCAL identity on behalf of the request principal.
// An ADMIN principal may create either staff role. Any other caller is served
// only while no ADMIN exists, may only create an ADMIN, and the existence check
// and the insert run as one step so concurrent callers create at most one.
// A taken email is reported as repository.ErrDuplicateIdentity.
func (s *Service) RegisterStaff(ctx context.Context, reg StaffRegistration) (*models.User, error) {
	principal, authenticated := auth.PrincipalFromContext(ctx)
	if authenticated && principal.HasAuthority(auth.AuthorityForRole(models.RoleAdmin)) {
		return s.ProvisionStaff(ctx, reg)
	}

	if !reg.Role.IsStaff() {
		return nil, ErrInvalidStaffRole
	}
	if reg.Role != models.RoleAdmin {
		return nil, ErrBootstrapRequiresAdmin
	}

	user, err := s.newStaffUser(reg)
	if err != nil {
		return nil, err
	}
	if err := s.users.CreateFirstAdmin(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAdminExists) {
			if authenticated {
				return nil, ErrAdminRequired
			}
			return nil, ErrBootstrapClosed
		}
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("email", user.Email).Msg("registered first administrator")
	return user, nil
}

// ProvisionStaff creates a LOCAL identity without consulting the caller. It
// serves ADMIN requests and operator tooling with direct database access.
func (s *Service) ProvisionStaff(ctx context.Context, reg StaffRegistration) (*models.User, error) {
	if !reg.Role.IsStaff() {
		return nil, ErrInvalidStaffRole
	}

	exists, err := s.users.ExistsByEmail(ctx, reg.Email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("register %s: %w", reg.Email, repository.ErrDuplicateIdentity)
	}

	user, err := s.newStaffUser(reg)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Str("email", user.Email).Str("role", string(user.Role)).Msg("registered staff identity")
	return user, nil
}

func (s *Service) newStaffUser(reg StaffRegistration) (*models.User, error) {
	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return nil, err
	}
	return &models.User{
		Email:        reg.Email,
		PasswordHash: &hash,
		Name:         optional(reg.Name),
		Role:         reg.Role,
		AuthSource:   models.AuthSourceLocal,
	}, nil
}

// Login verifies local credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrIdentityNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup identity: %w", err)
	}

	if user.AuthSource != models.AuthSourceLocal || user.PasswordHash == nil || *user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(*user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{Token: token, User: user}, nil
}
