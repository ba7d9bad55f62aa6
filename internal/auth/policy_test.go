package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/librarydirecto/catalogapi/internal/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func principalWithRole(role models.Role) *Principal {
	p := NewPrincipal(&models.User{ID: 1, Email: string(role) + "@example.com", Role: role}, SourceBearer)
	return &p
}

func TestPolicy_Decide(t *testing.T) {
	policy, err := NewPolicy(DefaultPolicyTable, WithBootstrapCheck(func(context.Context) (bool, error) {
		return false, nil
	}))
	require.NoError(t, err)

	anonymous := (*Principal)(nil)
	user := principalWithRole(models.RoleUser)
	librarian := principalWithRole(models.RoleLibrarian)
	admin := principalWithRole(models.RoleAdmin)

	tests := []struct {
		name      string
		op        Operation
		principal *Principal
		want      Decision
	}{
		{name: "home is public", op: OpHome, principal: anonymous, want: Allow},
		{name: "login page is public", op: OpLoginPage, principal: anonymous, want: Allow},
		{name: "error page is public", op: OpErrorPage, principal: anonymous, want: Allow},
		{name: "local login is public", op: OpLocalLogin, principal: anonymous, want: Allow},
		{name: "list books needs identity", op: OpListBooks, principal: anonymous, want: Unauthorized},
		{name: "list books for user", op: OpListBooks, principal: user, want: Allow},
		{name: "current user needs identity", op: OpCurrentUser, principal: anonymous, want: Unauthorized},

		{name: "create book anonymous", op: OpCreateBook, principal: anonymous, want: Unauthorized},
		{name: "create book user", op: OpCreateBook, principal: user, want: Forbidden},
		{name: "create book librarian", op: OpCreateBook, principal: librarian, want: Allow},
		{name: "create book admin", op: OpCreateBook, principal: admin, want: Allow},
		{name: "update book user", op: OpUpdateBook, principal: user, want: Forbidden},
		{name: "delete book librarian", op: OpDeleteBook, principal: librarian, want: Allow},

		{name: "create category librarian", op: OpCreateCategory, principal: librarian, want: Forbidden},
		{name: "update category librarian", op: OpUpdateCategory, principal: librarian, want: Forbidden},
		{name: "delete category user", op: OpDeleteCategory, principal: user, want: Forbidden},
		{name: "create category admin", op: OpCreateCategory, principal: admin, want: Allow},
		{name: "get category user", op: OpGetCategory, principal: user, want: Allow},

		{name: "register staff anonymous after bootstrap", op: OpRegisterStaff, principal: anonymous, want: Unauthorized},
		{name: "register staff librarian", op: OpRegisterStaff, principal: librarian, want: Forbidden},
		{name: "register staff admin", op: OpRegisterStaff, principal: admin, want: Allow},

		{name: "unmatched anonymous", op: OpUnmatched, principal: anonymous, want: Unauthorized},
		{name: "unmatched user", op: OpUnmatched, principal: user, want: Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := policy.Decide(context.Background(), tt.principal, tt.op)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "got %s", got)
		})
	}
}

func TestPolicy_UnknownOperationIsForbidden(t *testing.T) {
	policy, err := NewPolicy(DefaultPolicyTable)
	require.NoError(t, err)

	got, err := policy.Decide(context.Background(), principalWithRole(models.RoleAdmin), Operation("books.burn"))
	assert.Error(t, err)
	assert.Equal(t, Forbidden, got)
}

func TestPolicy_Bootstrap(t *testing.T) {
	open := true
	policy, err := NewPolicy(DefaultPolicyTable, WithBootstrapCheck(func(context.Context) (bool, error) {
		return open, nil
	}))
	require.NoError(t, err)
	ctx := context.Background()

	got, err := policy.Decide(ctx, nil, OpRegisterStaff)
	require.NoError(t, err)
	assert.Equal(t, Allow, got)

	got, err = policy.Decide(ctx, nil, OpCreateCategory)
	require.NoError(t, err)
	assert.Equal(t, Unauthorized, got, "bootstrap only opens bootstrap rules")

	open = false
	got, err = policy.Decide(ctx, nil, OpRegisterStaff)
	require.NoError(t, err)
	assert.Equal(t, Unauthorized, got)
}

func TestPolicy_BootstrapCheckError(t *testing.T) {
	policy, err := NewPolicy(DefaultPolicyTable, WithBootstrapCheck(func(context.Context) (bool, error) {
		return false, errors.New("database unavailable")
	}))
	require.NoError(t, err)

	got, err := policy.Decide(context.Background(), nil, OpRegisterStaff)
	assert.Error(t, err)
	assert.NotEqual(t, Allow, got)
}

func TestPolicy_WithoutBootstrapCheck(t *testing.T) {
	policy, err := NewPolicy(DefaultPolicyTable)
	require.NoError(t, err)

	got, err := policy.Decide(context.Background(), nil, OpRegisterStaff)
	require.NoError(t, err)
	assert.Equal(t, Unauthorized, got)
}

func TestNewPolicy_RejectsUnknownRole(t *testing.T) {
	_, err := NewPolicy(map[Operation]Rule{
		OpCreateBook: {Roles: []models.Role{"SUPERUSER"}},
	})
	assert.Error(t, err)
}

func TestPolicy_ConcurrentDecide(t *testing.T) {
	policy, err := NewPolicy(DefaultPolicyTable)
	require.NoError(t, err)

	librarian := principalWithRole(models.RoleLibrarian)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := policy.Decide(context.Background(), librarian, OpCreateBook)
			assert.NoError(t, err)
			assert.Equal(t, Allow, got)
		}()
	}
	wg.Wait()
}

func TestDecision_String(t *testing.T) {
	assert.Equal(t, "allow", Allow.String())
	assert.Equal(t, "unauthorized", Unauthorized.String())
	assert.Equal(t, "forbidden", Forbidden.String())
}
