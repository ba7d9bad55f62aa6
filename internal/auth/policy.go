package auth

import (
	"context"
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/librarydirecto/catalogapi/internal/db/models"
)

// Operation identifies a gated endpoint in the policy table.
type Operation string

const (
	OpHome          Operation = "home"
	OpLoginPage     Operation = "login-page"
	OpErrorPage     Operation = "error-page"
	OpLocalLogin    Operation = "auth.login"
	OpRegisterStaff Operation = "auth.register-staff"
	OpCurrentUser   Operation = "users.me"

	OpListBooks  Operation = "books.list"
	OpGetBook    Operation = "books.get"
	OpCreateBook Operation = "books.create"
	OpUpdateBook Operation = "books.update"
	OpDeleteBook Operation = "books.delete"

	OpListCategories Operation = "categories.list"
	OpGetCategory    Operation = "categories.get"
	OpCreateCategory Operation = "categories.create"
	OpUpdateCategory Operation = "categories.update"
	OpDeleteCategory Operation = "categories.delete"

	// OpUnmatched gates requests that hit no route.
	OpUnmatched Operation = "unmatched"
)

// Rule is the access requirement of one operation.
//
// Public operations need no identity. Otherwise an identity is required, and
// when Roles is non-empty one of its authorities must match a listed role.
// Bootstrap operations are public until the BootstrapCheck reports the
// window closed.
type Rule struct {
	Public    bool
	Roles     []models.Role
	Bootstrap bool
}

var (
	staffRoles = []models.Role{models.RoleAdmin, models.RoleLibrarian}
	adminRoles = []models.Role{models.RoleAdmin}
)

// DefaultPolicyTable is the access policy of the catalog API.
var DefaultPolicyTable = map[Operation]Rule{
	OpHome:          {Public: true},
	OpLoginPage:     {Public: true},
	OpErrorPage:     {Public: true},
	OpLocalLogin:    {Public: true},
	OpRegisterStaff: {Roles: adminRoles, Bootstrap: true},
	OpCurrentUser:   {},

	OpListBooks:  {},
	OpGetBook:    {},
	OpCreateBook: {Roles: staffRoles},
	OpUpdateBook: {Roles: staffRoles},
	OpDeleteBook: {Roles: staffRoles},

	OpListCategories: {},
	OpGetCategory:    {},
	OpCreateCategory: {Roles: adminRoles},
	OpUpdateCategory: {Roles: adminRoles},
	OpDeleteCategory: {Roles: adminRoles},

	OpUnmatched: {},
}

// Decision is the outcome of a policy evaluation.
type Decision int

const (
	Allow Decision = iota
	Unauthorized
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Unauthorized:
		return "unauthorized"
	case Forbidden:
		return "forbidden"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// BootstrapCheck reports whether bootstrap operations are still open.
type BootstrapCheck func(ctx context.Context) (bool, error)

// policyModel matches an authority to an operation. Policy lines are
// "p, <authority>, <operation>".
const policyModel = `
[request_definition]
r = sub, op

[policy_definition]
p = sub, op

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.op == p.op
`

// Policy evaluates the operation table. Role requirements are answered by a
// casbin enforcer loaded from the table; it is read-only after construction.
type Policy struct {
	rules     map[Operation]Rule
	enforcer  *casbin.SyncedEnforcer
	bootstrap BootstrapCheck
}

// PolicyOption customises a Policy.
type PolicyOption func(*Policy)

// WithBootstrapCheck installs the predicate consulted for Bootstrap rules.
func WithBootstrapCheck(check BootstrapCheck) PolicyOption {
	return func(p *Policy) {
		p.bootstrap = check
	}
}

// NewPolicy builds a Policy from table.
func NewPolicy(table map[Operation]Rule, opts ...PolicyOption) (*Policy, error) {
	m, err := model.NewModelFromString(policyModel)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	rules := make(map[Operation]Rule, len(table))
	for op, rule := range table {
		for _, role := range rule.Roles {
			if !role.Valid() {
				return nil, fmt.Errorf("operation %s: unknown role %q", op, role)
			}
			if _, err := enforcer.AddPolicy(AuthorityForRole(role), string(op)); err != nil {
				return nil, fmt.Errorf("add policy %s/%s: %w", role, op, err)
			}
		}
		rule.Roles = append([]models.Role(nil), rule.Roles...)
		rules[op] = rule
	}

	p := &Policy{rules: rules, enforcer: enforcer}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Rule returns the requirement registered for op.
func (p *Policy) Rule(op Operation) (Rule, bool) {
	rule, ok := p.rules[op]
	return rule, ok
}

// Decide is the single gate: it evaluates op for principal (nil when the
// request carries no identity). Unknown operations are forbidden.
func (p *Policy) Decide(ctx context.Context, principal *Principal, op Operation) (Decision, error) {
	rule, ok := p.rules[op]
	if !ok {
		return Forbidden, fmt.Errorf("operation %q is not in the policy table", op)
	}

	if rule.Public && len(rule.Roles) == 0 {
		return Allow, nil
	}

	if rule.Bootstrap && p.bootstrap != nil {
		open, err := p.bootstrap(ctx)
		if err != nil {
			return Unauthorized, fmt.Errorf("bootstrap check for %s: %w", op, err)
		}
		if open {
			return Allow, nil
		}
	}

	if principal == nil {
		return Unauthorized, nil
	}

	if len(rule.Roles) == 0 {
		return Allow, nil
	}

	for _, authority := range principal.Authorities {
		allowed, err := p.enforcer.Enforce(authority, string(op))
		if err != nil {
			return Forbidden, fmt.Errorf("enforce %s on %s: %w", authority, op, err)
		}
		if allowed {
			return Allow, nil
		}
	}
	return Forbidden, nil
}
