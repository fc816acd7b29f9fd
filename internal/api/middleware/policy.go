package middleware

import (
	"errors"
	"path"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/payrollhq/payroll-system/internal/api/metrics"
	"github.com/payrollhq/payroll-system/internal/core/domain"
)

type requirementKind int

const (
	kindAuthenticated requirementKind = iota
	kindPublic
	kindRole
)

// Requirement is what a route demands of the caller.
type Requirement struct {
	kind requirementKind
	role string
}

// Public lets anyone through, anonymous callers included.
func Public() Requirement { return Requirement{kind: kindPublic} }

// AuthenticatedAny requires a verified identity of any role.
func AuthenticatedAny() Requirement { return Requirement{kind: kindAuthenticated} }

// RoleRequired requires a verified identity holding role.
func RoleRequired(role string) Requirement {
	return Requirement{kind: kindRole, role: domain.Authority(role)}
}

func (r Requirement) String() string {
	switch r.kind {
	case kindPublic:
		return "public"
	case kindRole:
		return "role:" + r.role
	default:
		return "authenticated"
	}
}

// Check returns nil when id satisfies r, domain.ErrUnauthenticated when a
// verified identity is needed but absent and domain.ErrForbidden when the
// identity lacks the role.
func (r Requirement) Check(id *domain.Identity) error {
	if r.kind == kindPublic {
		return nil
	}
	if id == nil {
		return domain.ErrUnauthenticated
	}
	if r.kind == kindRole && !domain.HasRole(id.Role, r.role) {
		return domain.ErrForbidden
	}
	return nil
}

// Rule binds a path pattern to a requirement. Patterns are exact paths, may
// use "*" for exactly one segment and may end in "/**" to cover the prefix
// itself and everything below it.
type Rule struct {
	Pattern     string
	Requirement Requirement
}

// Policy is an ordered rule table. The first matching rule wins; a path no
// rule matches requires an authenticated caller.
type Policy struct {
	rules []Rule
}

func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: rules}
}

// Match returns the requirement for urlPath.
func (p *Policy) Match(urlPath string) Requirement {
	clean := path.Clean("/" + urlPath)
	for _, rule := range p.rules {
		if matchPattern(rule.Pattern, clean) {
			return rule.Requirement
		}
	}
	return AuthenticatedAny()
}

// DefaultPolicy is the route table of the payroll API.
func DefaultPolicy() *Policy {
	rules := []Rule{
		{"/health/**", Public()},
		{"/metrics", Public()},
		{"/auth/**", Public()},
		{"/admin/**", RoleRequired(domain.RoleAdmin)},
		{"/employees/**", Public()},
	}
	for _, p := range []string{
		"/swagger-ui.html",
		"/api-docs-ui/**",
		"/api-docs-ui.html",
		"/swagger-ui/**",
		"/v3/api-docs/**",
		"/v3/api-docs.yaml",
		"/v3/api-docs/swagger-config",
		"/swagger-resources/**",
		"/webjars/**",
	} {
		rules = append(rules, Rule{p, Public()})
	}
	return NewPolicy(rules...)
}

// DenialRecorder receives policy rejections for the audit trail.
type DenialRecorder interface {
	RecordDenied(caller *domain.Identity, action, resource, reason string)
}

// Authorize enforces p before the handler runs. It must be registered after
// Authenticate. denials may be nil.
func Authorize(p *Policy, denials DenialRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := p.Match(c.Request().URL.Path)
			id := IdentityFrom(c)

			err := req.Check(id)
			if err == nil {
				metrics.PolicyDecisionsTotal.WithLabelValues(req.String(), "allowed").Inc()
				return next(c)
			}

			result := "forbidden"
			if errors.Is(err, domain.ErrUnauthenticated) {
				result = "unauthenticated"
			}
			metrics.PolicyDecisionsTotal.WithLabelValues(req.String(), result).Inc()
			if denials != nil {
				denials.RecordDenied(id, c.Request().Method, c.Request().URL.Path, "policy:"+req.String())
			}
			return err
		}
	}
}

func matchPattern(pattern, urlPath string) bool {
	pp := segments(pattern)
	sp := segments(urlPath)

	for i, seg := range pp {
		if seg == "**" && i == len(pp)-1 {
			return len(sp) >= i
		}
		if i >= len(sp) {
			return false
		}
		if seg != "*" && seg != sp[i] {
			return false
		}
	}
	return len(pp) == len(sp)
}

func segments(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
