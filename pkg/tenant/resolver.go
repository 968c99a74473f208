package tenant

import (
	"errors"
	"net"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/studiodesk/pkg/auth"
)

// Identifier is the outcome of tenant resolution: a slug still to be looked
// up, an organization id, or neither.
type Identifier struct {
	Slug string
	ID   int64
}

// IsZero reports whether nothing was resolved.
func (i Identifier) IsZero() bool {
	return i.Slug == "" && i.ID == 0
}

// Resolver extracts a tenant identifier from a request.
// It returns a zero Identifier when the request carries no hint.
type Resolver interface {
	Resolve(r *http.Request) (Identifier, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(r *http.Request) (Identifier, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(r *http.Request) (Identifier, error) {
	return f(r)
}

// DefaultReservedSubdomains are host labels never treated as a tenant.
var DefaultReservedSubdomains = []string{"www", "app"}

// SubdomainResolver takes the first label of hosts with at least three labels.
type SubdomainResolver struct {
	Reserved []string
}

// NewSubdomainResolver creates a subdomain resolver. With no arguments the
// DefaultReservedSubdomains are rejected.
func NewSubdomainResolver(reserved ...string) *SubdomainResolver {
	if len(reserved) == 0 {
		reserved = DefaultReservedSubdomains
	}
	return &SubdomainResolver{Reserved: reserved}
}

// Resolve extracts "acme" from "acme.studiodesk.io".
func (s *SubdomainResolver) Resolve(r *http.Request) (Identifier, error) {
	labels := strings.Split(hostname(r), ".")
	if len(labels) < 3 || labels[0] == "" {
		return Identifier{}, nil
	}
	sub := strings.ToLower(labels[0])
	if slices.Contains(s.Reserved, sub) {
		return Identifier{}, nil
	}
	return Identifier{Slug: sub}, nil
}

// DomainResolver maps a custom domain to an active organization's slug.
type DomainResolver struct {
	Store OrganizationStore
}

// NewDomainResolver creates a custom domain resolver.
func NewDomainResolver(store OrganizationStore) *DomainResolver {
	return &DomainResolver{Store: store}
}

// Resolve looks up the full host name.
func (d *DomainResolver) Resolve(r *http.Request) (Identifier, error) {
	host := hostname(r)
	if host == "" {
		return Identifier{}, nil
	}
	org, err := d.Store.OrganizationByDomain(r.Context(), host)
	if err != nil {
		if errors.Is(err, ErrOrganizationNotFound) {
			return Identifier{}, nil
		}
		return Identifier{}, err
	}
	if org.Status != StatusActive {
		return Identifier{}, nil
	}
	return Identifier{Slug: org.Slug}, nil
}

// DefaultSlugParam is the route parameter carrying an organization slug.
const DefaultSlugParam = "orgSlug"

// DefaultPathPrefix is the path prefix of slug-scoped routes.
const DefaultPathPrefix = "/org/"

// PathResolver reads the slug from the chi route parameter. When the
// middleware runs before routing, it falls back to the segment after Prefix.
type PathResolver struct {
	Param  string
	Prefix string
}

// NewPathResolver creates a resolver for "/org/{orgSlug}/..." routes.
func NewPathResolver() *PathResolver {
	return &PathResolver{Param: DefaultSlugParam, Prefix: DefaultPathPrefix}
}

// Resolve returns the literal slug from the path.
func (p *PathResolver) Resolve(r *http.Request) (Identifier, error) {
	if slug := chi.URLParam(r, p.Param); slug != "" {
		return Identifier{Slug: slug}, nil
	}
	if p.Prefix == "" {
		return Identifier{}, nil
	}
	rest, ok := strings.CutPrefix(r.URL.Path, p.Prefix)
	if !ok {
		return Identifier{}, nil
	}
	slug, _, _ := strings.Cut(rest, "/")
	return Identifier{Slug: slug}, nil
}

// UserResolver uses the authenticated user's stored organization id.
type UserResolver struct{}

// Resolve returns the user's organization id, bypassing slug lookup.
func (UserResolver) Resolve(r *http.Request) (Identifier, error) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || !user.HasOrganization() {
		return Identifier{}, nil
	}
	return Identifier{ID: user.OrganizationID}, nil
}

// CompositeResolver runs resolvers in order and returns the first hit.
// An error stops the chain: a failed lookup must not fall through to a
// lower-priority source.
type CompositeResolver struct {
	Resolvers []Resolver
}

// NewCompositeResolver creates a composite resolver.
func NewCompositeResolver(resolvers ...Resolver) *CompositeResolver {
	return &CompositeResolver{Resolvers: resolvers}
}

// Resolve implements Resolver.
func (c *CompositeResolver) Resolve(r *http.Request) (Identifier, error) {
	for _, resolver := range c.Resolvers {
		id, err := resolver.Resolve(r)
		if err != nil {
			return Identifier{}, err
		}
		if !id.IsZero() {
			return id, nil
		}
	}
	return Identifier{}, nil
}

// DefaultResolver builds the standard chain:
// subdomain, custom domain, path slug, then the user's home organization.
func DefaultResolver(store OrganizationStore) Resolver {
	return NewCompositeResolver(
		NewSubdomainResolver(),
		NewDomainResolver(store),
		NewPathResolver(),
		UserResolver{},
	)
}

// hostname returns the lowercased request host without port.
func hostname(r *http.Request) string {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(strings.TrimSuffix(host, "."))
}
