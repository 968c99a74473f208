// Package postgres is the production store backed by a pgx connection pool.
package postgres

import (
	"context"
	"embed"
	"io/fs"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/studiodesk/pkg/auth"
	"github.com/dmitrymomot/studiodesk/pkg/pg"
	"github.com/dmitrymomot/studiodesk/pkg/store"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the embedded schema migrations for pg.Migrate.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Store implements store.Store on PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// New wraps an open pool. Close closes the pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Ping(ctx context.Context) error {
	return pg.Healthcheck(s.pool)(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

const organizationColumns = "id, name, slug, domain, status, trial_ends_at, created_at"

func scanOrganization(row pgx.Row) (*tenant.Organization, error) {
	var (
		org    tenant.Organization
		domain *string
		status string
	)
	err := row.Scan(&org.ID, &org.Name, &org.Slug, &domain, &status, &org.TrialEndsAt, &org.CreatedAt)
	if pg.IsNotFoundError(err) {
		return nil, tenant.ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	if domain != nil {
		org.Domain = *domain
	}
	org.Status = tenant.OrganizationStatus(status)
	return &org, nil
}

func (s *Store) OrganizationByID(ctx context.Context, id int64) (*tenant.Organization, error) {
	return scanOrganization(s.pool.QueryRow(ctx,
		"SELECT "+organizationColumns+" FROM organizations WHERE id = $1", id))
}

func (s *Store) OrganizationBySlug(ctx context.Context, slug string) (*tenant.Organization, error) {
	return scanOrganization(s.pool.QueryRow(ctx,
		"SELECT "+organizationColumns+" FROM organizations WHERE slug = $1", slug))
}

// OrganizationByDomain matches active organizations only.
func (s *Store) OrganizationByDomain(ctx context.Context, domain string) (*tenant.Organization, error) {
	return scanOrganization(s.pool.QueryRow(ctx,
		"SELECT "+organizationColumns+" FROM organizations WHERE lower(domain) = lower($1) AND status = 'active'", domain))
}

func (s *Store) CreateOrganization(ctx context.Context, org *tenant.Organization) error {
	if org.Slug == "" {
		return store.ErrInvalidData
	}
	if org.Status == "" {
		org.Status = tenant.StatusActive
	}
	if !org.Status.Valid() {
		return store.ErrInvalidData
	}
	var domain *string
	if org.Domain != "" {
		d := strings.ToLower(org.Domain)
		domain = &d
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO organizations (name, slug, domain, status, trial_ends_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		org.Name, org.Slug, domain, string(org.Status), org.TrialEndsAt,
	).Scan(&org.ID, &org.CreatedAt)
	if pg.IsDuplicateKeyError(err) {
		return store.ErrSlugTaken
	}
	return err
}

func (s *Store) SetOrganizationStatus(ctx context.Context, organizationID int64, status tenant.OrganizationStatus) error {
	if !status.Valid() {
		return store.ErrInvalidData
	}
	tag, err := s.pool.Exec(ctx, "UPDATE organizations SET status = $1 WHERE id = $2", string(status), organizationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrOrganizationNotFound
	}
	return nil
}

// CurrentSubscription returns the newest active or trial subscription.
func (s *Store) CurrentSubscription(ctx context.Context, organizationID int64) (*tenant.Subscription, error) {
	var (
		sub    tenant.Subscription
		status string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, organization_id, plan_id, plan_name, status, features,
		       max_users, max_projects, max_storage_gb, created_at
		FROM subscriptions
		WHERE organization_id = $1 AND status IN ('active', 'trial')
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, organizationID,
	).Scan(&sub.ID, &sub.OrganizationID, &sub.PlanID, &sub.PlanName, &status, &sub.Features,
		&sub.MaxUsers, &sub.MaxProjects, &sub.MaxStorageGB, &sub.CreatedAt)
	if pg.IsNotFoundError(err) {
		return nil, tenant.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}
	sub.Status = tenant.SubscriptionStatus(status)
	return &sub, nil
}

func (s *Store) CreateSubscription(ctx context.Context, sub *tenant.Subscription) error {
	features := sub.Features
	if features == nil {
		features = []string{}
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO subscriptions (organization_id, plan_id, plan_name, status, features,
		                           max_users, max_projects, max_storage_gb)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		sub.OrganizationID, sub.PlanID, sub.PlanName, string(sub.Status), features,
		sub.MaxUsers, sub.MaxProjects, sub.MaxStorageGB,
	).Scan(&sub.ID, &sub.CreatedAt)
	if pg.IsForeignKeyViolationError(err) {
		return tenant.ErrOrganizationNotFound
	}
	return err
}

func (s *Store) Usage(ctx context.Context, organizationID int64) (tenant.Usage, error) {
	var usage tenant.Usage
	err := s.pool.QueryRow(ctx, `
		SELECT
		    (SELECT COUNT(*) FROM users WHERE organization_id = $1),
		    (SELECT COUNT(*) FROM projects WHERE organization_id = $1),
		    COALESCE((SELECT gb FROM storage_usage WHERE organization_id = $1), 0)`,
		organizationID,
	).Scan(&usage.Users, &usage.Projects, &usage.StorageGB)
	return usage, err
}

func (s *Store) RecordStorageUsage(ctx context.Context, organizationID int64, gb float64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO storage_usage (organization_id, gb, updated_at)
		VALUES ($1, GREATEST(0, $2::double precision), now())
		ON CONFLICT (organization_id) DO UPDATE SET
		    gb = GREATEST(0, storage_usage.gb + $2::double precision),
		    updated_at = now()`,
		organizationID, gb,
	)
	if pg.IsForeignKeyViolationError(err) {
		return tenant.ErrOrganizationNotFound
	}
	return err
}

func (s *Store) UserOrganizationID(ctx context.Context, userID int64) (int64, error) {
	var orgID *int64
	err := s.pool.QueryRow(ctx, "SELECT organization_id FROM users WHERE id = $1", userID).Scan(&orgID)
	if pg.IsNotFoundError(err) {
		return 0, tenant.ErrUserNotFound
	}
	if err != nil || orgID == nil {
		return 0, err
	}
	return *orgID, nil
}

func (s *Store) CredentialsByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	var (
		creds auth.Credentials
		orgID *int64
	)
	err := s.pool.QueryRow(ctx,
		"SELECT id, email, name, organization_id, role, password_hash FROM users WHERE email = $1",
		auth.NormalizeEmail(email),
	).Scan(&creds.User.ID, &creds.User.Email, &creds.User.Name, &orgID, &creds.User.Role, &creds.PasswordHash)
	if pg.IsNotFoundError(err) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if orgID != nil {
		creds.User.OrganizationID = *orgID
	}
	return &creds, nil
}

func (s *Store) CreateUser(ctx context.Context, nu store.NewUser) (*auth.User, error) {
	email := auth.NormalizeEmail(nu.Email)
	if email == "" {
		return nil, store.ErrInvalidData
	}
	var orgID *int64
	if nu.OrganizationID != 0 {
		orgID = &nu.OrganizationID
	}

	user := &auth.User{Email: email, Name: nu.Name, OrganizationID: nu.OrganizationID, Role: nu.Role}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (organization_id, email, name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		orgID, email, nu.Name, nu.Role, nu.PasswordHash,
	).Scan(&user.ID)
	switch {
	case pg.IsDuplicateKeyError(err):
		return nil, store.ErrEmailTaken
	case pg.IsForeignKeyViolationError(err):
		return nil, tenant.ErrOrganizationNotFound
	case err != nil:
		return nil, err
	}
	return user, nil
}

func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	return err
}

func (s *Store) CreateProject(ctx context.Context, organizationID int64, name string) (*store.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, store.ErrInvalidData
	}
	p := &store.Project{OrganizationID: organizationID, Name: name}
	err := s.pool.QueryRow(ctx,
		"INSERT INTO projects (organization_id, name) VALUES ($1, $2) RETURNING id, created_at",
		organizationID, name,
	).Scan(&p.ID, &p.CreatedAt)
	if pg.IsForeignKeyViolationError(err) {
		return nil, tenant.ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) SavePlan(ctx context.Context, plan tenant.Plan) error {
	if plan.ID == "" {
		return store.ErrInvalidData
	}
	features := plan.Features
	if features == nil {
		features = []string{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO plans (id, name, features, max_users, max_projects, max_storage_gb, price_cents, public)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
		    name = excluded.name,
		    features = excluded.features,
		    max_users = excluded.max_users,
		    max_projects = excluded.max_projects,
		    max_storage_gb = excluded.max_storage_gb,
		    price_cents = excluded.price_cents,
		    public = excluded.public`,
		plan.ID, plan.Name, features, plan.MaxUsers, plan.MaxProjects, plan.MaxStorageGB, plan.PriceCents, plan.Public,
	)
	return err
}

func (s *Store) Plans(ctx context.Context) ([]tenant.Plan, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, features, max_users, max_projects, max_storage_gb, price_cents, public
		FROM plans
		WHERE public
		ORDER BY price_cents, id`)
	if err != nil {
		return nil, err
	}
	plans, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (tenant.Plan, error) {
		var p tenant.Plan
		err := row.Scan(&p.ID, &p.Name, &p.Features, &p.MaxUsers, &p.MaxProjects, &p.MaxStorageGB, &p.PriceCents, &p.Public)
		return p, err
	})
	if err != nil {
		return nil, err
	}
	return plans, nil
}
