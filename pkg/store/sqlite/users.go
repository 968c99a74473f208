package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/dmitrymomot/studiodesk/pkg/auth"
	"github.com/dmitrymomot/studiodesk/pkg/store"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

func (s *Store) UserOrganizationID(ctx context.Context, userID int64) (int64, error) {
	var orgID sql.NullInt64
	err := s.db.QueryRowContext(ctx, "SELECT organization_id FROM users WHERE id = ?", userID).Scan(&orgID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, tenant.ErrUserNotFound
	}
	return orgID.Int64, err
}

func (s *Store) CredentialsByEmail(ctx context.Context, email string) (*auth.Credentials, error) {
	var (
		creds auth.Credentials
		orgID sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, name, organization_id, role, password_hash FROM users WHERE email = ?",
		auth.NormalizeEmail(email),
	).Scan(&creds.User.ID, &creds.User.Email, &creds.User.Name, &orgID, &creds.User.Role, &creds.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	creds.User.OrganizationID = orgID.Int64
	return &creds, nil
}

func (s *Store) CreateUser(ctx context.Context, nu store.NewUser) (*auth.User, error) {
	email := auth.NormalizeEmail(nu.Email)
	if email == "" {
		return nil, store.ErrInvalidData
	}
	var orgID sql.NullInt64
	if nu.OrganizationID != 0 {
		orgID = sql.NullInt64{Int64: nu.OrganizationID, Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO users (organization_id, email, name, role, password_hash, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		orgID, email, nu.Name, nu.Role, nu.PasswordHash, s.timestamp(),
	)
	switch {
	case isUniqueViolation(err):
		return nil, store.ErrEmailTaken
	case isForeignKeyViolation(err):
		return nil, tenant.ErrOrganizationNotFound
	case err != nil:
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &auth.User{
		ID:             id,
		Email:          email,
		Name:           nu.Name,
		OrganizationID: nu.OrganizationID,
		Role:           nu.Role,
	}, nil
}

// DeleteUser removes a user. Unknown ids are ignored.
func (s *Store) DeleteUser(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", userID)
	return err
}

func (s *Store) CreateProject(ctx context.Context, organizationID int64, name string) (*store.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, store.ErrInvalidData
	}
	now := s.now()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (organization_id, name, created_at) VALUES (?, ?, ?)",
		organizationID, name, formatTime(now),
	)
	if isForeignKeyViolation(err) {
		return nil, tenant.ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &store.Project{ID: id, OrganizationID: organizationID, Name: name, CreatedAt: now.UTC()}, nil
}

func (s *Store) SavePlan(ctx context.Context, plan tenant.Plan) error {
	if plan.ID == "" {
		return store.ErrInvalidData
	}
	features, err := marshalFeatures(plan.Features)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plans (id, name, features, max_users, max_projects, max_storage_gb, price_cents, public)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
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
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, features, max_users, max_projects, max_storage_gb, price_cents, public
		FROM plans
		WHERE public = 1
		ORDER BY price_cents, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := []tenant.Plan{}
	for rows.Next() {
		var (
			p        tenant.Plan
			features string
		)
		if err := rows.Scan(&p.ID, &p.Name, &features, &p.MaxUsers, &p.MaxProjects, &p.MaxStorageGB, &p.PriceCents, &p.Public); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(features), &p.Features); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}
