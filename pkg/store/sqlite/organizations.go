package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/dmitrymomot/studiodesk/pkg/store"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

const organizationColumns = "id, name, slug, domain, status, trial_ends_at, created_at"

type scanner interface {
	Scan(dest ...any) error
}

func scanOrganization(row scanner) (*tenant.Organization, error) {
	var (
		org       tenant.Organization
		domain    sql.NullString
		trialEnds sql.NullString
		createdAt string
	)
	err := row.Scan(&org.ID, &org.Name, &org.Slug, &domain, &org.Status, &trialEnds, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tenant.ErrOrganizationNotFound
	}
	if err != nil {
		return nil, err
	}

	org.Domain = domain.String
	if org.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if trialEnds.Valid {
		t, err := parseTime(trialEnds.String)
		if err != nil {
			return nil, err
		}
		org.TrialEndsAt = &t
	}
	return &org, nil
}

func (s *Store) OrganizationByID(ctx context.Context, id int64) (*tenant.Organization, error) {
	return scanOrganization(s.db.QueryRowContext(ctx,
		"SELECT "+organizationColumns+" FROM organizations WHERE id = ?", id))
}

func (s *Store) OrganizationBySlug(ctx context.Context, slug string) (*tenant.Organization, error) {
	return scanOrganization(s.db.QueryRowContext(ctx,
		"SELECT "+organizationColumns+" FROM organizations WHERE slug = ?", slug))
}

// OrganizationByDomain matches active organizations only.
func (s *Store) OrganizationByDomain(ctx context.Context, domain string) (*tenant.Organization, error) {
	return scanOrganization(s.db.QueryRowContext(ctx,
		"SELECT "+organizationColumns+" FROM organizations WHERE lower(domain) = lower(?) AND status = 'active'", domain))
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

	var domain, trialEnds sql.NullString
	if org.Domain != "" {
		domain = sql.NullString{String: strings.ToLower(org.Domain), Valid: true}
	}
	if org.TrialEndsAt != nil {
		trialEnds = sql.NullString{String: formatTime(*org.TrialEndsAt), Valid: true}
	}
	now := s.now()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO organizations (name, slug, domain, status, trial_ends_at, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		org.Name, org.Slug, domain, string(org.Status), trialEnds, formatTime(now),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrSlugTaken
		}
		return err
	}
	if org.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	org.CreatedAt = now.UTC()
	return nil
}

// SetOrganizationStatus changes an organization's lifecycle status.
func (s *Store) SetOrganizationStatus(ctx context.Context, organizationID int64, status tenant.OrganizationStatus) error {
	if !status.Valid() {
		return store.ErrInvalidData
	}
	res, err := s.db.ExecContext(ctx, "UPDATE organizations SET status = ? WHERE id = ?", string(status), organizationID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return tenant.ErrOrganizationNotFound
	}
	return nil
}

// CurrentSubscription returns the newest active or trial subscription.
func (s *Store) CurrentSubscription(ctx context.Context, organizationID int64) (*tenant.Subscription, error) {
	var (
		sub       tenant.Subscription
		features  string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, organization_id, plan_id, plan_name, status, features,
		       max_users, max_projects, max_storage_gb, created_at
		FROM subscriptions
		WHERE organization_id = ? AND status IN ('active', 'trial')
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, organizationID,
	).Scan(&sub.ID, &sub.OrganizationID, &sub.PlanID, &sub.PlanName, &sub.Status, &features,
		&sub.MaxUsers, &sub.MaxProjects, &sub.MaxStorageGB, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tenant.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(features), &sub.Features); err != nil {
		return nil, err
	}
	if sub.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *Store) CreateSubscription(ctx context.Context, sub *tenant.Subscription) error {
	features, err := marshalFeatures(sub.Features)
	if err != nil {
		return err
	}
	now := s.now()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO subscriptions (organization_id, plan_id, plan_name, status, features,
		                           max_users, max_projects, max_storage_gb, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.OrganizationID, sub.PlanID, sub.PlanName, string(sub.Status), features,
		sub.MaxUsers, sub.MaxProjects, sub.MaxStorageGB, formatTime(now),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return tenant.ErrOrganizationNotFound
		}
		return err
	}
	if sub.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	sub.CreatedAt = now.UTC()
	return nil
}

func (s *Store) Usage(ctx context.Context, organizationID int64) (tenant.Usage, error) {
	var usage tenant.Usage
	err := s.db.QueryRowContext(ctx, `
		SELECT
		    (SELECT COUNT(*) FROM users WHERE organization_id = ?1),
		    (SELECT COUNT(*) FROM projects WHERE organization_id = ?1),
		    COALESCE((SELECT gb FROM storage_usage WHERE organization_id = ?1), 0)`,
		organizationID,
	).Scan(&usage.Users, &usage.Projects, &usage.StorageGB)
	return usage, err
}

func (s *Store) RecordStorageUsage(ctx context.Context, organizationID int64, gb float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO storage_usage (organization_id, gb, updated_at)
		VALUES (?1, MAX(0, ?2), ?3)
		ON CONFLICT (organization_id) DO UPDATE SET
		    gb = MAX(0, storage_usage.gb + ?2),
		    updated_at = ?3`,
		organizationID, gb, s.timestamp(),
	)
	if isForeignKeyViolation(err) {
		return tenant.ErrOrganizationNotFound
	}
	return err
}

func marshalFeatures(features []string) (string, error) {
	if features == nil {
		features = []string{}
	}
	b, err := json.Marshal(features)
	return string(b), err
}
