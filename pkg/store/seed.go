package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/studiodesk/pkg/auth"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

// SeedData describes fixture data loaded at startup.
type SeedData struct {
	Plans         []SeedPlan         `yaml:"plans"`
	Organizations []SeedOrganization `yaml:"organizations"`
	Users         []SeedUser         `yaml:"users"`
}

type SeedPlan struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Features     []string `yaml:"features"`
	MaxUsers     int64    `yaml:"max_users"`
	MaxProjects  int64    `yaml:"max_projects"`
	MaxStorageGB int64    `yaml:"max_storage_gb"`
	PriceCents   int64    `yaml:"price_cents"`
	Public       bool     `yaml:"public"`
}

type SeedOrganization struct {
	Name               string     `yaml:"name"`
	Slug               string     `yaml:"slug"`
	Domain             string     `yaml:"domain"`
	Status             string     `yaml:"status"`
	TrialEndsAt        *time.Time `yaml:"trial_ends_at"`
	Plan               string     `yaml:"plan"`
	SubscriptionStatus string     `yaml:"subscription_status"`
}

type SeedUser struct {
	Email        string `yaml:"email"`
	Name         string `yaml:"name"`
	Password     string `yaml:"password"`
	Role         string `yaml:"role"`
	Organization string `yaml:"organization"` // slug, empty for platform users
}

// LoadSeedFile reads seed data from a YAML file.
func LoadSeedFile(path string) (*SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read seed file: %w", err)
	}
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, errors.Join(ErrInvalidData, err)
	}
	return &data, nil
}

// Seed writes plans, organizations with their subscriptions, and users.
// Existing users are skipped so the same file can be applied on every start.
func Seed(ctx context.Context, s Store, data *SeedData) error {
	plans := make(map[string]tenant.Plan, len(data.Plans))
	for _, p := range data.Plans {
		plan := tenant.Plan(p)
		if err := s.SavePlan(ctx, plan); err != nil {
			return fmt.Errorf("store: seed plan %q: %w", p.ID, err)
		}
		plans[p.ID] = plan
	}

	for _, o := range data.Organizations {
		_, err := s.OrganizationBySlug(ctx, o.Slug)
		switch {
		case err == nil:
			continue
		case !errors.Is(err, tenant.ErrOrganizationNotFound):
			return err
		}
		if err := seedOrganization(ctx, s, o, plans); err != nil {
			return err
		}
	}

	for _, u := range data.Users {
		_, err := s.CredentialsByEmail(ctx, u.Email)
		switch {
		case err == nil:
			continue
		case !errors.Is(err, auth.ErrUserNotFound):
			return fmt.Errorf("store: seed user %q: %w", u.Email, err)
		}

		var orgID int64
		if u.Organization != "" {
			org, err := s.OrganizationBySlug(ctx, u.Organization)
			if err != nil {
				return fmt.Errorf("store: seed user %q: %w", u.Email, err)
			}
			orgID = org.ID
		}
		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			return err
		}
		_, err = s.CreateUser(ctx, NewUser{
			OrganizationID: orgID,
			Email:          u.Email,
			Name:           u.Name,
			Role:           u.Role,
			PasswordHash:   hash,
		})
		if err != nil && !errors.Is(err, ErrEmailTaken) {
			return fmt.Errorf("store: seed user %q: %w", u.Email, err)
		}
	}

	return nil
}

func seedOrganization(ctx context.Context, s Store, o SeedOrganization, plans map[string]tenant.Plan) error {
	status := tenant.OrganizationStatus(o.Status)
	if status == "" {
		status = tenant.StatusActive
	}
	if !status.Valid() {
		return errors.Join(ErrInvalidData, fmt.Errorf("organization %q has unknown status %q", o.Slug, o.Status))
	}
	org := &tenant.Organization{
		Name:        o.Name,
		Slug:        o.Slug,
		Domain:      o.Domain,
		Status:      status,
		TrialEndsAt: o.TrialEndsAt,
	}
	if err := s.CreateOrganization(ctx, org); err != nil {
		return fmt.Errorf("store: seed organization %q: %w", o.Slug, err)
	}

	if o.Plan == "" {
		return nil
	}
	plan, ok := plans[o.Plan]
	if !ok {
		return errors.Join(ErrInvalidData, fmt.Errorf("organization %q references unknown plan %q", o.Slug, o.Plan))
	}
	subStatus := tenant.SubscriptionStatus(o.SubscriptionStatus)
	if subStatus == "" {
		subStatus = tenant.SubscriptionActive
	}
	if err := s.CreateSubscription(ctx, SubscriptionFromPlan(org.ID, plan, subStatus)); err != nil {
		return fmt.Errorf("store: seed subscription for %q: %w", o.Slug, err)
	}
	return nil
}
