package office

import (
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/dmitrymomot/studiodesk/pkg/apierr"
	"github.com/dmitrymomot/studiodesk/pkg/auth"
	"github.com/dmitrymomot/studiodesk/pkg/logger"
	"github.com/dmitrymomot/studiodesk/pkg/rbac"
	"github.com/dmitrymomot/studiodesk/pkg/store"
	"github.com/dmitrymomot/studiodesk/pkg/tenant"
)

const minPasswordLength = 8

type handlers struct {
	store      store.Store
	tokens     *auth.TokenService
	authz      *rbac.Authorizer
	auth       *auth.Authenticator
	cache      tenant.Cache
	logger     *slog.Logger
	errors     apierr.HandlerFunc
	tenantOpts []tenant.Option
}

// fail logs server errors and writes the error response.
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if apierr.IsServerError(err) {
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			logger.Error(err),
		)
	}
	h.errors(w, r, err)
}

func (h *handlers) ping(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, "pong")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string     `json:"token"`
	User  *auth.User `json:"user"`
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	token, err := h.tokens.Issue(user)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	auth.SetTokenCookie(w, r, token)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

func (h *handlers) plans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.store.Plans(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (h *handlers) tenant(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tenant.MustFromContext(r.Context()))
}

type limits struct {
	Users     int64 `json:"users"`
	Projects  int64 `json:"projects"`
	StorageGB int64 `json:"storageGb"`
}

type usageResponse struct {
	Usage  tenant.Usage `json:"usage"`
	Limits *limits      `json:"limits"`
}

func (h *handlers) usage(w http.ResponseWriter, r *http.Request) {
	tc := tenant.MustFromContext(r.Context())

	usage, err := h.store.Usage(r.Context(), tc.OrganizationID)
	if err != nil {
		h.fail(w, r, tenant.ErrLimitsCheck.Wrap(err))
		return
	}

	resp := usageResponse{Usage: usage}
	if sub := tc.Subscription; sub != nil {
		resp.Limits = &limits{Users: sub.MaxUsers, Projects: sub.MaxProjects, StorageGB: sub.MaxStorageGB}
	}
	writeJSON(w, http.StatusOK, resp)
}

type createProjectRequest struct {
	Name string `json:"name"`
}

func (h *handlers) createProject(w http.ResponseWriter, r *http.Request) {
	tc := tenant.MustFromContext(r.Context())

	var req createProjectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		h.fail(w, r, ErrInvalidBody.Wrap(errors.New("name is required")))
		return
	}

	project, err := h.store.CreateProject(r.Context(), tc.OrganizationID, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

type createUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

func (h *handlers) createUser(w http.ResponseWriter, r *http.Request) {
	tc := tenant.MustFromContext(r.Context())

	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if auth.NormalizeEmail(req.Email) == "" || len(req.Password) < minPasswordLength {
		h.fail(w, r, ErrInvalidBody.Wrap(errors.New("email and a password of at least 8 characters are required")))
		return
	}
	if req.Role == rbac.RoleSuperAdmin || !slices.Contains(h.authz.Roles(), req.Role) {
		h.fail(w, r, ErrInvalidRole)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	user, err := h.store.CreateUser(r.Context(), store.NewUser{
		OrganizationID: tc.OrganizationID,
		Email:          req.Email,
		Name:           req.Name,
		Role:           req.Role,
		PasswordHash:   hash,
	})
	switch {
	case errors.Is(err, store.ErrEmailTaken):
		h.fail(w, r, ErrEmailTaken)
		return
	case errors.Is(err, store.ErrInvalidData):
		h.fail(w, r, ErrInvalidBody.Wrap(err))
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user created", slog.Int64("created_user_id", user.ID), slog.String("role", user.Role))
	writeJSON(w, http.StatusCreated, user)
}

func (h *handlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	tc := tenant.MustFromContext(r.Context())

	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if tc.User != nil && tc.User.ID == id {
		h.fail(w, r, ErrInvalidBody.Wrap(errors.New("cannot delete yourself")))
		return
	}

	orgID, err := h.store.UserOrganizationID(r.Context(), id)
	switch {
	case errors.Is(err, tenant.ErrUserNotFound), err == nil && orgID != tc.OrganizationID:
		h.fail(w, r, ErrNotFound)
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}

	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type storageRequest struct {
	SizeGB float64 `json:"sizeGb"`
}

func (h *handlers) recordUpload(w http.ResponseWriter, r *http.Request) {
	h.recordStorage(w, r, 1)
}

func (h *handlers) releaseStorage(w http.ResponseWriter, r *http.Request) {
	h.recordStorage(w, r, -1)
}

func (h *handlers) recordStorage(w http.ResponseWriter, r *http.Request, sign float64) {
	tc := tenant.MustFromContext(r.Context())

	var req storageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.SizeGB <= 0 {
		h.fail(w, r, ErrInvalidBody.Wrap(errors.New("sizeGb must be positive")))
		return
	}

	if err := h.store.RecordStorageUsage(r.Context(), tc.OrganizationID, sign*req.SizeGB); err != nil {
		h.fail(w, r, err)
		return
	}
	usage, err := h.store.Usage(r.Context(), tc.OrganizationID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, usage)
}

type adminOrganizationResponse struct {
	Organization *tenant.Organization `json:"organization"`
	Subscription *tenant.Subscription `json:"subscription"`
	Usage        tenant.Usage         `json:"usage"`
}

func (h *handlers) adminOrganization(w http.ResponseWriter, r *http.Request) {
	org, ok := h.organization(w, r)
	if !ok {
		return
	}

	sub, err := h.store.CurrentSubscription(r.Context(), org.ID)
	if err != nil && !errors.Is(err, tenant.ErrSubscriptionNotFound) {
		h.fail(w, r, err)
		return
	}
	usage, err := h.store.Usage(r.Context(), org.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, adminOrganizationResponse{Organization: org, Subscription: sub, Usage: usage})
}

type statusRequest struct {
	Status tenant.OrganizationStatus `json:"status"`
}

func (h *handlers) adminSetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if !req.Status.Valid() {
		h.fail(w, r, ErrInvalidStatus)
		return
	}

	org, ok := h.organization(w, r)
	if !ok {
		return
	}
	if err := h.store.SetOrganizationStatus(r.Context(), org.ID, req.Status); err != nil {
		h.fail(w, r, err)
		return
	}
	tenant.Invalidate(r.Context(), h.cache, org)

	h.logger.InfoContext(r.Context(), "organization status changed",
		logger.OrganizationID(org.ID),
		slog.String("from", string(org.Status)),
		slog.String("to", string(req.Status)),
	)
	org.Status = req.Status
	writeJSON(w, http.StatusOK, org)
}

// organization loads the {id} organization, writing a 404 when it does not exist.
func (h *handlers) organization(w http.ResponseWriter, r *http.Request) (*tenant.Organization, bool) {
	id, err := idParam(r, "id")
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	org, err := h.store.OrganizationByID(r.Context(), id)
	switch {
	case errors.Is(err, tenant.ErrOrganizationNotFound):
		h.fail(w, r, tenant.ErrTenantNotFound)
		return nil, false
	case err != nil:
		h.fail(w, r, err)
		return nil, false
	}
	return org, true
}
