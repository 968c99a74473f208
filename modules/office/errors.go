package office

import (
	"net/http"

	"github.com/dmitrymomot/studiodesk/pkg/apierr"
)

var (
	ErrInvalidBody   = apierr.New(http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	ErrNotFound      = apierr.New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrEmailTaken    = apierr.New(http.StatusConflict, "EMAIL_TAKEN", "Email is already registered")
	ErrInvalidRole   = apierr.New(http.StatusUnprocessableEntity, "INVALID_ROLE", "Unknown or forbidden role")
	ErrInvalidStatus = apierr.New(http.StatusUnprocessableEntity, "INVALID_STATUS", "Unknown organization status")
)
