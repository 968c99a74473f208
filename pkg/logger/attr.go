package logger

import "log/slog"

// Error records err under the key "error". A nil err yields an empty Attr,
// which slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the authenticated user under "user_id". Zero ids are dropped.
func UserID(id int64) slog.Attr {
	if id == 0 {
		return slog.Attr{}
	}
	return slog.Int64("user_id", id)
}

// OrganizationID records the tenant under "organization_id". Zero ids are dropped.
func OrganizationID(id int64) slog.Attr {
	if id == 0 {
		return slog.Attr{}
	}
	return slog.Int64("organization_id", id)
}

// RequestID records the request identifier under "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Code records an API error code under "code".
func Code(code string) slog.Attr {
	return slog.String("code", code)
}

// Component records the component name under "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
