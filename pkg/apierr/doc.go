// Package apierr defines the JSON error envelope returned by every studiodesk
// API endpoint and the typed errors that produce it.
//
// An *Error carries the HTTP status, a stable machine-readable code and a
// printf-style message. Clients and tests are expected to branch on Code; the
// message is localized from the request's Accept-Language header and is meant
// for humans only.
//
//	var ErrQuotaExceeded = apierr.New(http.StatusPaymentRequired, "QUOTA_EXCEEDED", "Quota of %d reached")
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		apierr.Write(w, r, ErrQuotaExceeded.With(10))
//	}
//
// Responses have the shape:
//
//	{"success": false, "message": "Quota of 10 reached", "code": "QUOTA_EXCEEDED"}
//
// Errors compare by code, so a formatted or wrapped copy still matches its
// sentinel with errors.Is.
package apierr
