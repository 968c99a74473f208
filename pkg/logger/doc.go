// Package logger builds *slog.Logger instances with functional options and
// context extractors.
//
// Extractors run on every record and pull request-scoped values out of the
// context, so handlers log with
//
//	log.ErrorContext(ctx, "usage lookup failed", logger.Error(err))
//
// and the record carries request_id and organization_id without the call site
// passing them. The attribute helpers in attr.go keep key names consistent
// and drop empty values.
package logger
