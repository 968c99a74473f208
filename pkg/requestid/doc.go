// Package requestid tags every request with a correlation id that is
// propagated through the context and logged as request_id.
package requestid
