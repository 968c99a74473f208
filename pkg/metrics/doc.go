// Package metrics exports HTTP request and API error metrics to Prometheus.
package metrics
