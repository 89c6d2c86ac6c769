// Package api hosts the HTTP server, middleware, and handlers of the relay.
// Notable routes:
//   - GET / renders the README as the landing page.
//   - GET /healthz / readyz for probes.
//   - GET /metrics for Prometheus scraping.
//   - /api/... imitates the image-generation API; callers pass their key as
//     the `key` query parameter.
package api
