// Package gateway is the HTTP boundary to the admin API.
//
// HTTPClient signs every request except register and login with the bearer
// token taken from a TokenSource, tags it with an X-Request-ID, passes it
// through a rate limiter and a circuit breaker, and maps failures to the
// sentinel errors of this package:
//
//   - ErrUnavailable: transport failure, 5xx, or open circuit
//   - ErrUnauthorized: 401/403
//   - ErrSessionExpired: 401 whose message blames the token
//
// A session-expired answer additionally triggers the handler installed with
// WithSessionExpiredHandler. The check lives in the single request path, so
// every endpoint gets it.
package gateway
