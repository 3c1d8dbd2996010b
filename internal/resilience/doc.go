// Package resilience groups the fault tolerance helpers used by the dispatch
// pipeline.
//
//   - circuitbreaker guards the database and the Redis queue so that an
//     unavailable store fails fast instead of piling up blocked workers.
//   - retry computes the backoff schedule applied to undelivered
//     notifications and wraps transient infrastructure calls.
//
// Channel transports are deliberately not wrapped in a breaker: every attempt
// walks the whole chain in the same order.
//
//	policy := retry.DefaultPolicy()
//	delay, ok := policy.Next(attempts)
package resilience
