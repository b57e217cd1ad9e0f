// Package tokens provides store.ResetTokenStore implementations backed by
// Redis and by process memory.
package tokens
