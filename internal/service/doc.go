// Package service contains the application use cases: registration and
// login, password resets, profiles, the book catalogue, categories and
// reviews.
//
// Services receive their stores, the unit of work and cross-cutting
// collaborators (password hasher, JWT service, object store) through their
// constructors and never depend on a concrete infrastructure package.
//
// Error handling:
//   - Expected failures are returned as the sentinels in errors.go, or as
//     domain and store errors, without extra wrapping.
//   - Unexpected failures are wrapped with fmt.Errorf("failed to ...: %w", err).
//   - The API layer maps every sentinel to an HTTP status.
//
// Writes that read and then modify state run inside store.UnitOfWork.Do so
// that uniqueness checks and the write happen in one transaction.
package service
