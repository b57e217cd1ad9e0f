// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// It also provides RunInTransaction and a UnitOfWork built on it, so that
// services can group several repository calls into one atomic commit.
package store
