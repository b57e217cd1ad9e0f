// Package domain contains the core entities of the book review platform:
// users, books, categories and reviews, plus the Rating and Role value types.
//
// Entities validate their own invariants through Validate methods and the
// New* constructors. Persistence concerns live in the store package; nothing
// here depends on the database or on HTTP.
package domain
