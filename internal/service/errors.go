package service

import "errors"

// Service errors - sentinel errors used across service implementations.
// Callers check for them with errors.Is; the API layer maps each one to an
// HTTP status code.
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Store and domain errors are wrapped with fmt.Errorf("...: %w", err)
// 3. Callers use errors.Is/errors.As to check for specific error conditions
var (
	// ErrInvalidCredentials indicates an unknown email or a wrong password at login.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrIncorrectPassword indicates the current password given for a password
	// change does not match. API layer should map this to HTTP 400 Bad Request.
	ErrIncorrectPassword = errors.New("current password is incorrect")

	// ErrDuplicateUsername indicates the username is already taken, ignoring case.
	ErrDuplicateUsername = errors.New("username is already taken")

	// ErrDuplicateEmail indicates the email is already registered, ignoring case.
	ErrDuplicateEmail = errors.New("email is already registered")

	// ErrDuplicateCategory indicates another category already has the name.
	ErrDuplicateCategory = errors.New("a category with this name already exists")

	// ErrCategoryInUse indicates the category still has books.
	ErrCategoryInUse = errors.New("category has books and cannot be deleted")

	// ErrUnknownCategory indicates a book references a category that does not exist.
	ErrUnknownCategory = errors.New("category does not exist")

	// ErrUnknownBook indicates a review references a book that does not exist.
	ErrUnknownBook = errors.New("book does not exist")

	// ErrDuplicateReview indicates the user already reviewed the book.
	ErrDuplicateReview = errors.New("you have already reviewed this book")

	// ErrNotOwner indicates a user tried to change a review written by someone else.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwner = errors.New("resource is owned by another user")

	// ErrRoleNotAllowed indicates a self-registration asked for a privileged role.
	ErrRoleNotAllowed = errors.New("role cannot be requested at registration")

	// ErrInvalidResetToken covers every way a password reset token can be
	// rejected: bad signature, expired, wrong email or already used.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	// ErrInvalidImage indicates an uploaded image could not be decoded.
	ErrInvalidImage = errors.New("invalid image")
)
