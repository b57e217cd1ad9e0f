// Package api handles incoming HTTP requests, request validation and response
// formatting for the book review endpoints. Handlers translate HTTP concerns
// into calls on the service layer and map service errors to status codes in
// one place (errors.go).
package api
