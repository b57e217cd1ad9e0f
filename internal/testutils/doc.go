// Package testutils provides in-memory fakes and helpers for tests.
//
// MemoryDB implements every store interface and the unit of work in process,
// enforcing the same uniqueness, foreign key and cascade rules as the
// PostgreSQL schema. NewServices wires the real services to it:
//
//	svc := testutils.NewServices(t)
//	cat := testutils.SeedCategory(t, svc.Stores(), "Fiction")
//	book, err := svc.Books.Create(ctx, service.BookInput{...})
//
// For HTTP tests, start a server with CreateTestServer and send requests
// with DoJSON, authenticating with a token from AccessToken:
//
//	resp := testutils.DoJSON(t, server, http.MethodGet, "/api/book", nil,
//	    testutils.WithAuth(testutils.AccessToken(t, svc.JWT, user)))
//	books := testutils.DecodeJSON[[]service.BookDTO](t, resp)
//
// The package never talks to a real database, Redis or object store.
package testutils
