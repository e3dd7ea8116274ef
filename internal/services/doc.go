// Package services is the typed client for the concert platform's REST API.
//
// # Client
//
// [Client] owns the base URL, timeout and default headers. Every request carries
// "Accept: application/json" and an X-Request-ID, and a bearer token when [ClientOpts.Token]
// returns one. The token is attached with [oauth2.Transport] over a static token source,
// so anonymous calls (login, register) go out without an Authorization header.
//
// # Resource Services
//
// One service per REST resource, each a thin layer of fixed paths over the client:
//   - [AuthService] : POST /login, POST /register (multipart), GET /logout
//   - [UserService] : /users, /users/{id}, /users/{id}/tickets, /users/{id}/ticket-categories
//   - [ConcertService] : /concerts, /concerts/{id}, /concerts/{id}/accept, /concerts/{id}/comments, /concerts/{id}/user
//   - [TicketService] : /tickets
//   - [TicketCategoryService] : /ticket-categories
//   - [CommentService] : /comments
//   - [APIService] : raw GET/POST for debugging
//
// # Error Handling
//
// Non-2xx responses become [*APIError], which unwraps to a sentinel from the shared package:
//   - 401 : [shared.ErrNotAuthenticated] (the client's unauthorized hook runs first)
//   - 403 : [shared.ErrForbidden]
//   - 422 : [shared.ErrValidation], with field errors in [APIError.Errors]
//   - 5xx : [shared.ErrServiceUnavailable]
//   - other : [shared.ErrAPIRequest]
//
// Transport failures wrap [shared.ErrTimeout] or [shared.ErrServiceUnavailable].
// [Describe] turns any of these into a single line for display.
package services
