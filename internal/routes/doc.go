// Package routes maps client paths ("/concert/12", "/profile") to pages and guards them.
//
// A [Router] holds an ordered list of patterns. Segments starting with ":" capture a parameter.
// Each pattern carries a [Guard]:
//
//   - [Public] pages are always reachable.
//   - [GuestOnly] pages (login, register) send authenticated users to /main.
//   - [Protected] pages send anonymous users to /login.
//   - [Admin] pages additionally send non-administrators to /main.
//
// Guards consult an [Authenticator] on every navigation, so a token removed from storage
// by another process is noticed on the next page change.
//
// [Middleware] wraps handlers in reverse order (last added executes first), as with net/http.
package routes
