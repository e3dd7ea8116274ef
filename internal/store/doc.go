// Package store holds the client-side state containers shared by the CLI and the TUI.
//
// [Session] is the authentication store: the current user, the bearer token and the authenticated flag.
// Login and registration persist "token", "user_id" and "user"; logout removes them, together with
// "access_token", "id" and the "auth-storage" snapshot, whether or not the API acknowledges it.
//
// [Concerts] keeps three independent slices: the general list, the accepted list and the selected concert.
// Each carries its own loading flag, error message and (for lists) pagination. Accept and delete update the
// lists optimistically; a failed accept is reverted in place, a failed delete triggers a refetch of both lists.
// The accepted list and both paginations are persisted under "concert-storage".
//
// Both stores write through a [Storage], which is SQLite in the application and [MemoryStorage] in tests.
package store
