// Package models defines the entities of the concert platform and the local records kept by the client.
//
// The package contains two categories of types:
//
// 1. API entities: transient copies of records owned by the remote API
//   - [User] : accounts with an admin [Flag], optional avatar and description
//   - [Concert] : listings with acceptance state, owner and ticket categories
//   - [Ticket] : a purchased ticket with its category and concert
//   - [TicketCategory] : a named price tier
//   - [Comment] : a remark left on a concert
//
// Lists arrive as [Page], which tolerates paginated envelopes, bare data envelopes and plain arrays.
// Single records are decoded with [UnmarshalResource], which accepts {"data": {...}} or a bare object.
//
// 2. Local records: rows in the client's SQLite database
//   - [ConcertDraft] : a concert listing that failed to submit and can be retried
//
// Local records implement [Model]; [Repository] defines the CRUD contract for their storage.
package models
