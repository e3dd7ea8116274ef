// Package repositories implements SQLite persistence for the client's local state.
//
// Key Implementations:
//   - [StorageRepository] : string key/value table standing in for browser local storage.
//     Holds the bearer token, the serialized user and the store snapshots ("auth-storage", "concert-storage").
//   - [DraftRepository] : concert listings that failed to submit, implementing [models.Repository].
//
// The schema lives in the shared package's embedded migrations and is applied by [shared.OpenStorage].
package repositories
