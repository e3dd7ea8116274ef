// package models defines the entities exchanged with the concert API and the records kept locally
package models

import (
	"time"
)

// Model defines the base interface for records persisted in the local database.
// Implementations include ConcertDraft.
type Model interface {
	Identifier() string                       // Identifier returns the unique identifier for this record
	Timestamps() (created, updated time.Time) // Timestamps returns when this record was created and last updated
	Validate() error                          // Validate checks if the record's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new record into the database
	Get(id string) (T, error)                  // Get retrieves a record by its ID
	Update(model T) error                      // Update modifies an existing record in the database
	Delete(id string) error                    // Delete removes a record from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all records matching the given criteria
}
