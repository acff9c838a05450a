// package models defines the data model shared by the panel's components
package models

import (
	"time"
)

// Model defines the base interface for persistent models stored by the panel.
// Implementations include EventRecord.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}
