package services

import (
	"fmt"

	"github.com/cryptichearts/backend/internal/records"
)

// StatusError is a store rejection. Status.Detail is the store's own message.
type StatusError struct {
	Op     string
	Status records.Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: store rejected with %s", e.Op, e.Status)
}

// PartialDeleteError reports an unfollow where only one side was removed.
// Nothing is rolled back; calling Unfollow again finishes the job.
type PartialDeleteError struct {
	RecordID string
	Peer     string
	Local    records.Status
	Remote   records.Status
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("unfollow %s: local delete %s, remote delete on %s %s", e.RecordID, e.Local, e.Peer, e.Remote)
}
