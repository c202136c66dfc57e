package approval

import "time"

// Assignment ranks an approver within a department's chain. Orders of one
// department always form 1..N.
type Assignment struct {
	DepartmentID string
	ApproverID   string
	Order        int
	CreatedAt    time.Time

	// Relationships (for responses)
	ApproverName *string
}
