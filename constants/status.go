package constants

// JournalStatus is the canonical status for rows in the submission journal.
type JournalStatus string

// Stable values (store these exact strings in DB).
const (
	JournalStatusSubmitted          JournalStatus = "SUBMITTED"            // accepted by the workflow mutation
	JournalStatusProcessing         JournalStatus = "PROCESSING"           // workflow running
	JournalStatusPendingReview      JournalStatus = "PENDING_REVIEW"       // waiting on a reviewer
	JournalStatusPendingAdminReview JournalStatus = "PENDING_ADMIN_REVIEW" // escalated review
	JournalStatusComplete           JournalStatus = "COMPLETE"             // terminal success
	JournalStatusFailed             JournalStatus = "FAILED"               // terminal failure
)

// Terminal reports whether a journal row will not be refreshed again.
func (s JournalStatus) Terminal() bool {
	return s == JournalStatusComplete || s == JournalStatusFailed
}
