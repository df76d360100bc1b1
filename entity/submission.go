package entity

// SubmissionStatus is the review state of a workflow submission.
type SubmissionStatus string

const (
	SubmissionProcessing         SubmissionStatus = "PROCESSING"
	SubmissionPendingReview      SubmissionStatus = "PENDING_REVIEW"
	SubmissionPendingAdminReview SubmissionStatus = "PENDING_ADMIN_REVIEW"
	SubmissionComplete           SubmissionStatus = "COMPLETE"
	SubmissionFailed             SubmissionStatus = "FAILED"
)

func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionComplete || s == SubmissionFailed
}

// Submission is one run of a workflow against one document.
type Submission struct {
	ID            int              `json:"id"`
	DatasetID     int              `json:"datasetId"`
	WorkflowID    int              `json:"workflowId"`
	Status        SubmissionStatus `json:"status"`
	InputFile     string           `json:"inputFile"`
	InputFilename string           `json:"inputFilename"`
	ResultFile    string           `json:"resultFile"`
	Retrieved     bool             `json:"retrieved"`
	Errors        string           `json:"errors"`
}
