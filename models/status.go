package models

// ApplicationStatus is one row of the backend's application_status lookup.
type ApplicationStatus struct {
	ApplicationStatusID int    `gorm:"primaryKey;column:application_status_id" json:"application_status_id"`
	StatusCode          string `gorm:"column:status_code" json:"status_code"`
	StatusName          string `gorm:"column:status_name" json:"status_name"`
}

// TableName overrides
func (ApplicationStatus) TableName() string {
	return "application_status"
}

// StatusKind is the fixed taxonomy every raw status signal is reduced to.
type StatusKind string

const (
	StatusKindPending  StatusKind = "pending"
	StatusKindApproved StatusKind = "approved"
	StatusKindRejected StatusKind = "rejected"
	StatusKindRevision StatusKind = "revision"
	StatusKindDraft    StatusKind = "draft"
	StatusKindUnknown  StatusKind = "unknown"
)

// ApprovedStatusID is the application_status_id the backend uses for approved submissions.
const ApprovedStatusID = 2

// StatusStyle is the display hint attached to a classification.
type StatusStyle struct {
	Label string `json:"label"`
	Tone  string `json:"tone"`
}

// Classification is the result of reducing an (id, code, name) triple.
type Classification struct {
	Kind     StatusKind  `json:"kind"`
	Approved bool        `json:"approved"`
	Style    StatusStyle `json:"style"`
}

// StatusView is the status block of a reconciled submission.
type StatusView struct {
	ID   *int    `json:"id"`
	Code *string `json:"code"`
	Name *string `json:"name"`
	Classification
}
