package models

import "time"

// InquirySubject enumerates the contact form subjects.
type InquirySubject string

const (
	SubjectAdmissionInquiry InquirySubject = "ADMISSION_INQUIRY"
	SubjectGeneralSupport   InquirySubject = "GENERAL_SUPPORT"
	SubjectFeedback         InquirySubject = "FEEDBACK"
	SubjectComplaint        InquirySubject = "COMPLAINT"
	SubjectOthers           InquirySubject = "OTHERS"
)

// InquiryStatus tracks the handling state of an inquiry.
type InquiryStatus string

const (
	InquiryNew        InquiryStatus = "NEW"
	InquiryInProgress InquiryStatus = "IN_PROGRESS"
	InquiryResolved   InquiryStatus = "RESOLVED"
	InquiryClosed     InquiryStatus = "CLOSED"
)

// ContactInquiry is a message submitted through the public contact form.
type ContactInquiry struct {
	ID          string         `db:"id" json:"id"`
	FullName    string         `db:"full_name" json:"full_name"`
	Email       string         `db:"email" json:"email"`
	Phone       *string        `db:"phone" json:"phone,omitempty"`
	Subject     InquirySubject `db:"subject" json:"subject"`
	Message     string         `db:"message" json:"message"`
	Status      InquiryStatus  `db:"status" json:"status"`
	Response    *string        `db:"response" json:"response,omitempty"`
	RespondedBy *string        `db:"responded_by" json:"responded_by,omitempty"`
	RespondedAt *time.Time     `db:"responded_at" json:"responded_at,omitempty"`
	IPAddress   *string        `db:"ip_address" json:"ip_address,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// InquiryFilter captures filtering criteria for listing inquiries.
type InquiryFilter struct {
	Status    *InquiryStatus
	Subject   *InquirySubject
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
