package models

import "time"

// Gender enumerates accepted gender values on an application form.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Category enumerates admission reservation categories.
type Category string

const (
	CategoryGeneral Category = "GENERAL"
	CategoryOBC     Category = "OBC"
	CategorySC      Category = "SC"
	CategoryST      Category = "ST"
	CategoryEWS     Category = "EWS"
)

// ApplicationStatus tracks the review lifecycle of an application.
// Any status may move to any other; there is no enforced transition graph.
type ApplicationStatus string

const (
	StatusPending     ApplicationStatus = "PENDING"
	StatusUnderReview ApplicationStatus = "UNDER_REVIEW"
	StatusApproved    ApplicationStatus = "APPROVED"
	StatusRejected    ApplicationStatus = "REJECTED"
	StatusWaitlisted  ApplicationStatus = "WAITLISTED"
	StatusAdmitted    ApplicationStatus = "ADMITTED"
)

// AdmissionApplication is a submitted admission form. The application number
// is assigned at insert time and immutable afterwards.
type AdmissionApplication struct {
	ID                string `db:"id" json:"id"`
	ApplicationNumber string `db:"application_number" json:"application_number"`

	StudentFirstName  string    `db:"student_first_name" json:"student_first_name"`
	StudentMiddleName *string   `db:"student_middle_name" json:"student_middle_name,omitempty"`
	StudentLastName   string    `db:"student_last_name" json:"student_last_name"`
	DateOfBirth       time.Time `db:"date_of_birth" json:"date_of_birth"`
	Gender            Gender    `db:"gender" json:"gender"`
	BloodGroup        *string   `db:"blood_group" json:"blood_group,omitempty"`
	Nationality       string    `db:"nationality" json:"nationality"`
	Religion          *string   `db:"religion" json:"religion,omitempty"`
	Category          Category  `db:"category" json:"category"`
	AadharNumber      *string   `db:"aadhar_number" json:"aadhar_number,omitempty"`

	ClassApplyingFor string  `db:"class_applying_for" json:"class_applying_for"`
	PreviousSchool   *string `db:"previous_school" json:"previous_school,omitempty"`
	PreviousClass    *string `db:"previous_class" json:"previous_class,omitempty"`
	AcademicYear     string  `db:"academic_year" json:"academic_year"`

	FatherName       string  `db:"father_name" json:"father_name"`
	FatherOccupation *string `db:"father_occupation" json:"father_occupation,omitempty"`
	FatherPhone      string  `db:"father_phone" json:"father_phone"`
	FatherEmail      *string `db:"father_email" json:"father_email,omitempty"`
	MotherName       string  `db:"mother_name" json:"mother_name"`
	MotherOccupation *string `db:"mother_occupation" json:"mother_occupation,omitempty"`
	MotherPhone      *string `db:"mother_phone" json:"mother_phone,omitempty"`
	MotherEmail      *string `db:"mother_email" json:"mother_email,omitempty"`
	GuardianName     *string `db:"guardian_name" json:"guardian_name,omitempty"`
	GuardianRelation *string `db:"guardian_relation" json:"guardian_relation,omitempty"`
	GuardianPhone    *string `db:"guardian_phone" json:"guardian_phone,omitempty"`
	GuardianEmail    *string `db:"guardian_email" json:"guardian_email,omitempty"`

	CurrentAddress   string `db:"current_address" json:"current_address"`
	CurrentCity      string `db:"current_city" json:"current_city"`
	CurrentState     string `db:"current_state" json:"current_state"`
	CurrentPincode   string `db:"current_pincode" json:"current_pincode"`
	PermanentAddress string `db:"permanent_address" json:"permanent_address"`
	PermanentCity    string `db:"permanent_city" json:"permanent_city"`
	PermanentState   string `db:"permanent_state" json:"permanent_state"`
	PermanentPincode string `db:"permanent_pincode" json:"permanent_pincode"`

	MedicalConditions *string `db:"medical_conditions" json:"medical_conditions,omitempty"`
	SpecialNeeds      *string `db:"special_needs" json:"special_needs,omitempty"`

	BirthCertificate    *string `db:"birth_certificate" json:"birth_certificate,omitempty"`
	PhotoURL            *string `db:"photo_url" json:"photo_url,omitempty"`
	TransferCertificate *string `db:"transfer_certificate" json:"transfer_certificate,omitempty"`
	AddressProof        *string `db:"address_proof" json:"address_proof,omitempty"`

	Status     ApplicationStatus `db:"status" json:"status"`
	ReviewedBy *string           `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time        `db:"reviewed_at" json:"reviewed_at,omitempty"`
	Remarks    *string           `db:"remarks" json:"remarks,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// AdmissionFilter captures filtering criteria for listing applications.
type AdmissionFilter struct {
	Status           *ApplicationStatus
	AcademicYear     string
	ClassApplyingFor string
	Search           string
	Page             int
	PageSize         int
	SortBy           string
	SortOrder        string
}

// AdmissionStats aggregates application counts, optionally scoped to one
// academic year.
type AdmissionStats struct {
	Total       int `db:"total" json:"total"`
	Pending     int `db:"pending" json:"pending"`
	UnderReview int `db:"under_review" json:"under_review"`
	Approved    int `db:"approved" json:"approved"`
	Rejected    int `db:"rejected" json:"rejected"`
	Waitlisted  int `db:"waitlisted" json:"waitlisted"`
	Admitted    int `db:"admitted" json:"admitted"`
}
