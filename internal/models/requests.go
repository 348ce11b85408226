package models

import "time"

// LoginRequest is the credential payload for the admin login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is returned after a successful login. The session cookie is
// set separately by the handler.
type LoginResponse struct {
	Admin     Admin     `json:"admin"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateAdminRequest registers a new back-office account.
type CreateAdminRequest struct {
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required,min=8,max=72"`
	Name     string    `json:"name" validate:"required,min=2,max=100"`
	Role     AdminRole `json:"role" validate:"required,oneof=SUPER_ADMIN ADMIN EDITOR VIEWER"`
}

// UpdateAdminRequest updates mutable profile fields of an account.
type UpdateAdminRequest struct {
	Email *string    `json:"email,omitempty" validate:"omitempty,email"`
	Name  *string    `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Role  *AdminRole `json:"role,omitempty" validate:"omitempty,oneof=SUPER_ADMIN ADMIN EDITOR VIEWER"`
}

// ChangePasswordRequest rotates the caller's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// ResetPasswordRequest sets a new password on another account.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// BulkDeleteRequest identifies the accounts to remove in one batch.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid4"`
}

// CreateApplicationRequest is the public admission form payload.
type CreateApplicationRequest struct {
	StudentFirstName  string  `json:"student_first_name" validate:"required,alphaspace,min=2,max=50"`
	StudentMiddleName *string `json:"student_middle_name,omitempty" validate:"omitempty,alphaspace,max=50"`
	StudentLastName   string  `json:"student_last_name" validate:"required,alphaspace,min=2,max=50"`
	DateOfBirth       string  `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Gender            Gender  `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	BloodGroup        *string `json:"blood_group,omitempty" validate:"omitempty,bloodgroup"`
	Nationality       string  `json:"nationality" validate:"required,max=50"`
	Religion          *string `json:"religion,omitempty" validate:"omitempty,max=50"`
	Category          Category `json:"category" validate:"required,oneof=GENERAL OBC SC ST EWS"`
	AadharNumber      *string  `json:"aadhar_number,omitempty" validate:"omitempty,aadhar"`

	ClassApplyingFor string  `json:"class_applying_for" validate:"required,max=20"`
	PreviousSchool   *string `json:"previous_school,omitempty" validate:"omitempty,max=200"`
	PreviousClass    *string `json:"previous_class,omitempty" validate:"omitempty,max=20"`
	AcademicYear     string  `json:"academic_year" validate:"required,acadyear"`

	FatherName       string  `json:"father_name" validate:"required,alphaspace,min=2,max=100"`
	FatherOccupation *string `json:"father_occupation,omitempty" validate:"omitempty,max=100"`
	FatherPhone      string  `json:"father_phone" validate:"required,inphone"`
	FatherEmail      *string `json:"father_email,omitempty" validate:"omitempty,email"`
	MotherName       string  `json:"mother_name" validate:"required,alphaspace,min=2,max=100"`
	MotherOccupation *string `json:"mother_occupation,omitempty" validate:"omitempty,max=100"`
	MotherPhone      *string `json:"mother_phone,omitempty" validate:"omitempty,inphone"`
	MotherEmail      *string `json:"mother_email,omitempty" validate:"omitempty,email"`
	GuardianName     *string `json:"guardian_name,omitempty" validate:"omitempty,alphaspace,max=100"`
	GuardianRelation *string `json:"guardian_relation,omitempty" validate:"omitempty,max=50"`
	GuardianPhone    *string `json:"guardian_phone,omitempty" validate:"omitempty,inphone"`
	GuardianEmail    *string `json:"guardian_email,omitempty" validate:"omitempty,email"`

	CurrentAddress   string `json:"current_address" validate:"required,max=300"`
	CurrentCity      string `json:"current_city" validate:"required,max=100"`
	CurrentState     string `json:"current_state" validate:"required,max=100"`
	CurrentPincode   string `json:"current_pincode" validate:"required,pincode"`
	PermanentAddress string `json:"permanent_address" validate:"required,max=300"`
	PermanentCity    string `json:"permanent_city" validate:"required,max=100"`
	PermanentState   string `json:"permanent_state" validate:"required,max=100"`
	PermanentPincode string `json:"permanent_pincode" validate:"required,pincode"`

	MedicalConditions *string `json:"medical_conditions,omitempty" validate:"omitempty,max=500"`
	SpecialNeeds      *string `json:"special_needs,omitempty" validate:"omitempty,max=500"`

	BirthCertificate    *string `json:"birth_certificate,omitempty" validate:"omitempty,url"`
	PhotoURL            *string `json:"photo_url,omitempty" validate:"omitempty,url"`
	TransferCertificate *string `json:"transfer_certificate,omitempty" validate:"omitempty,url"`
	AddressProof        *string `json:"address_proof,omitempty" validate:"omitempty,url"`
}

// UpdateApplicationStatusRequest records a review decision.
type UpdateApplicationStatusRequest struct {
	Status  ApplicationStatus `json:"status" validate:"required,oneof=PENDING UNDER_REVIEW APPROVED REJECTED WAITLISTED ADMITTED"`
	Remarks *string           `json:"remarks,omitempty" validate:"omitempty,max=1000"`
}

// BulkApplicationStatusRequest applies one decision to several applications.
type BulkApplicationStatusRequest struct {
	IDs    []string          `json:"ids" validate:"required,min=1,dive,uuid4"`
	Status ApplicationStatus `json:"status" validate:"required,oneof=PENDING UNDER_REVIEW APPROVED REJECTED WAITLISTED ADMITTED"`
}

// CreateNoticeRequest publishes a new notice.
type CreateNoticeRequest struct {
	Title       string         `json:"title" validate:"required,min=5,max=200"`
	Description string         `json:"description" validate:"required,min=10,max=500"`
	Content     *string        `json:"content,omitempty"`
	Category    NoticeCategory `json:"category" validate:"required,oneof=ADMISSION EXAMINATION HOLIDAY EVENT ACADEMIC SPORTS CULTURAL GENERAL IMPORTANT RESULT FEE SCHOLARSHIP VACANCY TENDER"`
	Priority    NoticePriority `json:"priority" validate:"required,oneof=LOW NORMAL HIGH URGENT"`
	PublishDate *time.Time     `json:"publish_date,omitempty"`
	ExpiryDate  *time.Time     `json:"expiry_date,omitempty"`
	EventDate   *time.Time     `json:"event_date,omitempty"`
	IsPublished *bool          `json:"is_published,omitempty"`
	IsPinned    *bool          `json:"is_pinned,omitempty"`
	Author      string         `json:"author" validate:"required,max=100"`
	Slug        string         `json:"slug" validate:"required,slugfmt,max=200"`
}

// UpdateNoticeRequest edits an existing notice. Nil fields are left alone.
type UpdateNoticeRequest struct {
	Title       *string         `json:"title,omitempty" validate:"omitempty,min=5,max=200"`
	Description *string         `json:"description,omitempty" validate:"omitempty,min=10,max=500"`
	Content     *string         `json:"content,omitempty"`
	Category    *NoticeCategory `json:"category,omitempty" validate:"omitempty,oneof=ADMISSION EXAMINATION HOLIDAY EVENT ACADEMIC SPORTS CULTURAL GENERAL IMPORTANT RESULT FEE SCHOLARSHIP VACANCY TENDER"`
	Priority    *NoticePriority `json:"priority,omitempty" validate:"omitempty,oneof=LOW NORMAL HIGH URGENT"`
	PublishDate *time.Time      `json:"publish_date,omitempty"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
	EventDate   *time.Time      `json:"event_date,omitempty"`
	IsPublished *bool           `json:"is_published,omitempty"`
	IsPinned    *bool           `json:"is_pinned,omitempty"`
	IsActive    *bool           `json:"is_active,omitempty"`
	Slug        *string         `json:"slug,omitempty" validate:"omitempty,slugfmt,max=200"`
}

// AddAttachmentRequest links an uploaded file to a notice.
type AddAttachmentRequest struct {
	FileName string `json:"file_name" validate:"required,max=200"`
	FileURL  string `json:"file_url" validate:"required,url"`
	FileType string `json:"file_type" validate:"required,max=100"`
	FileSize int64  `json:"file_size" validate:"required,gt=0"`
}

// CreateInquiryRequest is the public contact form payload.
type CreateInquiryRequest struct {
	FullName string         `json:"full_name" validate:"required,alphaspace,min=2,max=100"`
	Email    string         `json:"email" validate:"required,email"`
	Phone    *string        `json:"phone,omitempty" validate:"omitempty,inphone"`
	Subject  InquirySubject `json:"subject" validate:"required,oneof=ADMISSION_INQUIRY GENERAL_SUPPORT FEEDBACK COMPLAINT OTHERS"`
	Message  string         `json:"message" validate:"required,min=10,max=2000"`
}

// UpdateInquiryStatusRequest moves an inquiry through its handling states.
type UpdateInquiryStatusRequest struct {
	Status   InquiryStatus `json:"status" validate:"required,oneof=NEW IN_PROGRESS RESOLVED CLOSED"`
	Response *string       `json:"response,omitempty" validate:"omitempty,max=2000"`
}

// CreateExportRequest queues an admissions-register export.
type CreateExportRequest struct {
	Format       ExportFormat `json:"format" validate:"required,oneof=csv pdf"`
	AcademicYear *string      `json:"academic_year,omitempty" validate:"omitempty,acadyear"`
	Status       *string      `json:"status,omitempty" validate:"omitempty,oneof=PENDING UNDER_REVIEW APPROVED REJECTED WAITLISTED ADMITTED"`
}
