package models

import "time"

// NoticeCategory enumerates the published notice categories.
type NoticeCategory string

const (
	NoticeAdmission   NoticeCategory = "ADMISSION"
	NoticeExamination NoticeCategory = "EXAMINATION"
	NoticeHoliday     NoticeCategory = "HOLIDAY"
	NoticeEvent       NoticeCategory = "EVENT"
	NoticeAcademic    NoticeCategory = "ACADEMIC"
	NoticeSports      NoticeCategory = "SPORTS"
	NoticeCultural    NoticeCategory = "CULTURAL"
	NoticeGeneral     NoticeCategory = "GENERAL"
	NoticeImportant   NoticeCategory = "IMPORTANT"
	NoticeResult      NoticeCategory = "RESULT"
	NoticeFee         NoticeCategory = "FEE"
	NoticeScholarship NoticeCategory = "SCHOLARSHIP"
	NoticeVacancy     NoticeCategory = "VACANCY"
	NoticeTender      NoticeCategory = "TENDER"
)

// NoticePriority orders notices on the public board.
type NoticePriority string

const (
	PriorityLow    NoticePriority = "LOW"
	PriorityNormal NoticePriority = "NORMAL"
	PriorityHigh   NoticePriority = "HIGH"
	PriorityUrgent NoticePriority = "URGENT"
)

// Notice is an announcement published on the school website. Slug is unique.
type Notice struct {
	ID          string         `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Content     *string        `db:"content" json:"content,omitempty"`
	Category    NoticeCategory `db:"category" json:"category"`
	Priority    NoticePriority `db:"priority" json:"priority"`
	PublishDate time.Time      `db:"publish_date" json:"publish_date"`
	ExpiryDate  *time.Time     `db:"expiry_date" json:"expiry_date,omitempty"`
	EventDate   *time.Time     `db:"event_date" json:"event_date,omitempty"`
	IsPublished bool           `db:"is_published" json:"is_published"`
	IsPinned    bool           `db:"is_pinned" json:"is_pinned"`
	IsActive    bool           `db:"is_active" json:"is_active"`
	Author      string         `db:"author" json:"author"`
	Slug        string         `db:"slug" json:"slug"`
	Views       int            `db:"views" json:"views"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`

	Attachments []NoticeAttachment `db:"-" json:"attachments,omitempty"`
}

// NoticeAttachment is a file linked to a notice, removed together with it.
type NoticeAttachment struct {
	ID        string    `db:"id" json:"id"`
	NoticeID  string    `db:"notice_id" json:"notice_id"`
	FileName  string    `db:"file_name" json:"file_name"`
	FileURL   string    `db:"file_url" json:"file_url"`
	FileType  string    `db:"file_type" json:"file_type"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NoticeFilter captures filtering criteria for listing notices.
type NoticeFilter struct {
	Category    *NoticeCategory
	Priority    *NoticePriority
	IsPublished *bool
	IsPinned    *bool
	IsActive    *bool
	Search      string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
