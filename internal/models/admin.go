package models

import "time"

// AdminRole represents the back-office roles.
type AdminRole string

const (
	RoleSuperAdmin AdminRole = "SUPER_ADMIN"
	RoleAdmin      AdminRole = "ADMIN"
	RoleEditor     AdminRole = "EDITOR"
	RoleViewer     AdminRole = "VIEWER"
)

// Admin represents a back-office account stored in the admins table.
type Admin struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Name         string     `db:"name" json:"name"`
	Role         AdminRole  `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// AdminFilter captures filtering criteria for listing admins.
type AdminFilter struct {
	Role      *AdminRole
	IsActive  *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// AdminStats aggregates account counts for the dashboard.
type AdminStats struct {
	Total       int `db:"total" json:"total"`
	Active      int `db:"active" json:"active"`
	Inactive    int `db:"inactive" json:"inactive"`
	SuperAdmins int `db:"super_admins" json:"super_admins"`
	Admins      int `db:"admins" json:"admins"`
	Editors     int `db:"editors" json:"editors"`
	Viewers     int `db:"viewers" json:"viewers"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
