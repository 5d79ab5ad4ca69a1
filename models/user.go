package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRole represents the role of a dashboard user
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleAnalyst UserRole = "analyst"
)

// User represents a dashboard user
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email    string             `bson:"email" json:"email"`
	FullName string             `bson:"full_name,omitempty" json:"full_name,omitempty"`
	Role     UserRole           `bson:"role" json:"role"`

	// Authentication
	PasswordHash string `bson:"password_hash" json:"-"`

	// Status
	IsActive  bool      `bson:"is_active" json:"is_active"`
	LastLogin time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Permissions
const (
	PermManageFAQ     = "manage_faq"
	PermViewAnalytics = "view_analytics"
	PermManageData    = "manage_data"
)

// GetRolePermissions returns the permissions for each role
func GetRolePermissions() map[UserRole][]string {
	return map[UserRole][]string{
		RoleAdmin:   {PermManageFAQ, PermViewAnalytics, PermManageData},
		RoleAnalyst: {PermViewAnalytics},
	}
}

// HasPermission checks if a role has a specific permission
func (r UserRole) HasPermission(permission string) bool {
	for _, perm := range GetRolePermissions()[r] {
		if perm == permission {
			return true
		}
	}
	return false
}

// IsValidRole checks if a role is valid
func IsValidRole(role string) bool {
	_, ok := GetRolePermissions()[UserRole(role)]
	return ok
}
