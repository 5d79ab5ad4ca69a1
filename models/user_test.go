package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserRole_HasPermission(t *testing.T) {
	assert.True(t, RoleAdmin.HasPermission(PermManageFAQ))
	assert.True(t, RoleAdmin.HasPermission(PermViewAnalytics))
	assert.True(t, RoleAnalyst.HasPermission(PermViewAnalytics))
	assert.False(t, RoleAnalyst.HasPermission(PermManageFAQ))
	assert.True(t, RoleAdmin.HasPermission(PermManageData))
	assert.False(t, RoleAnalyst.HasPermission(PermManageData))
	assert.False(t, UserRole("ghost").HasPermission(PermViewAnalytics))
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole("admin"))
	assert.True(t, IsValidRole("analyst"))
	assert.False(t, IsValidRole("company_admin"))
	assert.False(t, IsValidRole(""))
}

func TestConversationStatusFor(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, ConversationActive, ConversationStatusFor(now.Add(-5*time.Minute), now))
	assert.Equal(t, ConversationEnded, ConversationStatusFor(now.Add(-ConversationIdleTimeout), now))
	assert.Equal(t, ConversationEnded, ConversationStatusFor(now.Add(-24*time.Hour), now))
}

func TestIsValidConversationStatus(t *testing.T) {
	assert.True(t, IsValidConversationStatus("active"))
	assert.True(t, IsValidConversationStatus("ended"))
	assert.False(t, IsValidConversationStatus("closed"))
}
