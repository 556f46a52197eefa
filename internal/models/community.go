package models

import (
	"time"

	"gorm.io/gorm"
)

// Community represents a travel community namespace.
type Community struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"size:120;not null" json:"name"`
	Slug            string          `gorm:"size:24;not null;uniqueIndex" json:"slug"`
	Description     string          `gorm:"type:text" json:"description"`
	Avatar          string          `json:"avatar"`
	CreatedByUserID *uint           `json:"created_by_user_id"`
	CreatedByUser   *User           `gorm:"foreignKey:CreatedByUserID" json:"created_by_user,omitempty"`
	ReportCount     int             `gorm:"not null;default:0" json:"report_count"`
	Rules           []CommunityRule `gorm:"foreignKey:CommunityID" json:"rules,omitempty"`
	// MembersCount is not persisted; computed at query time
	MembersCount int            `gorm:"->" json:"members_count"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM.
func (Community) TableName() string {
	return "communities"
}

// CommunityRule is one entry in a community's ordered rule list.
type CommunityRule struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	CommunityID uint   `gorm:"not null;index" json:"community_id"`
	Position    int    `gorm:"not null" json:"position"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Body        string `gorm:"type:text" json:"body"`
}

// CommunityMembershipRole defines a member's role in a community.
type CommunityMembershipRole string

const (
	// CommunityMembershipRoleOwner is the community owner role.
	CommunityMembershipRoleOwner CommunityMembershipRole = "owner"
	// CommunityMembershipRoleMod is the community moderator role.
	CommunityMembershipRoleMod CommunityMembershipRole = "mod"
	// CommunityMembershipRoleMember is the default member role.
	CommunityMembershipRoleMember CommunityMembershipRole = "member"
)

// CommunityMembership maps users to communities and tracks role.
type CommunityMembership struct {
	CommunityID uint                    `gorm:"primaryKey;autoIncrement:false" json:"community_id"`
	Community   *Community              `gorm:"foreignKey:CommunityID" json:"community,omitempty"`
	UserID      uint                    `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	User        *User                   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role        CommunityMembershipRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}
