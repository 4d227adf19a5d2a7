package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// IssueStatus enum
type IssueStatus string

const (
	Pending    IssueStatus = "Pending"
	InProgress IssueStatus = "In Progress"
	Resolved   IssueStatus = "Resolved"
)

// Priority enum
type Priority string

const (
	Low      Priority = "Low"
	Medium   Priority = "Medium"
	High     Priority = "High"
	Critical Priority = "Critical"
)

// StatusMarkerColors maps each status to the hex color used for map pins.
var StatusMarkerColors = map[IssueStatus]string{
	Pending:    "#FBBF24",
	InProgress: "#60A5FA",
	Resolved:   "#4ADE80",
}

// Location is a reported lat/lon pair
type Location struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lon float64 `bson:"lon" json:"lon"`
}

// ActionPlan is an admin-triggered remediation suggestion
type ActionPlan struct {
	Steps          []string `bson:"steps" json:"steps"`
	Crew           string   `bson:"crew" json:"crew"`
	EstimatedHours float64  `bson:"estimatedHours" json:"estimatedHours"`
}

// Issue represents a civic issue reported by a user
type Issue struct {
	ID          string      `bson:"_id" json:"id"`
	Title       string      `bson:"title" json:"title"`
	Description string      `bson:"description" json:"description"`
	Summary     string      `bson:"summary" json:"summary"`
	Tags        []string    `bson:"tags" json:"tags"`
	Priority    Priority    `bson:"priority" json:"priority"`
	PhotoURL    string      `bson:"photoUrl" json:"photoUrl"`
	Location    *Location   `bson:"location,omitempty" json:"location,omitempty"`
	Status      IssueStatus `bson:"status" json:"status"`
	CreatedBy   string      `bson:"createdBy" json:"createdBy"`
	ActionPlan  *ActionPlan `bson:"actionPlan,omitempty" json:"actionPlan,omitempty"`
	CreatedAt   time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// NewIssueID generates a report ID like IMC-3F9A27C41B
func NewIssueID() string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "IMC-" + raw[:10]
}

// ValidStatus reports whether s is a known issue status
func ValidStatus(s string) bool {
	switch IssueStatus(s) {
	case Pending, InProgress, Resolved:
		return true
	default:
		return false
	}
}

// ValidPriority reports whether p is a known priority
func ValidPriority(p string) bool {
	switch Priority(p) {
	case Low, Medium, High, Critical:
		return true
	default:
		return false
	}
}
