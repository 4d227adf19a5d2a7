package models

import (
	"regexp"
	"testing"
)

func TestNewIssueID(t *testing.T) {
	pattern := regexp.MustCompile(`^IMC-[0-9A-F]{10}$`)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewIssueID()
		if !pattern.MatchString(id) {
			t.Fatalf("NewIssueID() = %q, want match for %s", id, pattern)
		}
		if seen[id] {
			t.Fatalf("NewIssueID() produced duplicate %q", id)
		}
		seen[id] = true
	}
}

func TestValidStatus(t *testing.T) {
	testCases := []struct {
		status string
		want   bool
	}{
		{"Pending", true},
		{"In Progress", true},
		{"Resolved", true},
		{"pending", false},
		{"Closed", false},
		{"", false},
	}

	for _, tc := range testCases {
		if got := ValidStatus(tc.status); got != tc.want {
			t.Errorf("ValidStatus(%q) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestValidPriority(t *testing.T) {
	testCases := []struct {
		priority string
		want     bool
	}{
		{"Low", true},
		{"Medium", true},
		{"High", true},
		{"Critical", true},
		{"Urgent", false},
		{"", false},
	}

	for _, tc := range testCases {
		if got := ValidPriority(tc.priority); got != tc.want {
			t.Errorf("ValidPriority(%q) = %v, want %v", tc.priority, got, tc.want)
		}
	}
}

func TestStatusMarkerColors(t *testing.T) {
	for _, status := range []IssueStatus{Pending, InProgress, Resolved} {
		if StatusMarkerColors[status] == "" {
			t.Errorf("no marker color for status %q", status)
		}
	}
}
