package models

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{
			name:    "submitted to verified",
			from:    StatusSubmitted,
			to:      StatusVerified,
			allowed: true,
		},
		{
			name:    "submitted straight to resolved",
			from:    StatusSubmitted,
			to:      StatusResolved,
			allowed: true,
		},
		{
			name:    "backward correction",
			from:    StatusInProgress,
			to:      StatusVerified,
			allowed: true,
		},
		{
			name:    "resolved reopened to in_progress",
			from:    StatusResolved,
			to:      StatusInProgress,
			allowed: true,
		},
		{
			name:    "closed is terminal",
			from:    StatusClosed,
			to:      StatusInProgress,
			allowed: false,
		},
		{
			name:    "same status rejected",
			from:    StatusAssigned,
			to:      StatusAssigned,
			allowed: false,
		},
		{
			name:    "unknown status rejected",
			from:    StatusSubmitted,
			to:      "pending",
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.allowed {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.allowed)
			}
		})
	}
}

func TestNextPriorityMirrorsEscalationRule(t *testing.T) {
	tests := []struct {
		name     string
		upvotes  int
		priority int
		expected int
	}{
		{name: "below threshold", upvotes: 4, priority: 1, expected: 1},
		{name: "fifth upvote escalates", upvotes: 5, priority: 1, expected: 2},
		{name: "between thresholds", upvotes: 7, priority: 2, expected: 2},
		{name: "tenth upvote escalates", upvotes: 10, priority: 2, expected: 3},
		{name: "ceiling holds", upvotes: 25, priority: 5, expected: 5},
		{name: "zero upvotes", upvotes: 0, priority: 1, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextPriority(tt.upvotes, tt.priority); got != tt.expected {
				t.Errorf("nextPriority(%d, %d) = %d, want %d", tt.upvotes, tt.priority, got, tt.expected)
			}
		})
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{StatusSubmitted, StatusVerified, StatusAssigned, StatusInProgress, StatusResolved, StatusClosed} {
		if !IsValidStatus(s) {
			t.Errorf("expected %s to be valid", s)
		}
	}
	if IsValidStatus("pending") {
		t.Error("expected pending to be invalid")
	}
}
