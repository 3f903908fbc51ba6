package models

import (
	"fmt"
	"strings"
)

// SprintStatus defines allowed lifecycle states for sprint cycles.
type SprintStatus string

const (
	SprintPlanning  SprintStatus = "planning"
	SprintActive    SprintStatus = "active"
	SprintCompleted SprintStatus = "completed"
	SprintCancelled SprintStatus = "cancelled"
)

// TaskStatus defines allowed workflow states for sprint tasks.
type TaskStatus string

const (
	TaskBacklog    TaskStatus = "backlog"
	TaskReady      TaskStatus = "ready"
	TaskInProgress TaskStatus = "in_progress"
	TaskReview     TaskStatus = "review"
	TaskBlocked    TaskStatus = "blocked"
	TaskDone       TaskStatus = "done"
)

// TaskPriority defines allowed task priorities.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// RiskImpact defines the impact scale of a sprint risk.
type RiskImpact string

const (
	ImpactLow      RiskImpact = "low"
	ImpactMedium   RiskImpact = "medium"
	ImpactHigh     RiskImpact = "high"
	ImpactCritical RiskImpact = "critical"
)

// RiskStatus defines the lifecycle of a sprint risk.
type RiskStatus string

const (
	RiskOpen       RiskStatus = "open"
	RiskMitigating RiskStatus = "mitigating"
	RiskResolved   RiskStatus = "resolved"
	RiskClosed     RiskStatus = "closed"
)

// ChangeRequestStatus defines the approval states of a change request.
type ChangeRequestStatus string

const (
	ChangePendingApproval ChangeRequestStatus = "pending_approval"
	ChangeApproved        ChangeRequestStatus = "approved"
	ChangeRejected        ChangeRequestStatus = "rejected"
)

const (
	DefaultSprintStatus        = SprintPlanning
	DefaultTaskStatus          = TaskBacklog
	DefaultTaskPriority        = PriorityMedium
	DefaultRiskImpact          = ImpactMedium
	DefaultRiskStatus          = RiskOpen
	DefaultChangeRequestStatus = ChangePendingApproval

	MinMinutesSpent = 1
	MaxMinutesSpent = 1440
	MaxSeverity     = 100
)

// SprintStatuses lists sprint states in display order.
var SprintStatuses = []SprintStatus{
	SprintPlanning,
	SprintActive,
	SprintCompleted,
	SprintCancelled,
}

// TaskStatusOrder is the fixed kanban column order.
var TaskStatusOrder = []TaskStatus{
	TaskBacklog,
	TaskReady,
	TaskInProgress,
	TaskReview,
	TaskBlocked,
	TaskDone,
}

var taskStatusLabels = map[TaskStatus]string{
	TaskBacklog:    "Backlog",
	TaskReady:      "Ready",
	TaskInProgress: "In Progress",
	TaskReview:     "Review",
	TaskBlocked:    "Blocked",
	TaskDone:       "Done",
}

var validSprintStatuses = map[SprintStatus]struct{}{
	SprintPlanning:  {},
	SprintActive:    {},
	SprintCompleted: {},
	SprintCancelled: {},
}

var validTaskStatuses = map[TaskStatus]struct{}{
	TaskBacklog:    {},
	TaskReady:      {},
	TaskInProgress: {},
	TaskReview:     {},
	TaskBlocked:    {},
	TaskDone:       {},
}

// priorityRank orders priorities; higher is more urgent.
var priorityRank = map[TaskPriority]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
	PriorityUrgent: 3,
}

var impactWeights = map[RiskImpact]float64{
	ImpactLow:      0.25,
	ImpactMedium:   0.5,
	ImpactHigh:     0.75,
	ImpactCritical: 1,
}

var validRiskStatuses = map[RiskStatus]struct{}{
	RiskOpen:       {},
	RiskMitigating: {},
	RiskResolved:   {},
	RiskClosed:     {},
}

var validChangeRequestStatuses = map[ChangeRequestStatus]struct{}{
	ChangePendingApproval: {},
	ChangeApproved:        {},
	ChangeRejected:        {},
}

// changeRequestTransitions lists the states reachable from each state.
var changeRequestTransitions = map[ChangeRequestStatus][]ChangeRequestStatus{
	ChangePendingApproval: {ChangeApproved, ChangeRejected},
	ChangeRejected:        {ChangeApproved},
	ChangeApproved:        nil,
}

func IsValidSprintStatus(status SprintStatus) bool {
	_, ok := validSprintStatuses[status]
	return ok
}

func IsValidTaskStatus(status TaskStatus) bool {
	_, ok := validTaskStatuses[status]
	return ok
}

func IsValidTaskPriority(priority TaskPriority) bool {
	_, ok := priorityRank[priority]
	return ok
}

func IsValidChangeRequestStatus(status ChangeRequestStatus) bool {
	_, ok := validChangeRequestStatuses[status]
	return ok
}

func ParseSprintStatus(raw string) (SprintStatus, error) {
	value := SprintStatus(normalizeEnum(raw))
	if value == "" {
		return "", fmt.Errorf("status is required")
	}
	if !IsValidSprintStatus(value) {
		return "", fmt.Errorf("invalid sprint status: %s", value)
	}
	return value, nil
}

func ParseTaskStatus(raw string) (TaskStatus, error) {
	value := TaskStatus(normalizeEnum(raw))
	if value == "" {
		return "", fmt.Errorf("status is required")
	}
	if !IsValidTaskStatus(value) {
		return "", fmt.Errorf("invalid task status: %s", value)
	}
	return value, nil
}

func ParseTaskPriority(raw string) (TaskPriority, error) {
	value := TaskPriority(normalizeEnum(raw))
	if value == "" {
		return "", fmt.Errorf("priority is required")
	}
	if !IsValidTaskPriority(value) {
		return "", fmt.Errorf("invalid priority: %s", value)
	}
	return value, nil
}

func ParseChangeRequestStatus(raw string) (ChangeRequestStatus, error) {
	value := ChangeRequestStatus(normalizeEnum(raw))
	if value == "" {
		return "", fmt.Errorf("status is required")
	}
	if !IsValidChangeRequestStatus(value) {
		return "", fmt.Errorf("invalid change request status: %s", value)
	}
	return value, nil
}

// CoerceRiskImpact maps raw input onto a known impact, falling back to medium.
func CoerceRiskImpact(raw string) RiskImpact {
	value := RiskImpact(normalizeEnum(raw))
	if _, ok := impactWeights[value]; ok {
		return value
	}
	return DefaultRiskImpact
}

// CoerceRiskStatus maps raw input onto a known risk status, falling back to open.
func CoerceRiskStatus(raw string) RiskStatus {
	value := RiskStatus(normalizeEnum(raw))
	if _, ok := validRiskStatuses[value]; ok {
		return value
	}
	return DefaultRiskStatus
}

// Label returns the display label for a task status.
func (s TaskStatus) Label() string {
	if label, ok := taskStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Rank returns the priority rank; unknown priorities rank as medium.
func (p TaskPriority) Rank() int {
	if rank, ok := priorityRank[p]; ok {
		return rank
	}
	return priorityRank[DefaultTaskPriority]
}

// Weight returns the impact weight used to derive severity scores.
func (i RiskImpact) Weight() float64 {
	if weight, ok := impactWeights[i]; ok {
		return weight
	}
	return impactWeights[DefaultRiskImpact]
}

// IsOpen reports whether the risk still needs attention.
func (s RiskStatus) IsOpen() bool {
	return s == RiskOpen || s == RiskMitigating
}

// CanTransitionTo reports whether a change request may move from s to next.
func (s ChangeRequestStatus) CanTransitionTo(next ChangeRequestStatus) bool {
	for _, allowed := range changeRequestTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsDecision reports whether the status records an approval decision.
func (s ChangeRequestStatus) IsDecision() bool {
	return s == ChangeApproved || s == ChangeRejected
}

func SprintStatusStrings() []string {
	out := make([]string, 0, len(SprintStatuses))
	for _, value := range SprintStatuses {
		out = append(out, string(value))
	}
	return out
}

func TaskStatusStrings() []string {
	out := make([]string, 0, len(TaskStatusOrder))
	for _, value := range TaskStatusOrder {
		out = append(out, string(value))
	}
	return out
}

func normalizeEnum(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
