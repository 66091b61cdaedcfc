package domain

import (
	"errors"
	"fmt"
	"time"
)

// TaskAction is a lifecycle operation applied to a single task
type TaskAction string

const (
	TaskActionStart   TaskAction = "start"
	TaskActionPause   TaskAction = "pause"
	TaskActionEnd     TaskAction = "end"
	TaskActionDelete  TaskAction = "delete"
	TaskActionRestore TaskAction = "restore"
)

var ErrInvalidTransition = errors.New("invalid status transition")

// TransitionError reports an action attempted from a status that does not allow it
type TransitionError struct {
	Action TaskAction
	From   TaskStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s task in status %q", e.Action, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

type statusSet map[TaskStatus]struct{}

func statuses(ss ...TaskStatus) statusSet {
	set := make(statusSet, len(ss))
	for _, s := range ss {
		set[s] = struct{}{}
	}
	return set
}

func (s statusSet) has(st TaskStatus) bool {
	_, ok := s[st]
	return ok
}

// transitionRule: allowed -> to. Statuses in noop succeed without touching the task.
type transitionRule struct {
	allowed statusSet
	noop    statusSet
	to      TaskStatus
}

var transitionRules = map[TaskAction]transitionRule{
	TaskActionStart: {
		allowed: statuses(TaskStatusTodo, TaskStatusDoing, TaskStatusDeleted),
		noop:    statuses(TaskStatusCompleted),
		to:      TaskStatusDoing,
	},
	TaskActionPause: {
		allowed: statuses(TaskStatusDoing),
		to:      TaskStatusTodo,
	},
	TaskActionEnd: {
		allowed: statuses(TaskStatusTodo, TaskStatusDoing, TaskStatusDeleted),
		noop:    statuses(TaskStatusCompleted),
		to:      TaskStatusCompleted,
	},
	TaskActionDelete: {
		allowed: statuses(AllTaskStatuses...),
		to:      TaskStatusDeleted,
	},
	TaskActionRestore: {
		allowed: statuses(TaskStatusCompleted, TaskStatusDeleted),
		to:      TaskStatusTodo,
	},
}

// CanApply reports whether action changes a task currently in status from.
// The first result is false for no-ops; err is non-nil when the action is rejected.
func CanApply(action TaskAction, from TaskStatus) (bool, error) {
	rule, ok := transitionRules[action]
	if !ok {
		return false, fmt.Errorf("unknown task action %q", action)
	}
	if rule.noop.has(from) {
		return false, nil
	}
	if !rule.allowed.has(from) {
		return false, &TransitionError{Action: action, From: from}
	}
	return true, nil
}

// Apply runs action on the task. reason is only read by delete.
// It returns false without modifying the task when the action is a no-op.
func (t *Task) Apply(action TaskAction, now time.Time, reason *string) (bool, error) {
	changed, err := CanApply(action, t.Status)
	if err != nil || !changed {
		return false, err
	}

	switch action {
	case TaskActionStart:
		if t.ActualStartDate == nil {
			t.ActualStartDate = &now
		}
	case TaskActionPause:
		t.ActualEndDate = nil
	case TaskActionEnd:
		if t.ActualStartDate == nil {
			start := now
			t.ActualStartDate = &start
		}
		t.ActualEndDate = &now
	case TaskActionDelete:
		t.DeleteReason = cloneString(reason)
		t.ActualEndDate = &now
	case TaskActionRestore:
		t.ActualEndDate = nil
		t.DeleteReason = nil
	}

	t.Status = transitionRules[action].to
	t.UpdatedAt = now
	return true, nil
}
