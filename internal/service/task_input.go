package service

import (
	"time"

	"task_tracker/internal/domain"
)

const dateFormatHint = "Use YYYY-MM-DD or YYYY-MM-DDTHH:MM"

// TaskInput is the user editable part of a task, as submitted.
// Dates are raw strings; nil and "" both mean not supplied.
type TaskInput struct {
	Name               *string
	Detail             *string
	LimitDate          *string
	ScheduledStartDate *string
	ScheduledEndDate   *string
	IsNotMain          *bool
}

type validatedTask struct {
	name           string
	detail         *string
	limitDate      time.Time
	scheduledStart *time.Time
	scheduledEnd   *time.Time
	isNotMain      *bool
}

// Validate checks fields in a fixed order and reports the first problem
func (in TaskInput) Validate() (*validatedTask, error) {
	name := deref(in.Name)
	if name == "" {
		return nil, invalid("name", "Name is required")
	}

	limitRaw := deref(in.LimitDate)
	if limitRaw == "" {
		return nil, invalid("limit_date", "Limit date is required")
	}
	limit, ok := domain.ParseDate(limitRaw)
	if !ok {
		return nil, invalid("limit_date", "Invalid limit_date format: %s. %s", limitRaw, dateFormatHint)
	}

	start, ok := domain.ParseDate(deref(in.ScheduledStartDate))
	if !ok {
		return nil, invalid("scheduled_start_date", "Invalid scheduled_start_date format: %s. %s", *in.ScheduledStartDate, dateFormatHint)
	}
	end, ok := domain.ParseDate(deref(in.ScheduledEndDate))
	if !ok {
		return nil, invalid("scheduled_end_date", "Invalid scheduled_end_date format: %s. %s", *in.ScheduledEndDate, dateFormatHint)
	}
	if (start == nil) != (end == nil) {
		return nil, invalid("scheduled_start_date,scheduled_end_date",
			"Both scheduled_start_date and scheduled_end_date must be provided if one is present, or both left empty.")
	}

	return &validatedTask{
		name:           name,
		detail:         in.Detail,
		limitDate:      *limit,
		scheduledStart: start,
		scheduledEnd:   end,
		isNotMain:      in.IsNotMain,
	}, nil
}

// applyTo overwrites the user editable fields. is_not_main is kept when not supplied.
func (v *validatedTask) applyTo(t *domain.Task) {
	t.Name = v.name
	t.Detail = v.detail
	t.LimitDate = v.limitDate
	t.ScheduledStartDate = v.scheduledStart
	t.ScheduledEndDate = v.scheduledEnd
	if v.isNotMain != nil {
		t.IsNotMain = *v.isNotMain
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
