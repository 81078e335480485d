package mcp

// ReminderInfo describes one reminder in tool output.
type ReminderInfo struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Completed bool   `json:"completed"`
	Frequency string `json:"frequency"`
	Next      string `json:"next,omitempty"`
	When      string `json:"when"`
	DueToday  bool   `json:"due_today"`
}

// ListRemindersInput is the input for the list_reminders tool.
type ListRemindersInput struct {
	IncludeCompleted bool `json:"include_completed,omitempty" jsonschema:"When true, completed reminders are included (default: false)"`
	DueToday         bool `json:"due_today,omitempty" jsonschema:"When true, only reminders occurring today are returned"`
}

// ListRemindersOutput is the output for the list_reminders tool.
type ListRemindersOutput struct {
	Reminders []ReminderInfo `json:"reminders"`
}

// AddReminderInput is the input for the add_reminder tool.
type AddReminderInput struct {
	Message   string `json:"message" jsonschema:"required,Reminder text shown on the desktop"`
	Frequency string `json:"frequency,omitempty" jsonschema:"Recurrence: once:YYYY-MM-DD, daily, weekly:mon,wed (or weekdays, weekends, mwf, tth), monthly:1,15, yearly:jan-1 (default: once today)"`
	At        string `json:"at,omitempty" jsonschema:"Time of day HH:MM. Mutually exclusive with from/to."`
	From      string `json:"from,omitempty" jsonschema:"Start of a time range HH:MM; requires to"`
	To        string `json:"to,omitempty" jsonschema:"End of a time range HH:MM; requires from"`
}

// CompleteReminderInput is the input for the complete_reminder tool.
type CompleteReminderInput struct {
	ID   string `json:"id" jsonschema:"required,Reminder ID or unique ID prefix"`
	Undo bool   `json:"undo,omitempty" jsonschema:"When true, mark the reminder pending again"`
}

// RemoveReminderInput is the input for the remove_reminder tool.
type RemoveReminderInput struct {
	ID string `json:"id" jsonschema:"required,Reminder ID or unique ID prefix"`
}

// RemoveReminderOutput is the output for the remove_reminder tool.
type RemoveReminderOutput struct {
	ID      string `json:"id"`
	Removed bool   `json:"removed"`
}
