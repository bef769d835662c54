package entity

// ModerationStats is the reporting snapshot shown to administrators.
type ModerationStats struct {
	TotalUsers     int64          `json:"total_users"`
	UsersByRole    map[Role]int64 `json:"users_by_role"`
	TotalEvents    int64          `json:"total_events"`
	ActiveEvents   int64          `json:"active_events"`
	InactiveEvents int64          `json:"inactive_events"`
	UpcomingEvents int64          `json:"upcoming_events"`
	PendingEvents  int64          `json:"pending_events"`
}

// PurgeResult describes one cleanup run.
type PurgeResult struct {
	Cutoff  string   `json:"cutoff"`
	Deleted []*Event `json:"deleted"`
}
