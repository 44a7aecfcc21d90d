package models

import "time"

// ProgressRecord tracks a user's progress on a single module.
// TimeSpent and VisitCount only ever increase; Completed never reverts from
// true to false through the touch path.
type ProgressRecord struct {
	ModuleID     string `db:"module_id" json:"module_id"`
	LastAccessed int64  `db:"last_accessed" json:"last_accessed"`
	Completed    bool   `db:"completed" json:"completed"`
	TimeSpent    int64  `db:"time_spent" json:"time_spent"` // cumulative seconds
	VisitCount   int    `db:"visit_count" json:"visit_count"`
}

// TableName returns the table name for ProgressRecord.
func (ProgressRecord) TableName() string {
	return "module_progress"
}

// LastAccessedTime returns LastAccessed as time.Time.
func (p *ProgressRecord) LastAccessedTime() time.Time {
	return time.Unix(p.LastAccessed, 0)
}

// TouchOptions carries the optional fields of a module touch.
type TouchOptions struct {
	// Completed marks the module completed when true. A false value is
	// ignored so the completed flag stays monotonic.
	Completed *bool
	// TimeSpentDelta is added to the cumulative time, in seconds.
	TimeSpentDelta int64
}
