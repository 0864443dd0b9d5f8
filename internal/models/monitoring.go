package models

import "time"

// MonitoringEvent is one observation of an existing tree. Rows are
// append-only; the parent tree's current fields are overwritten to mirror
// the most recent event. CO2 is recomputed per event, never carried forward.
type MonitoringEvent struct {
	ID               int64      `json:"id" db:"id"`
	TreeID           string     `json:"tree_id" db:"tree_id"`
	MonitorDate      string     `json:"monitor_date" db:"monitor_date"`
	MonitorStatus    TreeStatus `json:"monitor_status" db:"monitor_status"`
	MonitorStage     TreeStage  `json:"monitor_stage" db:"monitor_stage"`
	RCDCm            *float64   `json:"rcd_cm,omitempty" db:"rcd_cm"`
	DBHCm            *float64   `json:"dbh_cm,omitempty" db:"dbh_cm"`
	HeightM          *float64   `json:"height_m,omitempty" db:"height_m"`
	CO2Kg            float64    `json:"co2_kg" db:"co2_kg"`
	Notes            *string    `json:"notes,omitempty" db:"notes"`
	MonitorBy        *string    `json:"monitor_by,omitempty" db:"monitor_by"`
	KoboSubmissionID *string    `json:"kobo_submission_id,omitempty" db:"kobo_submission_id"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// ProcessedSubmission is a dedup ledger entry: one row per external
// submission the service has ingested. Re-delivery of the same submission
// id is a no-op.
type ProcessedSubmission struct {
	SubmissionID  string    `json:"submission_id" db:"submission_id"`
	TreeID        *string   `json:"tree_id,omitempty" db:"tree_id"`
	ProcessedDate time.Time `json:"processed_date" db:"processed_date"`
}

// MonitoringStats aggregates monitoring activity for the dashboard.
type MonitoringStats struct {
	MonitoredTrees   int     `json:"monitored_trees" db:"monitored_trees"`
	MonitoringEvents int     `json:"monitoring_events" db:"monitoring_events"`
	AvgCO2Kg         float64 `json:"avg_co2_kg" db:"avg_co2_kg"`
	AliveCount       int     `json:"alive_count" db:"alive_count"`
	MonitorCount     int     `json:"monitor_count" db:"monitor_count"`
}
