package models

import "time"

// ============================================================================
// TREE LIFECYCLE
// ============================================================================

// Tree is one physical planted tree. The tree_id is immutable once assigned;
// measurement and status fields mirror the most recent monitoring event.
type Tree struct {
	TreeID           string     `json:"tree_id" db:"tree_id"`
	Institution      string     `json:"institution" db:"institution"`
	LocalName        string     `json:"local_name" db:"local_name"`
	ScientificName   *string    `json:"scientific_name,omitempty" db:"scientific_name"`
	PlanterID        *string    `json:"planter_id,omitempty" db:"planter_id"`
	DatePlanted      *string    `json:"date_planted,omitempty" db:"date_planted"`
	TreeStage        TreeStage  `json:"tree_stage" db:"tree_stage"`
	RCDCm            *float64   `json:"rcd_cm,omitempty" db:"rcd_cm"`
	DBHCm            *float64   `json:"dbh_cm,omitempty" db:"dbh_cm"`
	HeightM          *float64   `json:"height_m,omitempty" db:"height_m"`
	Latitude         *float64   `json:"latitude,omitempty" db:"latitude"`
	Longitude        *float64   `json:"longitude,omitempty" db:"longitude"`
	CO2Kg            float64    `json:"co2_kg" db:"co2_kg"`
	Status           TreeStatus `json:"status" db:"status"`
	Country          *string    `json:"country,omitempty" db:"country"`
	County           *string    `json:"county,omitempty" db:"county"`
	SubCounty        *string    `json:"sub_county,omitempty" db:"sub_county"`
	Ward             *string    `json:"ward,omitempty" db:"ward"`
	AdopterName      *string    `json:"adopter_name,omitempty" db:"adopter_name"`
	LastMonitored    *string    `json:"last_monitored,omitempty" db:"last_monitored"`
	MonitorNotes     *string    `json:"monitor_notes,omitempty" db:"monitor_notes"`
	QRCode           *string    `json:"qr_code,omitempty" db:"qr_code"`
	KoboSubmissionID *string    `json:"kobo_submission_id,omitempty" db:"kobo_submission_id"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// TreeWithHistory is the lookup response shape: a tree plus its full
// monitoring history, most recent event first.
type TreeWithHistory struct {
	Tree
	MonitoringHistory []MonitoringEvent `json:"monitoring_history"`
}

// InstitutionStats aggregates a single institution's planting impact.
type InstitutionStats struct {
	Institution string  `json:"institution" db:"institution"`
	TotalTrees  int     `json:"total_trees" db:"total_trees"`
	AliveTrees  int     `json:"alive_trees" db:"alive_trees"`
	CO2Kg       float64 `json:"co2_kg" db:"co2_kg"`
}

// ImpactStats is the dashboard headline block.
type ImpactStats struct {
	TotalTrees       int     `json:"total_trees" db:"total_trees"`
	AliveTrees       int     `json:"alive_trees" db:"alive_trees"`
	TotalCO2Kg       float64 `json:"total_co2_kg" db:"total_co2_kg"`
	Institutions     int     `json:"institutions" db:"institutions"`
	MonitoringEvents int     `json:"monitoring_events" db:"monitoring_events"`
	SurvivalRate     float64 `json:"survival_rate"`
}
