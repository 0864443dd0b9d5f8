package models

// ============================================================================
// REQUEST DTOs
// ============================================================================

// CreateTreeRequest is a manual planting entry (no external submission id).
type CreateTreeRequest struct {
	Institution    string   `json:"institution"`
	LocalName      string   `json:"local_name"`
	ScientificName *string  `json:"scientific_name,omitempty"`
	PlanterID      *string  `json:"planter_id,omitempty"`
	DatePlanted    *string  `json:"date_planted,omitempty"`
	TreeStage      *string  `json:"tree_stage,omitempty"`
	RCDCm          *float64 `json:"rcd_cm,omitempty"`
	DBHCm          *float64 `json:"dbh_cm,omitempty"`
	HeightM        *float64 `json:"height_m,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Country        *string  `json:"country,omitempty"`
	County         *string  `json:"county,omitempty"`
	SubCounty      *string  `json:"sub_county,omitempty"`
	Ward           *string  `json:"ward,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
}

// CreateMonitoringRequest is a manual monitoring event entry.
type CreateMonitoringRequest struct {
	TreeID      string   `json:"tree_id"`
	MonitorDate *string  `json:"monitor_date,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Stage       *string  `json:"stage,omitempty"`
	RCDCm       *float64 `json:"rcd_cm,omitempty"`
	DBHCm       *float64 `json:"dbh_cm,omitempty"`
	HeightM     *float64 `json:"height_m,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	MonitorBy   *string  `json:"monitor_by,omitempty"`
}

// CreateDonationRequest opens a pending donation; payment confirmation
// arrives later on the payment events queue.
type CreateDonationRequest struct {
	DonorName   string  `json:"donor_name"`
	DonorEmail  string  `json:"donor_email"`
	Institution string  `json:"institution"`
	Amount      float64 `json:"amount"`
	TreeCount   int     `json:"tree_count"`
	Message     *string `json:"message,omitempty"`
}

// UpdateSpeciesRequest carries partial species reference updates.
type UpdateSpeciesRequest struct {
	LocalName   *string  `json:"local_name,omitempty"`
	WoodDensity *float64 `json:"wood_density,omitempty"`
	Benefits    *string  `json:"benefits,omitempty"`
}
