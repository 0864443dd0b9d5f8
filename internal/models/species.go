package models

// Species is reference data for the biomass calculation. Wood density is in
// g/cm3; trees whose species is missing from this table fall back to the
// default density in the estimator.
type Species struct {
	ScientificName string   `json:"scientific_name" db:"scientific_name"`
	LocalName      *string  `json:"local_name,omitempty" db:"local_name"`
	WoodDensity    *float64 `json:"wood_density,omitempty" db:"wood_density"`
	Benefits       *string  `json:"benefits,omitempty" db:"benefits"`
}
