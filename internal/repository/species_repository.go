package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"tree-service/internal/models"
	"tree-service/internal/utils"

	"github.com/jmoiron/sqlx"
)

type SpeciesRepository struct {
	db *sqlx.DB
}

func NewSpeciesRepository(db *sqlx.DB) *SpeciesRepository {
	return &SpeciesRepository{db: db}
}

func (r *SpeciesRepository) Create(species *models.Species) error {
	query := `
		INSERT INTO species (scientific_name, local_name, wood_density, benefits)
		VALUES (:scientific_name, :local_name, :wood_density, :benefits)`

	_, err := r.db.NamedExec(query, species)
	if err != nil {
		return fmt.Errorf("failed to create species: %w", err)
	}

	return nil
}

func (r *SpeciesRepository) GetByScientificName(ctx context.Context, scientificName string) (*models.Species, error) {
	query := `
		SELECT scientific_name, local_name, wood_density, benefits
		FROM species
		WHERE scientific_name = $1`

	var species models.Species
	err := r.db.GetContext(ctx, &species, query, scientificName)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("not_found: species not found: %s", scientificName)
		}
		return nil, fmt.Errorf("failed to get species: %w", err)
	}

	return &species, nil
}

func (r *SpeciesRepository) GetAll(ctx context.Context) ([]models.Species, error) {
	query := `
		SELECT scientific_name, local_name, wood_density, benefits
		FROM species
		ORDER BY scientific_name`

	var species []models.Species
	err := r.db.SelectContext(ctx, &species, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get species list: %w", err)
	}

	return species, nil
}

func (r *SpeciesRepository) Update(scientificName string, req *models.UpdateSpeciesRequest) error {
	query := `
		UPDATE species SET
			local_name   = COALESCE($2, local_name),
			wood_density = COALESCE($3, wood_density),
			benefits     = COALESCE($4, benefits)
		WHERE scientific_name = $1`

	err := utils.ExecWithCheck(r.db, query, utils.ExecUpdate, scientificName, req.LocalName, req.WoodDensity, req.Benefits)
	if err != nil {
		return fmt.Errorf("not_found: failed to update species %s: %w", scientificName, err)
	}

	return nil
}

func (r *SpeciesRepository) Delete(scientificName string) error {
	query := `DELETE FROM species WHERE scientific_name = $1`

	err := utils.ExecWithCheck(r.db, query, utils.ExecDelete, scientificName)
	if err != nil {
		return fmt.Errorf("not_found: failed to delete species %s: %w", scientificName, err)
	}

	return nil
}

// SeedDefaults inserts the default species reference rows when the table is
// empty. Safe to call on every start.
func (r *SpeciesRepository) SeedDefaults(defaults []models.Species) error {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM species`); err != nil {
		return fmt.Errorf("failed to count species: %w", err)
	}
	if count > 0 {
		return nil
	}

	query := `
		INSERT INTO species (scientific_name, local_name, wood_density, benefits)
		VALUES (:scientific_name, :local_name, :wood_density, :benefits)
		ON CONFLICT (scientific_name) DO NOTHING`

	for i := range defaults {
		if _, err := r.db.NamedExec(query, &defaults[i]); err != nil {
			return fmt.Errorf("failed to seed species %s: %w", defaults[i].ScientificName, err)
		}
	}

	slog.Info("seeded default species", "count", len(defaults))
	return nil
}
