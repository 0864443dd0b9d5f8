package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tree-service/internal/models"
	"tree-service/internal/repository"

	"github.com/redis/go-redis/v9"
)

const (
	speciesCacheKeyPrefix = "species:density:"
	speciesCacheTTL       = 12 * time.Hour
)

// DefaultSpecies is the reference data seeded into an empty species table.
var DefaultSpecies = []models.Species{
	{ScientificName: "Acacia spp.", LocalName: strPtr("Acacia"), WoodDensity: floatPtrVal(0.65), Benefits: strPtr("Drought-resistant, nitrogen-fixing, provides shade")},
	{ScientificName: "Eucalyptus spp.", LocalName: strPtr("Eucalyptus"), WoodDensity: floatPtrVal(0.55), Benefits: strPtr("Fast-growing, timber production, medicinal uses")},
	{ScientificName: "Mangifera indica", LocalName: strPtr("Mango"), WoodDensity: floatPtrVal(0.50), Benefits: strPtr("Fruit production, shade tree, ornamental")},
	{ScientificName: "Azadirachta indica", LocalName: strPtr("Neem"), WoodDensity: floatPtrVal(0.60), Benefits: strPtr("Medicinal properties, insect repellent, drought-resistant")},
	{ScientificName: "Quercus spp.", LocalName: strPtr("Oak"), WoodDensity: floatPtrVal(0.75), Benefits: strPtr("Long-term carbon storage, wildlife habitat, durable wood")},
	{ScientificName: "Pinus spp.", LocalName: strPtr("Pine"), WoodDensity: floatPtrVal(0.45), Benefits: strPtr("Reforestation, timber production, resin production")},
}

func strPtr(s string) *string        { return &s }
func floatPtrVal(v float64) *float64 { return &v }

// SpeciesService manages species reference data and serves wood densities to
// the estimator, with a short-lived cache in front of the table.
type SpeciesService struct {
	speciesRepo *repository.SpeciesRepository
	redisClient *redis.Client
}

func NewSpeciesService(speciesRepo *repository.SpeciesRepository, redisClient *redis.Client) *SpeciesService {
	return &SpeciesService{
		speciesRepo: speciesRepo,
		redisClient: redisClient,
	}
}

// SeedDefaults loads the default species list when the table is empty.
func (s *SpeciesService) SeedDefaults() error {
	return s.speciesRepo.SeedDefaults(DefaultSpecies)
}

// WoodDensity implements DensityProvider. A cache miss falls through to the
// species table; an unknown species is cached as a miss so repeated lookups
// during a polling batch stay cheap.
func (s *SpeciesService) WoodDensity(ctx context.Context, scientificName string) (float64, bool) {
	key := speciesCacheKeyPrefix + scientificName

	if s.redisClient != nil {
		val, err := s.redisClient.Get(ctx, key).Float64()
		if err == nil {
			if val <= 0 {
				return 0, false
			}
			return val, true
		}
		if err != redis.Nil {
			slog.Warn("species density cache read failed", "species", scientificName, "error", err)
		}
	}

	density := 0.0
	species, err := s.speciesRepo.GetByScientificName(ctx, scientificName)
	if err == nil && species.WoodDensity != nil {
		density = *species.WoodDensity
	}

	if s.redisClient != nil {
		if err := s.redisClient.Set(ctx, key, density, speciesCacheTTL).Err(); err != nil {
			slog.Warn("species density cache write failed", "species", scientificName, "error", err)
		}
	}

	return density, density > 0
}

func (s *SpeciesService) GetAll(ctx context.Context) ([]models.Species, error) {
	return s.speciesRepo.GetAll(ctx)
}

func (s *SpeciesService) GetByScientificName(ctx context.Context, scientificName string) (*models.Species, error) {
	return s.speciesRepo.GetByScientificName(ctx, scientificName)
}

func (s *SpeciesService) Create(ctx context.Context, species *models.Species) error {
	if species.ScientificName == "" {
		return fmt.Errorf("badrequest: scientific_name is required")
	}
	if species.WoodDensity != nil && (*species.WoodDensity <= 0 || *species.WoodDensity > 1.5) {
		return fmt.Errorf("badrequest: wood_density must be in (0, 1.5]")
	}

	if err := s.speciesRepo.Create(species); err != nil {
		return err
	}

	s.invalidateCache(ctx, species.ScientificName)
	return nil
}

func (s *SpeciesService) Update(ctx context.Context, scientificName string, req *models.UpdateSpeciesRequest) (*models.Species, error) {
	if req.WoodDensity != nil && (*req.WoodDensity <= 0 || *req.WoodDensity > 1.5) {
		return nil, fmt.Errorf("badrequest: wood_density must be in (0, 1.5]")
	}

	if err := s.speciesRepo.Update(scientificName, req); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, scientificName)
	return s.speciesRepo.GetByScientificName(ctx, scientificName)
}

func (s *SpeciesService) Delete(ctx context.Context, scientificName string) error {
	if err := s.speciesRepo.Delete(scientificName); err != nil {
		return err
	}
	s.invalidateCache(ctx, scientificName)
	return nil
}

func (s *SpeciesService) invalidateCache(ctx context.Context, scientificName string) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, speciesCacheKeyPrefix+scientificName).Err(); err != nil {
		slog.Warn("species density cache invalidation failed", "species", scientificName, "error", err)
	}
}
