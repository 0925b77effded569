package services

import (
	"context"
	"time"

	"github.com/campsum/campsum-api/internal/models"
	"github.com/patrickmn/go-cache"
)

const activeUniversitiesKey = "universities:active"

// UniversityService serves the active university list from memory; the list
// changes a few times a year.
type UniversityService struct {
	repo  models.UniversityRepo
	cache *cache.Cache
}

func NewUniversityService(repo models.UniversityRepo, ttl time.Duration) *UniversityService {
	return &UniversityService{
		repo:  repo,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (us *UniversityService) ListActive(ctx context.Context) ([]models.University, error) {
	if v, ok := us.cache.Get(activeUniversitiesKey); ok {
		return v.([]models.University), nil
	}
	list, err := us.repo.ListActiveUniversities(ctx)
	if err != nil {
		return nil, err
	}
	us.cache.SetDefault(activeUniversitiesKey, list)
	return list, nil
}
