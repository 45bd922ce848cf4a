package service

import (
	"context"
	"fmt"

	"github.com/Carlos20473736/monetag-tracker/internal/app/model"
	"github.com/Carlos20473736/monetag-tracker/internal/app/repository"
)

// ZoneService defines behaviour-level operations on ad zones.
type ZoneService interface {
	CreateZone(ctx context.Context, input CreateZoneInput) (*model.AdZone, error)
	GetZone(ctx context.Context, zoneID string) (*model.AdZone, error)
	ListZones(ctx context.Context) ([]model.AdZone, error)
	UpdateStatus(ctx context.Context, zoneID string, active bool) (*model.AdZone, error)
}

type zoneService struct {
	repo repository.AdZoneRepository
}

// NewZoneService returns a service implementation backed by the given repository.
func NewZoneService(repo repository.AdZoneRepository) ZoneService {
	return &zoneService{repo: repo}
}

// CreateZoneInput captures data required to create a zone.
type CreateZoneInput struct {
	ZoneID   string
	ZoneName string
	ZoneType string
}

func (s *zoneService) CreateZone(ctx context.Context, input CreateZoneInput) (*model.AdZone, error) {
	if input.ZoneID == "" {
		return nil, invalid("zoneId", "zoneId is required")
	}

	zone := &model.AdZone{
		ZoneID:   input.ZoneID,
		ZoneName: optional(input.ZoneName),
		ZoneType: optional(input.ZoneType),
		IsActive: true,
	}

	if err := s.repo.Create(ctx, zone); err != nil {
		return nil, fmt.Errorf("create zone: %w", err)
	}
	return zone, nil
}

func (s *zoneService) GetZone(ctx context.Context, zoneID string) (*model.AdZone, error) {
	zone, err := s.repo.GetByZoneID(ctx, zoneID)
	if err != nil {
		return nil, fmt.Errorf("get zone: %w", err)
	}
	return zone, nil
}

func (s *zoneService) ListZones(ctx context.Context) ([]model.AdZone, error) {
	zones, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	return zones, nil
}

func (s *zoneService) UpdateStatus(ctx context.Context, zoneID string, active bool) (*model.AdZone, error) {
	if zoneID == "" {
		return nil, invalid("zoneId", "zoneId is required")
	}
	zone, err := s.repo.UpdateStatus(ctx, zoneID, active)
	if err != nil {
		return nil, fmt.Errorf("update zone status: %w", err)
	}
	return zone, nil
}
