package service

import (
	"context"

	"proptrust/internal/dto"
	"proptrust/internal/model"
	"proptrust/internal/repository"

	"github.com/google/uuid"
)

// PropertyService is the minimal property surface the ledger needs: register a
// stand so a trust account can reference it, and look stands up.
type PropertyService interface {
	Create(ctx context.Context, req dto.CreatePropertyRequest) (*dto.PropertyResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.PropertyResponse, error)
	List(ctx context.Context, page, limit int) (*dto.PropertyListResponse, error)
}

type propertyService struct {
	repo repository.PropertyRepository
}

func NewPropertyService(repo repository.PropertyRepository) PropertyService {
	return &propertyService{repo: repo}
}

func (s *propertyService) Create(ctx context.Context, req dto.CreatePropertyRequest) (*dto.PropertyResponse, error) {
	p := &model.Property{
		ID:          uuid.New(),
		StandNumber: req.StandNumber,
		Address:     req.Address,
		Suburb:      req.Suburb,
		City:        req.City,
		Active:      true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	resp := toPropertyResponse(p)
	return &resp, nil
}

func (s *propertyService) Get(ctx context.Context, id uuid.UUID) (*dto.PropertyResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	resp := toPropertyResponse(p)
	return &resp, nil
}

func (s *propertyService) List(ctx context.Context, page, limit int) (*dto.PropertyListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	props, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PropertyResponse, 0, len(props))
	for i := range props {
		items = append(items, toPropertyResponse(&props[i]))
	}
	return &dto.PropertyListResponse{Data: items, Total: total, Page: page, Limit: limit}, nil
}

func toPropertyResponse(p *model.Property) dto.PropertyResponse {
	return dto.PropertyResponse{
		ID:          p.ID.String(),
		StandNumber: p.StandNumber,
		Address:     p.Address,
		Suburb:      p.Suburb,
		City:        p.City,
		Active:      p.Active,
	}
}
