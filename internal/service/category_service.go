package service

import (
	"context"

	"todoapp/internal/model"
	"todoapp/internal/repository"
)

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListAll(ctx)
}

func (s *CategoryService) GetOrCreate(ctx context.Context, name string) (*model.Category, error) {
	return s.repo.GetOrCreate(ctx, name)
}

// ResolveNames maps category names to existing rows, ignoring unknowns.
func (s *CategoryService) ResolveNames(ctx context.Context, names []string) ([]model.Category, error) {
	return s.repo.FindByNames(ctx, names)
}
