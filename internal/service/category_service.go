package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/bookreviews-api/internal/domain"
	"github.com/phrazzld/bookreviews-api/internal/platform/logger"
	"github.com/phrazzld/bookreviews-api/internal/store"
)

// CategoryService manages book categories.
type CategoryService interface {
	List(ctx context.Context) ([]CategoryDTO, error)
	Get(ctx context.Context, id int64) (CategoryDTO, error)

	// Create adds a category. Returns ErrDuplicateCategory when the name is
	// taken, ignoring case.
	Create(ctx context.Context, name string) (CategoryDTO, error)

	// Update renames a category under the same uniqueness rule, ignoring the
	// category itself.
	Update(ctx context.Context, id int64, name string) (CategoryDTO, error)

	// Delete removes a category. Returns ErrCategoryInUse while books
	// reference it.
	Delete(ctx context.Context, id int64) error
}

type categoryService struct {
	categories store.CategoryStore
	uow        store.UnitOfWork
	logger     *slog.Logger
}

// NewCategoryService creates a CategoryService.
func NewCategoryService(categories store.CategoryStore, uow store.UnitOfWork, logger *slog.Logger) CategoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &categoryService{
		categories: categories,
		uow:        uow,
		logger:     logger.With(slog.String("component", "category_service")),
	}
}

func (s *categoryService) List(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return toCategoryDTOs(categories), nil
}

func (s *categoryService) Get(ctx context.Context, id int64) (CategoryDTO, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return CategoryDTO{}, fmt.Errorf("failed to retrieve category: %w", err)
	}
	return toCategoryDTO(category), nil
}

// ensureNameFree fails with ErrDuplicateCategory when a category other than
// exceptID is called name.
func ensureNameFree(ctx context.Context, categories store.CategoryStore, name string, exceptID int64) error {
	existing, err := categories.GetByName(ctx, name)
	switch {
	case errors.Is(err, store.ErrCategoryNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check category name: %w", err)
	case existing.ID != exceptID:
		return ErrDuplicateCategory
	}
	return nil
}

func mapCategoryConflict(err error) error {
	if errors.Is(err, store.ErrCategoryExists) {
		return ErrDuplicateCategory
	}
	return err
}

func (s *categoryService) Create(ctx context.Context, name string) (CategoryDTO, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	category, err := domain.NewCategory(name)
	if err != nil {
		return CategoryDTO{}, err
	}

	err = s.uow.Do(ctx, func(ctx context.Context, tx store.Stores) error {
		if err := ensureNameFree(ctx, tx.Categories, category.Name, 0); err != nil {
			return err
		}
		return mapCategoryConflict(tx.Categories.Create(ctx, category))
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateCategory) {
			log.Debug("duplicate category name", slog.String("name", category.Name))
			return CategoryDTO{}, err
		}
		return CategoryDTO{}, fmt.Errorf("failed to create category: %w", err)
	}

	return toCategoryDTO(category), nil
}

func (s *categoryService) Update(ctx context.Context, id int64, name string) (CategoryDTO, error) {
	var category *domain.Category
	err := s.uow.Do(ctx, func(ctx context.Context, tx store.Stores) error {
		var err error
		category, err = tx.Categories.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := category.Rename(name); err != nil {
			return err
		}
		if err := ensureNameFree(ctx, tx.Categories, category.Name, category.ID); err != nil {
			return err
		}
		return mapCategoryConflict(tx.Categories.Update(ctx, category))
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateCategory) || errors.Is(err, domain.ErrValidation) {
			return CategoryDTO{}, err
		}
		return CategoryDTO{}, fmt.Errorf("failed to update category: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("category renamed",
		slog.Int64("category_id", id))
	return toCategoryDTO(category), nil
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.uow.Do(ctx, func(ctx context.Context, tx store.Stores) error {
		if _, err := tx.Categories.GetByID(ctx, id); err != nil {
			return err
		}
		count, err := tx.Categories.CountBooks(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			log.Debug("category still has books",
				slog.Int64("category_id", id),
				slog.Int("books", count))
			return ErrCategoryInUse
		}
		if err := tx.Categories.Delete(ctx, id); err != nil {
			if errors.Is(err, store.ErrCategoryInUse) {
				return ErrCategoryInUse
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCategoryInUse) {
			return err
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	log.Info("category deleted", slog.Int64("category_id", id))
	return nil
}
