package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type CategoryCreate struct {
	Code         string       `json:"code"`
	DisplayName  string       `json:"display_name"`
	ParentCode   string       `json:"parent_code"`
	CategoryType CategoryType `json:"category_type"`
}

func validCategoryType(t CategoryType) bool {
	switch t {
	case CategoryRevenue, CategoryInput, CategoryLPM, CategoryLBF, CategoryInsurance, CategoryComputed:
		return true
	}
	return false
}

// CreateCategory adds a category under an existing parent, or as a new root
// when ParentCode is empty. Path, level and sort order are computed here.
func (s *Service) CreateCategory(ctx context.Context, farmID uuid.UUID, in CategoryCreate) (*Category, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.Code == "" || in.DisplayName == "" || in.CategoryType == "" {
		return nil, fmt.Errorf("%w: code, display_name, and category_type are required", ErrInvalidInput)
	}
	if !validCategoryType(in.CategoryType) {
		return nil, fmt.Errorf("%w: unknown category_type %q", ErrInvalidInput, in.CategoryType)
	}

	t, err := s.tree(ctx, farmID)
	if err != nil {
		return nil, err
	}

	var parent *Category
	if in.ParentCode != "" {
		p, ok := t.Lookup(in.ParentCode)
		if !ok {
			return nil, fmt.Errorf("parent category %q: %w", in.ParentCode, ErrNotFound)
		}
		parent = &p
	}
	path, level, sortOrder := t.Placement(in.Code, parent)

	var parentID *uuid.UUID
	step := 100
	if parent != nil {
		parentID = &parent.ID
		step = 1
	}
	// Deactivated siblings keep their slot.
	maxSort, ok, err := s.store.MaxSortOrder(ctx, farmID, parentID)
	if err != nil {
		return nil, fmt.Errorf("load sort order: %w", err)
	}
	if ok && maxSort+step > sortOrder {
		sortOrder = maxSort + step
	}

	c := &Category{
		FarmID:       farmID,
		Code:         in.Code,
		DisplayName:  in.DisplayName,
		Path:         path,
		Level:        level,
		SortOrder:    sortOrder,
		CategoryType: in.CategoryType,
		IsActive:     true,
	}
	c.ParentID = parentID
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CategoryUpdate holds the editable fields; nil leaves a field unchanged.
type CategoryUpdate struct {
	DisplayName *string `json:"display_name"`
	SortOrder   *int    `json:"sort_order"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateCategory edits a category owned by the farm.
func (s *Service) UpdateCategory(ctx context.Context, farmID, id uuid.UUID, upd CategoryUpdate) (*Category, error) {
	c, err := s.store.Category(ctx, farmID, id)
	if err != nil {
		return nil, fmt.Errorf("category %s: %w", id, err)
	}
	if upd.DisplayName != nil {
		c.DisplayName = *upd.DisplayName
	}
	if upd.SortOrder != nil {
		c.SortOrder = *upd.SortOrder
	}
	if upd.IsActive != nil {
		c.IsActive = *upd.IsActive
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeactivateCategory soft-deletes a category.
func (s *Service) DeactivateCategory(ctx context.Context, farmID, id uuid.UUID) error {
	inactive := false
	_, err := s.UpdateCategory(ctx, farmID, id, CategoryUpdate{IsActive: &inactive})
	return err
}
