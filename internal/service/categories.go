package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jask/fintree/internal/database/repository"
)

// CategoryInput is the editable part of a category of either kind.
type CategoryInput struct {
	ParentID    *int64
	Name        string
	Description *string
	Type        string
	Color       string
	Icon        string
}

// CategoryService manages one category kind for a user.
type CategoryService struct {
	Kind        Kind
	Repo        *repository.CategoryRepo
	Hierarchies *Hierarchies
	Logger      *slog.Logger
}

func (s *CategoryService) List(ctx context.Context, userID string) ([]repository.Category, error) {
	return s.Repo.List(ctx, userID)
}

func (s *CategoryService) Get(ctx context.Context, userID string, id int64) (repository.Category, error) {
	return s.Repo.Get(ctx, userID, id)
}

func (s *CategoryService) apply(userID string, c *repository.Category, in CategoryInput) error {
	c.Name = strings.TrimSpace(in.Name)
	if c.Name == "" {
		return invalidf("category name required")
	}
	c.UserID = userID
	c.ParentID = in.ParentID
	c.Description = trimmedPtr(in.Description)
	c.Type = orDefault(in.Type, defaultType)
	c.Color = orDefault(in.Color, defaultColor)
	c.Icon = orDefault(in.Icon, defaultIcon)
	return nil
}

func (s *CategoryService) Create(ctx context.Context, userID string, in CategoryInput) (repository.Category, error) {
	var c repository.Category
	if err := s.apply(userID, &c, in); err != nil {
		return repository.Category{}, err
	}
	if err := s.Hierarchies.CheckParent(ctx, userID, s.Kind, nil, c.ParentID); err != nil {
		return repository.Category{}, err
	}
	id, err := s.Repo.Create(ctx, c)
	if err != nil {
		return repository.Category{}, fmt.Errorf("create %s: %w", s.Kind, err)
	}
	s.Logger.Info("category created", "kind", s.Kind, "id", id)
	return s.Repo.Get(ctx, userID, id)
}

func (s *CategoryService) Update(ctx context.Context, userID string, id int64, in CategoryInput) (repository.Category, error) {
	c, err := s.Repo.Get(ctx, userID, id)
	if err != nil {
		return repository.Category{}, err
	}
	if err := s.apply(userID, &c, in); err != nil {
		return repository.Category{}, err
	}
	if err := s.Hierarchies.CheckParent(ctx, userID, s.Kind, &id, c.ParentID); err != nil {
		return repository.Category{}, err
	}
	if err := s.Repo.Update(ctx, c); err != nil {
		return repository.Category{}, fmt.Errorf("update %s %d: %w", s.Kind, id, err)
	}
	return s.Repo.Get(ctx, userID, id)
}

func (s *CategoryService) Delete(ctx context.Context, userID string, id int64) error {
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", s.Kind, id, err)
	}
	s.Logger.Info("category deleted", "kind", s.Kind, "id", id)
	return nil
}

func InputFromCategory(c repository.Category) CategoryInput {
	return CategoryInput{
		ParentID:    c.ParentID,
		Name:        c.Name,
		Description: c.Description,
		Type:        c.Type,
		Color:       c.Color,
		Icon:        c.Icon,
	}
}
