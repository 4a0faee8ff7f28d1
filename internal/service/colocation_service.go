package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/colocash/backend/internal/models"
	"github.com/colocash/backend/internal/storage"
)

// ColocationService manages households and their memberships.
type ColocationService struct {
	store           storage.Store
	defaultCurrency string
}

// NewColocationService creates a new colocation service. defaultCurrency is
// used when a creation request does not name one.
func NewColocationService(store storage.Store, defaultCurrency string) *ColocationService {
	return &ColocationService{store: store, defaultCurrency: defaultCurrency}
}

// Create creates a colocation with default categories and the creator as
// first member.
func (s *ColocationService) Create(ctx context.Context, name, currency, creatorID string) (*models.Colocation, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	if currency == "" {
		currency = s.defaultCurrency
	}
	if len(currency) != 3 {
		return nil, fmt.Errorf("%w: currency must be a 3-letter code", ErrValidation)
	}

	c := &models.Colocation{
		ID:        uuid.New().String(),
		Name:      name,
		Currency:  currency,
		CreatedBy: creatorID,
		CreatedAt: time.Now().UTC(),
	}

	categories := make([]models.Category, 0, len(models.DefaultCategories))
	for _, catName := range models.DefaultCategories {
		categories = append(categories, models.Category{
			ID:           uuid.New().String(),
			ColocationID: c.ID,
			Name:         catName,
		})
	}

	if err := s.store.CreateColocation(ctx, c, categories); err != nil {
		slog.Error("failed to create colocation", "error", err)
		return nil, err
	}

	slog.Info("colocation created", "colocation_id", c.ID, "created_by", creatorID)
	return c, nil
}

// Get returns a colocation. Only members may see it.
func (s *ColocationService) Get(ctx context.Context, colocationID, actorID string) (*models.Colocation, error) {
	c, err := s.store.GetColocation(ctx, colocationID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, colocationID, actorID); err != nil {
		return nil, err
	}
	return c, nil
}

// AddMember adds a registered user to a colocation. Any current member may
// invite.
func (s *ColocationService) AddMember(ctx context.Context, colocationID, actorID, userID string) error {
	if err := s.requireMember(ctx, colocationID, actorID); err != nil {
		return err
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}

	already, err := s.store.IsMember(ctx, colocationID, userID)
	if err != nil {
		return err
	}
	if already {
		return fmt.Errorf("%w: user is already a member", ErrValidation)
	}

	if err := s.store.AddMember(ctx, colocationID, userID, time.Now().UTC()); err != nil {
		slog.Error("failed to add member", "colocation_id", colocationID, "user_id", userID, "error", err)
		return err
	}

	slog.Info("member added", "colocation_id", colocationID, "user_id", userID, "added_by", actorID)
	return nil
}

// ListMembers returns the members of a colocation, visible to members only.
func (s *ColocationService) ListMembers(ctx context.Context, colocationID, actorID string) ([]models.Member, error) {
	if err := s.requireMember(ctx, colocationID, actorID); err != nil {
		return nil, err
	}
	return s.store.ListMembers(ctx, colocationID)
}

// ListCategories returns the expense categories of a colocation.
func (s *ColocationService) ListCategories(ctx context.Context, colocationID, actorID string) ([]models.Category, error) {
	if err := s.requireMember(ctx, colocationID, actorID); err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx, colocationID)
}

// requireMember resolves the colocation and checks membership. A missing
// colocation surfaces as not found, a non-member actor as forbidden.
func (s *ColocationService) requireMember(ctx context.Context, colocationID, actorID string) error {
	return requireMember(ctx, s.store, colocationID, actorID)
}

func requireMember(ctx context.Context, store storage.Store, colocationID, actorID string) error {
	if _, err := store.GetColocation(ctx, colocationID); err != nil {
		return err
	}
	isMember, err := store.IsMember(ctx, colocationID, actorID)
	if err != nil {
		return err
	}
	if !isMember {
		return fmt.Errorf("%w: not a member of this colocation", models.ErrForbidden)
	}
	return nil
}
