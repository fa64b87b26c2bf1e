package store

import (
	"context"
	"strings"

	"scrumbringer-admin/internal/api"
	"scrumbringer-admin/internal/model"
)

var _ api.Backend = (*Backend)(nil)

func cardState(c model.Card) model.CardState {
	switch {
	case c.TaskCount > 0 && c.CompletedCount >= c.TaskCount:
		return model.CardClosed
	case c.TaskCount > 0:
		return model.CardInProgress
	default:
		return model.CardPending
	}
}

func (b *Backend) ListCards(ctx context.Context, projectID int64) ([]model.Card, error) {
	var out []model.Card
	err := b.read(ctx, func(q querier) error {
		if _, err := requireReader(ctx, q, projectID); err != nil {
			return err
		}
		var err error
		out, err = listByParent[model.Card](ctx, q, kindCard, projectID)
		return err
	})
	return out, err
}

func (b *Backend) CreateCard(ctx context.Context, projectID int64, in api.CardInput) (model.Card, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return model.Card{}, invalid("title is required")
	}
	var out model.Card
	err := b.write(ctx, func(q querier) error {
		if _, err := requireManager(ctx, q, projectID); err != nil {
			return err
		}
		id, err := nextID(ctx, q, kindCard)
		if err != nil {
			return err
		}
		out = model.Card{
			ID:          id,
			ProjectID:   projectID,
			Title:       in.Title,
			Description: in.Description,
			Color:       in.Color,
			CreatedAt:   b.now(),
		}
		out.State = cardState(out)
		return b.put(ctx, q, kindCard, idKey(id), id, projectID, out)
	})
	return out, err
}

func (b *Backend) UpdateCard(ctx context.Context, id int64, in api.CardInput) (model.Card, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return model.Card{}, invalid("title is required")
	}
	var out model.Card
	err := b.write(ctx, func(q querier) error {
		c, err := get[model.Card](ctx, q, kindCard, idKey(id))
		if err != nil {
			return err
		}
		if _, err := requireManager(ctx, q, c.ProjectID); err != nil {
			return err
		}
		c.Title = in.Title
		c.Description = in.Description
		c.Color = in.Color
		out = c
		return b.put(ctx, q, kindCard, idKey(id), id, c.ProjectID, c)
	})
	return out, err
}

// DeleteCard refuses cards that still have tasks.
func (b *Backend) DeleteCard(ctx context.Context, id int64) error {
	return b.write(ctx, func(q querier) error {
		c, err := get[model.Card](ctx, q, kindCard, idKey(id))
		if err != nil {
			return err
		}
		if _, err := requireManager(ctx, q, c.ProjectID); err != nil {
			return err
		}
		if c.TaskCount > 0 {
			return conflict("card_has_tasks", "card has tasks")
		}
		return remove(ctx, q, kindCard, idKey(id))
	})
}

// SetCardTasks records task progress on a card. Tasks live outside the admin
// panel; seeding uses this to mimic them.
func (b *Backend) SetCardTasks(ctx context.Context, id int64, total, completed int) error {
	return b.write(ctx, func(q querier) error {
		c, err := get[model.Card](ctx, q, kindCard, idKey(id))
		if err != nil {
			return err
		}
		c.TaskCount = max(total, 0)
		c.CompletedCount = min(max(completed, 0), c.TaskCount)
		c.State = cardState(c)
		return b.put(ctx, q, kindCard, idKey(id), id, c.ProjectID, c)
	})
}
