package service

import (
	"context"

	"porchlight/internal/identity"
	"porchlight/internal/models"
	"porchlight/internal/repository"

	"github.com/samber/lo"
)

type ReactionService struct {
	repo repository.ReactionRepository
}

type ToggleReactionInput struct {
	User      identity.User
	CommentID uint
	Emoji     string
}

// ToggleResult reports whether the toggle added or removed the reaction.
type ToggleResult struct {
	Added bool `json:"added"`
}

func NewReactionService(repo repository.ReactionRepository) *ReactionService {
	return &ReactionService{repo: repo}
}

// Get returns one entry per distinct emoji used on the comment, in
// first-seen order, each with its count and the reacting user ids.
func (s *ReactionService) Get(ctx context.Context, commentID uint) ([]models.ReactionGroup, error) {
	rows, err := s.repo.ListByComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return groupReactions(rows), nil
}

// GetBatch computes the same grouping per comment id. Every requested id
// gets an entry, empty when the comment has no reactions, and reactions
// never appear under another comment's key.
func (s *ReactionService) GetBatch(ctx context.Context, commentIDs []uint) (map[uint][]models.ReactionGroup, error) {
	result := make(map[uint][]models.ReactionGroup, len(commentIDs))
	for _, id := range commentIDs {
		result[id] = []models.ReactionGroup{}
	}

	rows, err := s.repo.ListByComments(ctx, lo.Uniq(commentIDs))
	if err != nil {
		return nil, err
	}

	byComment := lo.GroupBy(rows, func(r *models.Reaction) uint { return r.CommentID })
	for id, commentRows := range byComment {
		result[id] = groupReactions(commentRows)
	}

	return result, nil
}

// Toggle flips the caller's reaction for the given (comment, emoji) pair.
// The emoji is not validated against the recognized set; that list is a UI
// affordance only.
func (s *ReactionService) Toggle(ctx context.Context, in ToggleReactionInput) (*ToggleResult, error) {
	if !in.User.Authenticated() {
		return nil, models.NewUnauthenticatedError("You must be signed in to react")
	}

	added, err := s.repo.Toggle(ctx, in.CommentID, in.User.ID, in.Emoji)
	if err != nil {
		return nil, err
	}
	return &ToggleResult{Added: added}, nil
}

// groupReactions aggregates rows per emoji preserving first-seen order, so
// repeated queries render reaction pills in a stable sequence.
func groupReactions(rows []*models.Reaction) []models.ReactionGroup {
	groups := make([]models.ReactionGroup, 0, len(rows))
	index := make(map[string]int, len(rows))

	for _, r := range rows {
		if i, ok := index[r.Emoji]; ok {
			groups[i].Count++
			groups[i].UserIDs = append(groups[i].UserIDs, r.UserID)
			continue
		}
		index[r.Emoji] = len(groups)
		groups = append(groups, models.ReactionGroup{
			Emoji:   r.Emoji,
			Count:   1,
			UserIDs: []string{r.UserID},
		})
	}

	return groups
}
