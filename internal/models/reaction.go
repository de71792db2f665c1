package models

// ReactionEmojis is the set of emoji the site's UI offers. It is an
// affordance for clients only; ToggleReaction accepts any string.
var ReactionEmojis = []string{"👍", "👎", "❤️", "🔥", "😂", "🎉", "🤔"}

// Reaction records that a user reacted to a comment with one emoji.
// At most one row exists per (user, comment, emoji); toggle semantics
// enforce this rather than a database uniqueness constraint.
type Reaction struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CommentID uint   `gorm:"not null;index;index:idx_reactions_user_comment,priority:2" json:"commentId"`
	UserID    string `gorm:"not null;index:idx_reactions_user_comment,priority:1" json:"userId"`
	Emoji     string `gorm:"not null" json:"emoji"`
	CreatedAt int64  `gorm:"autoCreateTime:milli" json:"createdAt"`
}

// ReactionGroup is the per-emoji aggregate for one comment. UserIDs lets
// the UI show "you reacted" state without a second round trip.
type ReactionGroup struct {
	Emoji   string   `json:"emoji"`
	Count   int      `json:"count"`
	UserIDs []string `json:"userIds"`
}
