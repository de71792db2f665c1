// Package models contains data structures for the application's domain models.
package models

// Comment represents a comment on a blog post or the global guestbook.
// A nil PostSlug means the comment belongs to the global scope; a nil
// ParentID means it is top-level. Replies are exactly one level deep.
type Comment struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	PostSlug  *string `gorm:"index" json:"postSlug,omitempty"`
	UserID    string  `gorm:"not null;index" json:"userId"`
	UserName  string  `gorm:"not null" json:"userName"`
	UserImage string  `json:"userImage,omitempty"`
	Content   string  `gorm:"type:text;not null" json:"content"`
	CreatedAt int64   `gorm:"autoCreateTime:milli;index" json:"createdAt"`
	ParentID  *uint   `gorm:"index" json:"parentId,omitempty"`
	// ReplyCount is denormalized and maintained incrementally on reply
	// add/remove. Only consulted for top-level comments.
	ReplyCount int `gorm:"not null;default:0" json:"replyCount"`
}

// IsReply reports whether the comment is a reply to another comment.
func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}
