package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNestedReply     = errors.New("replies to replies are not allowed")
)

// Comment is a user comment on a post. One level of threading is supported:
// a comment may reference a parent comment, but never a grandparent.
type Comment struct {
	bun.BaseModel `bun:"table:comments"`

	ID        uuid.UUID   `bun:",pk,type:uuid"               json:"id"`
	PostID    uuid.UUID   `bun:",notnull,type:uuid"          json:"postId"`
	AuthorID  uuid.UUID   `bun:",notnull,type:uuid"          json:"authorId"`
	ParentID  *uuid.UUID  `bun:"parent_id,type:uuid"         json:"parentId,omitempty"`
	Content   string      `bun:",notnull"                    json:"content"`
	Likes     int         `bun:",notnull,default:0"          json:"likes"`
	LikedBy   []uuid.UUID `bun:"liked_by,array,type:uuid[]"  json:"likedBy"`
	CreatedAt time.Time   `bun:",notnull"                    json:"createdAt"`
	UpdatedAt time.Time   `bun:",notnull"                    json:"updatedAt"`
}

// HasLiked reports whether the given user is in the liker set.
func (c *Comment) HasLiked(userID uuid.UUID) bool {
	for _, id := range c.LikedBy {
		if id == userID {
			return true
		}
	}

	return false
}
