package convert

import (
	"github.com/civicpulse/civicpulse/internal/database/types"
	restTypes "github.com/civicpulse/civicpulse/internal/rest/types"
	"github.com/google/uuid"
)

// Post converts a database post to its REST shape, resolving the
// viewer-specific engagement flags. A zero viewerID means anonymous.
func Post(post *types.Post, viewerID uuid.UUID) *restTypes.Post {
	if post == nil {
		return nil
	}

	result := &restTypes.Post{
		ID:             post.ID,
		AuthorID:       post.AuthorID,
		Content:        post.Content,
		Media:          emptyIfNil(post.Media),
		City:           post.City,
		District:       post.District,
		Lat:            post.Lat,
		Lon:            post.Lon,
		Type:           string(post.Type),
		Classification: Classification(post.Classification),
		Engagement:     restTypes.Engagement(post.Engagement),
		Status:         string(post.Status),
		Severity:       string(post.Severity),
		VerifiedCount:  post.VerifiedCount,
		CreatedAt:      post.CreatedAt,
		UpdatedAt:      post.UpdatedAt,
	}

	if viewerID != uuid.Nil {
		result.Upvoted = post.HasUpvoted(viewerID)
		result.Watching = post.IsWatching(viewerID)
	}

	for _, update := range post.Updates {
		result.Updates = append(result.Updates, ReportUpdate(update))
	}

	return result
}

// Posts converts a page of posts for one viewer.
func Posts(posts []*types.Post, viewerID uuid.UUID) []*restTypes.Post {
	result := make([]*restTypes.Post, 0, len(posts))
	for _, post := range posts {
		result = append(result, Post(post, viewerID))
	}

	return result
}

// Classification converts the embedded AI record.
func Classification(c types.Classification) restTypes.Classification {
	return restTypes.Classification{
		Category:   c.Category,
		Confidence: c.Confidence,
		Tags:       emptyIfNil(c.Tags),
		Keywords:   emptyIfNil(c.Keywords),
		Sentiment:  c.Sentiment,
	}
}

// ReportUpdate converts a report progress note.
func ReportUpdate(update *types.ReportUpdate) *restTypes.ReportUpdate {
	if update == nil {
		return nil
	}

	return &restTypes.ReportUpdate{
		ID:        update.ID,
		AuthorID:  update.AuthorID,
		Content:   update.Content,
		Media:     emptyIfNil(update.Media),
		CreatedAt: update.CreatedAt,
	}
}

// Comment converts a comment with the viewer's like flag.
func Comment(comment *types.Comment, viewerID uuid.UUID) *restTypes.Comment {
	if comment == nil {
		return nil
	}

	result := &restTypes.Comment{
		ID:        comment.ID,
		PostID:    comment.PostID,
		AuthorID:  comment.AuthorID,
		ParentID:  comment.ParentID,
		Content:   comment.Content,
		Likes:     comment.Likes,
		CreatedAt: comment.CreatedAt,
	}

	if viewerID != uuid.Nil {
		result.Liked = comment.HasLiked(viewerID)
	}

	return result
}

// Comments converts a post's comment list for one viewer.
func Comments(comments []*types.Comment, viewerID uuid.UUID) []*restTypes.Comment {
	result := make([]*restTypes.Comment, 0, len(comments))
	for _, comment := range comments {
		result = append(result, Comment(comment, viewerID))
	}

	return result
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}
