package convert_test

import (
	"testing"
	"time"

	"github.com/civicpulse/civicpulse/internal/database/types"
	"github.com/civicpulse/civicpulse/internal/database/types/enum"
	"github.com/civicpulse/civicpulse/internal/rest/convert"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostViewerFlags(t *testing.T) {
	t.Parallel()

	author := uuid.New()
	viewer := uuid.New()
	other := uuid.New()

	post := &types.Post{
		ID:       uuid.New(),
		AuthorID: &author,
		Content:  "Broken streetlight on Elm",
		City:     "Springfield",
		Type:     enum.PostTypeReport,
		Status:   enum.PostStatusActive,
		Engagement: types.Engagement{
			Upvotes: 2,
		},
		UpvotedBy: []uuid.UUID{viewer, other},
		WatchedBy: []uuid.UUID{other},
		CreatedAt: time.Now(),
	}

	asViewer := convert.Post(post, viewer)
	require.NotNil(t, asViewer)
	assert.True(t, asViewer.Upvoted)
	assert.False(t, asViewer.Watching)
	assert.Equal(t, "REPORT", asViewer.Type)
	assert.Equal(t, "active", asViewer.Status)
	assert.Equal(t, 2, asViewer.Engagement.Upvotes)

	asAnonymous := convert.Post(post, uuid.Nil)
	require.NotNil(t, asAnonymous)
	assert.False(t, asAnonymous.Upvoted)
	assert.False(t, asAnonymous.Watching)
}

func TestPostNilSlicesBecomeEmpty(t *testing.T) {
	t.Parallel()

	post := &types.Post{
		ID:      uuid.New(),
		Content: "Farmers market this weekend",
		Type:    enum.PostTypeGeneral,
	}

	result := convert.Post(post, uuid.Nil)
	require.NotNil(t, result)
	assert.NotNil(t, result.Media)
	assert.Empty(t, result.Media)
	assert.NotNil(t, result.Classification.Tags)
	assert.NotNil(t, result.Classification.Keywords)
}

func TestCommentLikedFlag(t *testing.T) {
	t.Parallel()

	viewer := uuid.New()
	comment := &types.Comment{
		ID:       uuid.New(),
		PostID:   uuid.New(),
		AuthorID: uuid.New(),
		Content:  "Same issue on my street",
		Likes:    1,
		LikedBy:  []uuid.UUID{viewer},
	}

	liked := convert.Comment(comment, viewer)
	require.NotNil(t, liked)
	assert.True(t, liked.Liked)

	notLiked := convert.Comment(comment, uuid.New())
	require.NotNil(t, notLiked)
	assert.False(t, notLiked.Liked)
}
