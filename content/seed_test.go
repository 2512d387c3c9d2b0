package content

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeedIsValid(t *testing.T) {
	s := DefaultSeed()
	require.NotEmpty(t, s.Posts)
	require.NotEmpty(t, s.Photos)
	require.NotEmpty(t, s.Publications)

	for _, p := range s.Posts {
		assert.NoError(t, p.Validate(), p.Title)
		assert.NotEmpty(t, p.ID)
	}
	for _, p := range s.Photos {
		assert.NoError(t, p.Validate(), p.Description)
	}
	for _, p := range s.Publications {
		assert.NoError(t, p.Validate(), p.Title)
	}
	for i := 1; i < len(s.Posts); i++ {
		assert.GreaterOrEqual(t, s.Posts[i-1].Date, s.Posts[i].Date)
	}
}

func TestLoadSeedRejectsUnknownFields(t *testing.T) {
	_, err := LoadSeed(strings.NewReader("posts:\n  - title: x\n    body: y\n"))
	assert.Error(t, err)
}

func TestSeedApplyKeepsOrder(t *testing.T) {
	ctx := context.Background()
	seed := DefaultSeed()
	st := NewMemoryStore(WithClock(tickClock()))

	n, err := seed.Apply(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, len(seed.Posts)+len(seed.Photos)+len(seed.Publications), n)

	photos, err := st.ListPhotos(ctx)
	require.NoError(t, err)
	require.Len(t, photos, len(seed.Photos))
	for i := range photos {
		assert.Equal(t, seed.Photos[i].Description, photos[i].Description)
	}

	posts, err := st.ListPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed.Posts[0].Title, posts[0].Title)
}
