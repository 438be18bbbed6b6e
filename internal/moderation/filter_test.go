package moderation_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/quillglow/internal/domain"
	"github.com/jonesrussell/quillglow/internal/moderation"
)

func TestFilter_Blocked(t *testing.T) {
	t.Parallel()

	f := moderation.Default()

	testCases := []struct {
		text string
		want bool
	}{
		{text: "photosynthesis for kids", want: false},
		{text: "World War II timeline", want: false},
		{text: "NSFW memes", want: true},
		{text: "free XXX videos", want: true},
		{text: "hot girls", want: true},
		{text: "18+ only", want: true},
		{text: "Middlesex county history", want: true},
		{text: "ｎｓｆｗ art", want: true},
		{text: "pórn", want: true},
		{text: "café culture in Paris", want: false},
		{text: "", want: false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, f.Blocked(tc.text), "Blocked(%q)", tc.text)
	}
}

func TestDefault_HasBuiltinTerms(t *testing.T) {
	t.Parallel()

	assert.Len(t, moderation.Default().Terms(), 19)
}

func TestNew_NormalisesAndExtends(t *testing.T) {
	t.Parallel()

	f := moderation.Default("  Gambling ", "PORN", "")

	terms := f.Terms()
	assert.Len(t, terms, 20)
	assert.Contains(t, terms, "gambling")
	assert.True(t, f.Blocked("online gambling tips"))
}

func TestFilter_TermsIsACopy(t *testing.T) {
	t.Parallel()

	f := moderation.New([]string{"casino"})
	terms := f.Terms()
	terms[0] = "changed"

	assert.True(t, f.Blocked("casino royale"))
}

func TestFilter_ZeroValueBlocksNothing(t *testing.T) {
	t.Parallel()

	var f moderation.Filter
	assert.False(t, f.Blocked("porn"))
}

func TestFilter_FilterArticles_PreservesOrder(t *testing.T) {
	t.Parallel()

	f := moderation.Default()
	in := []domain.Article{
		{Title: "Cell biology", Description: "Intro to cells"},
		{Title: "Adult content", Description: "clean"},
		{Title: "Mitosis", Description: "an explicit diagram"},
		{Title: "Meiosis", Description: "Gamete formation"},
	}

	out, removed := f.FilterArticles(in)

	assert.Equal(t, 2, removed)
	if assert.Len(t, out, 2) {
		assert.Equal(t, "Cell biology", out[0].Title)
		assert.Equal(t, "Meiosis", out[1].Title)
	}
}

func TestFilter_FilterVideos(t *testing.T) {
	t.Parallel()

	f := moderation.Default()
	in := []domain.Video{
		{ID: "a", Title: "Crash Course Chemistry", Description: "Atoms"},
		{ID: "b", Title: "Sexy chemistry", Description: "clickbait"},
	}

	out, removed := f.FilterVideos(in)

	assert.Equal(t, 1, removed)
	assert.Equal(t, []domain.Video{in[0]}, out)
}

func TestFilter_EmptyInputGivesEmptySlice(t *testing.T) {
	t.Parallel()

	out, removed := moderation.Default().FilterArticles(nil)

	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Zero(t, removed)
}

func TestFilter_ConcurrentUse(t *testing.T) {
	t.Parallel()

	f := moderation.Default()
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				assert.True(t, f.Blocked("free xxx"))
			} else {
				assert.False(t, f.Blocked("plate tectonics"))
			}
		}()
	}
	wg.Wait()
}
