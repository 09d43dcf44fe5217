package publish

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maauso/gifposter/internal/storage"
	"github.com/maauso/gifposter/internal/tag"
)

// mockStorage implements storage.Storage for testing.
type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) LocalPath(rel string) (string, error) {
	return "/site/" + rel, nil
}

func (m *mockStorage) Exists(ctx context.Context, rel string) bool {
	args := m.Called(ctx, rel)
	return args.Bool(0)
}

func (m *mockStorage) Size(ctx context.Context, rel string) (int64, error) {
	args := m.Called(ctx, rel)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStorage) Publish(ctx context.Context, rel string) (string, error) {
	args := m.Called(ctx, rel)
	return args.String(0), args.Error(1)
}

type countingObserver struct {
	ok, failed int
}

func (c *countingObserver) ObservePublish(err error) {
	if err != nil {
		c.failed++
		return
	}
	c.ok++
}

func TestPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	store := &mockStorage{}
	store.On("Publish", ctx, "a.png").Return("https://b/a.png", nil).Once()
	store.On("Publish", ctx, "a.gif").Return("https://b/a.gif", nil).Once()
	store.On("Publish", ctx, "c.jpg").Return("", errors.New("denied")).Once()
	store.On("Publish", ctx, "c.gif").Return("https://b/c.gif", nil).Once()

	obs := &countingObserver{}
	p := NewPublisher(store, obs, nil)

	uploads, err := p.Publish(ctx, []tag.Asset{
		{Poster: "a.png", Gif: "a.gif"},
		{Poster: "a.png", Gif: "a.gif"},
		{Poster: "c.jpg", Gif: "c.gif"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish c.jpg: denied")
	assert.Equal(t, []Upload{
		{Path: "a.png", URL: "https://b/a.png"},
		{Path: "a.gif", URL: "https://b/a.gif"},
		{Path: "c.gif", URL: "https://b/c.gif"},
	}, uploads)
	assert.Equal(t, 3, obs.ok)
	assert.Equal(t, 1, obs.failed)
	store.AssertExpectations(t)
}

func TestPublisher_NotConfigured(t *testing.T) {
	ctx := context.Background()
	store := &mockStorage{}
	store.On("Publish", ctx, "a.png").Return("", storage.ErrS3NotConfigured)

	_, err := NewPublisher(store, nil, nil).Publish(ctx, []tag.Asset{{Poster: "a.png", Gif: "a.gif"}})
	assert.ErrorIs(t, err, storage.ErrS3NotConfigured)
	store.AssertNumberOfCalls(t, "Publish", 1)
}

func TestPublisher_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPublisher(&mockStorage{}, nil, nil).Publish(ctx, []tag.Asset{{Poster: "a.png", Gif: "a.gif"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublisher_Empty(t *testing.T) {
	uploads, err := NewPublisher(&mockStorage{}, nil, nil).Publish(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, uploads)
}
