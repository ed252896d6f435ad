package video

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgusev/vidhub/internal/models"
	"github.com/mgusev/vidhub/internal/service"
	"github.com/mgusev/vidhub/internal/service/source"
	"github.com/mgusev/vidhub/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStorage struct {
	videos map[int64]models.Video
	nextID int64

	saved       []models.Video
	updated     map[int64][2]string
	deleted     []int64
	incremented []int64
}

func newFakeStorage(videos ...models.Video) *fakeStorage {
	s := &fakeStorage{
		videos:  make(map[int64]models.Video),
		nextID:  1,
		updated: make(map[int64][2]string),
	}
	for _, v := range videos {
		s.videos[v.ID] = v
		if v.ID >= s.nextID {
			s.nextID = v.ID + 1
		}
	}
	return s
}

func (s *fakeStorage) SaveVideo(_ context.Context, video models.Video) (int64, error) {
	video.ID = s.nextID
	s.nextID++
	s.videos[video.ID] = video
	s.saved = append(s.saved, video)
	return video.ID, nil
}

func (s *fakeStorage) Video(_ context.Context, id int64) (models.Video, error) {
	v, ok := s.videos[id]
	if !ok {
		return models.Video{}, storage.ErrVideoNotFound
	}
	return v, nil
}

func (s *fakeStorage) AllVideos(_ context.Context) ([]models.Video, error) {
	out := make([]models.Video, 0, len(s.videos))
	for _, v := range s.videos {
		out = append(out, v)
	}
	return out, nil
}

func (s *fakeStorage) IncrementViews(_ context.Context, id int64) error {
	v, ok := s.videos[id]
	if !ok {
		return storage.ErrVideoNotFound
	}
	v.Views++
	s.videos[id] = v
	s.incremented = append(s.incremented, id)
	return nil
}

func (s *fakeStorage) UpdateVideoInfo(_ context.Context, id int64, title, description string) error {
	v, ok := s.videos[id]
	if !ok {
		return storage.ErrVideoNotFound
	}
	v.Title = title
	v.Description = description
	s.videos[id] = v
	s.updated[id] = [2]string{title, description}
	return nil
}

func (s *fakeStorage) DeleteVideo(_ context.Context, id int64) error {
	if _, ok := s.videos[id]; !ok {
		return storage.ErrVideoNotFound
	}
	delete(s.videos, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *fakeStorage) Comments(_ context.Context, _ int64) ([]models.Comment, error) {
	return []models.Comment{}, nil
}

func (s *fakeStorage) Likers(_ context.Context, _ int64) ([]int64, error) {
	return []int64{}, nil
}

func (s *fakeStorage) Dislikers(_ context.Context, _ int64) ([]int64, error) {
	return []int64{}, nil
}

type fakeSource struct {
	storeErr    map[source.Category]error
	durationErr error
	duration    string

	stored  []string
	removed []string
}

func (f *fakeSource) Store(_ context.Context, _, originalName string, cat source.Category) (string, error) {
	if err := f.storeErr[cat]; err != nil {
		return "", err
	}
	relPath := filepath.Join(string(cat), originalName)
	f.stored = append(f.stored, relPath)
	return relPath, nil
}

func (f *fakeSource) Duration(_ context.Context, _ string) (string, error) {
	if f.durationErr != nil {
		return "", f.durationErr
	}
	return f.duration, nil
}

func (f *fakeSource) Delete(_ context.Context, relPath string) error {
	f.removed = append(f.removed, relPath)
	return nil
}

func testForm() models.NewVideoIn {
	return models.NewVideoIn{
		Title:         "title",
		Description:   "description",
		VideoTmp:      "/tmp/video",
		VideoName:     "video.mp4",
		ThumbnailTmp:  "/tmp/thumb",
		ThumbnailName: "thumb.png",
	}
}

func TestNewVideo(t *testing.T) {
	store := newFakeStorage()
	src := &fakeSource{duration: "0:1:30"}
	srv := New(discardLogger(), store, src)

	id, err := srv.NewVideo(context.Background(), testForm())
	require.NoError(t, err)

	require.Len(t, store.saved, 1)
	saved := store.saved[0]
	assert.Equal(t, id, saved.ID)
	assert.Equal(t, "title", saved.Title)
	assert.Equal(t, "0:1:30", saved.Duration)
	assert.Equal(t, filepath.Join("videos", "video.mp4"), saved.Video)
	assert.Equal(t, filepath.Join("thumbnails", "thumb.png"), saved.Thumbnail)
	assert.Equal(t, int64(0), saved.Views)
	assert.Equal(t, saved.CreatedAt, saved.Watch)
	assert.Empty(t, src.removed)
}

func TestNewVideoProbeFailure(t *testing.T) {
	store := newFakeStorage()
	src := &fakeSource{durationErr: fmt.Errorf("probe failed")}
	srv := New(discardLogger(), store, src)

	_, err := srv.NewVideo(context.Background(), testForm())
	require.ErrorIs(t, err, service.ErrMediaProbe)

	// both relocated files are removed, no record is written
	assert.ElementsMatch(t, src.stored, src.removed)
	assert.Empty(t, store.saved)
}

func TestNewVideoProbeTimeout(t *testing.T) {
	store := newFakeStorage()
	src := &fakeSource{durationErr: service.ErrTimeout}
	srv := New(discardLogger(), store, src)

	_, err := srv.NewVideo(context.Background(), testForm())
	require.ErrorIs(t, err, service.ErrTimeout)
	assert.ElementsMatch(t, src.stored, src.removed)
	assert.Empty(t, store.saved)
}

func TestNewVideoThumbnailFailure(t *testing.T) {
	store := newFakeStorage()
	src := &fakeSource{
		duration: "0:0:10",
		storeErr: map[source.Category]error{
			source.CategoryThumbnails: fmt.Errorf("disk full"),
		},
	}
	srv := New(discardLogger(), store, src)

	_, err := srv.NewVideo(context.Background(), testForm())
	require.Error(t, err)

	// the already stored video file is removed again
	assert.Equal(t, []string{filepath.Join("videos", "video.mp4")}, src.removed)
	assert.Empty(t, store.saved)
}

func TestWatch(t *testing.T) {
	store := newFakeStorage(models.Video{ID: 3, Title: "title", Views: 41})
	srv := New(discardLogger(), store, &fakeSource{})

	page, err := srv.Watch(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, int64(42), page.Video.Views)
	assert.Equal(t, []int64{3}, store.incremented)
}

func TestWatchNotFound(t *testing.T) {
	srv := New(discardLogger(), newFakeStorage(), &fakeSource{})

	_, err := srv.Watch(context.Background(), 404)
	require.ErrorIs(t, err, service.ErrVideoNotFound)
}

func TestUpdateInfo(t *testing.T) {
	testCases := []struct {
		desc       string
		upd        models.VideoUpdate
		expTitle   string
		expDesc    string
		expUpdated bool
	}{
		{
			desc:       "both fields",
			upd:        models.VideoUpdate{Title: "new title", Description: "new description"},
			expTitle:   "new title",
			expDesc:    "new description",
			expUpdated: true,
		},
		{
			desc:       "title only keeps description",
			upd:        models.VideoUpdate{Title: "new title"},
			expTitle:   "new title",
			expDesc:    "old description",
			expUpdated: true,
		},
		{
			desc:       "description only keeps title",
			upd:        models.VideoUpdate{Description: "new description"},
			expTitle:   "old title",
			expDesc:    "new description",
			expUpdated: true,
		},
		{
			desc:       "both empty is a no-op",
			upd:        models.VideoUpdate{},
			expTitle:   "old title",
			expDesc:    "old description",
			expUpdated: false,
		},
	}

	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			store := newFakeStorage(models.Video{
				ID:          1,
				Title:       "old title",
				Description: "old description",
			})
			srv := New(discardLogger(), store, &fakeSource{})

			err := srv.UpdateInfo(context.Background(), 1, tC.upd)
			require.NoError(t, err)

			v := store.videos[1]
			assert.Equal(t, tC.expTitle, v.Title)
			assert.Equal(t, tC.expDesc, v.Description)

			_, updated := store.updated[1]
			assert.Equal(t, tC.expUpdated, updated)
		})
	}
}

func TestUpdateInfoNotFound(t *testing.T) {
	srv := New(discardLogger(), newFakeStorage(), &fakeSource{})

	err := srv.UpdateInfo(context.Background(), 404, models.VideoUpdate{Title: "x"})
	require.ErrorIs(t, err, service.ErrVideoNotFound)
}

func TestDeleteVideo(t *testing.T) {
	store := newFakeStorage(models.Video{
		ID:        1,
		Video:     "videos/a.mp4",
		Thumbnail: "thumbnails/a.png",
	})
	src := &fakeSource{}
	srv := New(discardLogger(), store, src)

	err := srv.DeleteVideo(context.Background(), 1)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"videos/a.mp4", "thumbnails/a.png"}, src.removed)
	assert.Equal(t, []int64{1}, store.deleted)
}

func TestDeleteVideoNotFound(t *testing.T) {
	srv := New(discardLogger(), newFakeStorage(), &fakeSource{})

	err := srv.DeleteVideo(context.Background(), 404)
	require.ErrorIs(t, err, service.ErrVideoNotFound)
}
