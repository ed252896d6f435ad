package profile

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mgusev/vidhub/internal/models"
	"github.com/mgusev/vidhub/internal/service"
	"github.com/mgusev/vidhub/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUsers struct {
	users map[int64]models.User
}

func (f *fakeUsers) User(_ context.Context, id int64) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) UserByName(_ context.Context, name string) (models.User, error) {
	for _, u := range f.users {
		if u.Name == name {
			return u, nil
		}
	}
	return models.User{}, storage.ErrUserNotFound
}

func (f *fakeUsers) UpdateUserName(_ context.Context, id int64, name string) error {
	u, ok := f.users[id]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.Name = name
	f.users[id] = u
	return nil
}

func (f *fakeUsers) UpdateUserPassHash(_ context.Context, id int64, passHash []byte) error {
	u, ok := f.users[id]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.PassHash = passHash
	f.users[id] = u
	return nil
}

func (f *fakeUsers) UpdateUserCoverPhoto(_ context.Context, id int64, path string) error {
	u, ok := f.users[id]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.CoverPhoto = path
	f.users[id] = u
	return nil
}

type fakeSnapshots struct {
	renamed  map[int64]string
	rephotod map[int64]string
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{
		renamed:  make(map[int64]string),
		rephotod: make(map[int64]string),
	}
}

func (f *fakeSnapshots) RenameCommentsAuthor(_ context.Context, userID int64, newName string) error {
	f.renamed[userID] = newName
	return nil
}

func (f *fakeSnapshots) UpdateCommentsAuthorPhoto(_ context.Context, userID int64, newPath string) error {
	f.rephotod[userID] = newPath
	return nil
}

type fakeSource struct {
	removed []string
}

func (f *fakeSource) Delete(_ context.Context, relPath string) error {
	f.removed = append(f.removed, relPath)
	return nil
}

func newTestProfile(users map[int64]models.User) (*Profile, *fakeUsers, *fakeSnapshots, *fakeSource) {
	userStorage := &fakeUsers{users: users}
	snapshots := newFakeSnapshots()
	src := &fakeSource{}

	return New(discardLogger(), userStorage, snapshots, src), userStorage, snapshots, src
}

func TestUser(t *testing.T) {
	p, _, _, _ := newTestProfile(map[int64]models.User{
		1: {ID: 1, Name: "alice", Email: "a@b.c", PassHash: []byte("hash"), Role: models.RoleUser},
	})

	user, err := p.User(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, "a@b.c", user.Email)
}

func TestUserNotFound(t *testing.T) {
	p, _, _, _ := newTestProfile(map[int64]models.User{})

	_, err := p.User(context.Background(), 404)
	require.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestUpdateNoOp(t *testing.T) {
	p, users, snapshots, _ := newTestProfile(map[int64]models.User{
		1: {ID: 1, Name: "alice", PassHash: []byte("hash")},
	})

	err := p.Update(context.Background(), 1, models.ProfileUpdate{})
	require.NoError(t, err)

	assert.Equal(t, "alice", users.users[1].Name)
	assert.Equal(t, []byte("hash"), users.users[1].PassHash)
	assert.Empty(t, snapshots.renamed)
}

func TestUpdateName(t *testing.T) {
	p, users, snapshots, _ := newTestProfile(map[int64]models.User{
		1: {ID: 1, Name: "alice"},
	})

	err := p.Update(context.Background(), 1, models.ProfileUpdate{Name: "alicia"})
	require.NoError(t, err)

	assert.Equal(t, "alicia", users.users[1].Name)
	assert.Equal(t, "alicia", snapshots.renamed[1])
}

func TestUpdateNameTaken(t *testing.T) {
	p, users, snapshots, _ := newTestProfile(map[int64]models.User{
		1: {ID: 1, Name: "alice"},
		2: {ID: 2, Name: "bob"},
	})

	err := p.Update(context.Background(), 1, models.ProfileUpdate{Name: "bob"})
	require.ErrorIs(t, err, service.ErrUserExists)

	assert.Equal(t, "alice", users.users[1].Name)
	assert.Empty(t, snapshots.renamed)
}

func TestUpdateNameUnchanged(t *testing.T) {
	// setting the current name again is not a conflict
	p, users, _, _ := newTestProfile(map[int64]models.User{
		1: {ID: 1, Name: "alice"},
	})

	err := p.Update(context.Background(), 1, models.ProfileUpdate{Name: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", users.users[1].Name)
}

func TestUpdatePassword(t *testing.T) {
	p, users, snapshots, _ := newTestProfile(map[int64]models.User{
		1: {ID: 1, Name: "alice", PassHash: []byte("old")},
	})

	err := p.Update(context.Background(), 1, models.ProfileUpdate{Password: "s3cret"})
	require.NoError(t, err)

	require.NoError(t, bcrypt.CompareHashAndPassword(users.users[1].PassHash, []byte("s3cret")))
	assert.Equal(t, "alice", users.users[1].Name)
	assert.Empty(t, snapshots.renamed)
}

func TestUpdateCoverPhoto(t *testing.T) {
	p, users, snapshots, src := newTestProfile(map[int64]models.User{
		1: {ID: 1, Name: "alice", CoverPhoto: "coverPhotos/old.png"},
	})

	err := p.UpdateCoverPhoto(context.Background(), 1, "coverPhotos/new.png")
	require.NoError(t, err)

	assert.Equal(t, "coverPhotos/new.png", users.users[1].CoverPhoto)
	assert.Equal(t, "coverPhotos/new.png", snapshots.rephotod[1])
	assert.Equal(t, []string{"coverPhotos/old.png"}, src.removed)
}

func TestUpdateCoverPhotoFirstUpload(t *testing.T) {
	p, users, _, src := newTestProfile(map[int64]models.User{
		1: {ID: 1, Name: "alice"},
	})

	err := p.UpdateCoverPhoto(context.Background(), 1, "coverPhotos/new.png")
	require.NoError(t, err)

	assert.Equal(t, "coverPhotos/new.png", users.users[1].CoverPhoto)
	assert.Empty(t, src.removed)
}

func TestUpdateCoverPhotoNotFound(t *testing.T) {
	p, _, _, _ := newTestProfile(map[int64]models.User{})

	err := p.UpdateCoverPhoto(context.Background(), 404, "coverPhotos/new.png")
	require.ErrorIs(t, err, service.ErrUserNotFound)
}
