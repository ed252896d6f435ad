package tests

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/mgusev/vidhub/internal/models"
	"github.com/mgusev/vidhub/tests/suite"
)

func TestProfile(t *testing.T) {
	s, e := suite.New(t)

	form, token := s.SignUp(e)

	resp := e.GET("/profile").
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON()
	resp.Path("$.user.name").String().IsEqual(form.Name)
	resp.Path("$.user.email").String().IsEqual(form.Email)

	// the password hash never leaves the server
	resp.Path("$.user").Object().NotContainsKey("passHash")
}

func TestProfileRequiresAuth(t *testing.T) {
	_, e := suite.New(t)

	e.GET("/profile").
		Expect().
		Status(401)
}

func TestUpdateProfileName(t *testing.T) {
	s, e := suite.New(t)

	_, token := s.SignUp(e)
	newName := gofakeit.Username()

	e.POST("/update_profile").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(models.ProfileUpdate{Name: newName}).
		Expect().
		Status(200).
		JSON().Path("$.message").String().IsEqual("Profile updated successfully")

	e.GET("/profile").
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON().Path("$.user.name").String().IsEqual(newName)
}

func TestUpdateProfileNameTaken(t *testing.T) {
	s, e := suite.New(t)

	taken, _ := s.SignUp(e)
	_, token := s.SignUp(e)

	e.POST("/update_profile").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(models.ProfileUpdate{Name: taken.Name}).
		Expect().
		Status(400)
}

func TestUpdateProfilePassword(t *testing.T) {
	s, e := suite.New(t)

	form, token := s.SignUp(e)
	newPass := gofakeit.Password(true, true, true, true, false, 12)

	e.POST("/update_profile").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(models.ProfileUpdate{Password: newPass}).
		Expect().
		Status(200)

	// the old password stops working, the new one logs in
	e.POST("/login").
		WithJSON(models.LoginIn{Email: form.Email, Password: form.Password}).
		Expect().
		Status(400)

	e.POST("/login").
		WithJSON(models.LoginIn{Email: form.Email, Password: newPass}).
		Expect().
		Status(200)
}

func TestUpdateProfileEmptyIsNoOp(t *testing.T) {
	s, e := suite.New(t)

	form, token := s.SignUp(e)

	e.POST("/update_profile").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(models.ProfileUpdate{}).
		Expect().
		Status(200)

	e.GET("/profile").
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON().Path("$.user.name").String().IsEqual(form.Name)
}

func TestRenameRewritesCommentSnapshots(t *testing.T) {
	s, e := suite.New(t)

	_, token := s.SignUp(e)
	id := s.SeedVideo("first")

	e.POST("/do-comments").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(commentIn{VideoID: id, Comment: "hello"}).
		Expect().
		Status(200)

	newName := gofakeit.Username()
	e.POST("/update_profile").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(models.ProfileUpdate{Name: newName}).
		Expect().
		Status(200)

	// the embedded author snapshot follows the rename
	comments := e.GET("/watch/{id}", id).
		Expect().
		Status(200).
		JSON().Path("$.comments").Array()
	comments.Length().IsEqual(1)
	comments.Value(0).Object().Value("user").Object().Value("name").IsEqual(newName)
}

func TestRenameLeavesOtherSnapshotsAlone(t *testing.T) {
	s, e := suite.New(t)

	other, otherToken := s.SignUp(e)
	_, token := s.SignUp(e)
	id := s.SeedVideo("first")

	e.POST("/do-comments").
		WithHeader("Authorization", "Bearer "+otherToken).
		WithJSON(commentIn{VideoID: id, Comment: "mine"}).
		Expect().
		Status(200)

	e.POST("/update_profile").
		WithHeader("Authorization", "Bearer "+token).
		WithJSON(models.ProfileUpdate{Name: gofakeit.Username()}).
		Expect().
		Status(200)

	comments := e.GET("/watch/{id}", id).
		Expect().
		Status(200).
		JSON().Path("$.comments").Array()
	comments.Value(0).Object().Value("user").Object().Value("name").IsEqual(other.Name)
}

func TestUploadCoverPhotoRequiresAuth(t *testing.T) {
	_, e := suite.New(t)

	e.POST("/upload_coverPhoto").
		WithMultipart().
		WithFileBytes("coverPhoto", "photo.png", []byte("not really a png")).
		Expect().
		Status(401)
}

func TestUploadCoverPhotoRejectsNonImage(t *testing.T) {
	s, e := suite.New(t)

	_, token := s.SignUp(e)

	e.POST("/upload_coverPhoto").
		WithHeader("Authorization", "Bearer "+token).
		WithMultipart().
		WithFileBytes("coverPhoto", "photo.png", []byte("plain text payload")).
		Expect().
		Status(400)
}

func TestUploadCoverPhoto(t *testing.T) {
	s, e := suite.New(t)

	_, token := s.SignUp(e)

	resp := e.POST("/upload_coverPhoto").
		WithHeader("Authorization", "Bearer "+token).
		WithMultipart().
		WithFileBytes("coverPhoto", "photo.png", pngBytes()).
		Expect().
		Status(200).
		JSON()
	resp.Path("$.message").String().IsEqual("Profile photo updated successfully")
	coverPhoto := resp.Path("$.coverPhoto").String().NotEmpty().Raw()

	e.GET("/profile").
		WithHeader("Authorization", "Bearer "+token).
		Expect().
		Status(200).
		JSON().Path("$.user.coverPhoto").String().IsEqual(coverPhoto)
}

// pngBytes returns a minimal 1x1 PNG.
func pngBytes() []byte {
	return []byte{
		0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a,
		0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
		0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
		0x42, 0x60, 0x82,
	}
}
