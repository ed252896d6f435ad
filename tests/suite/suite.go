package suite

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gavv/httpexpect/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	routerApp "github.com/mgusev/vidhub/internal/app/router"
	"github.com/mgusev/vidhub/internal/models"
	"github.com/mgusev/vidhub/internal/storage/sqlite"
)

// Actual environment
var (
	_      = godotenv.Load("../.env")
	secret = fetchSecret()
)

const passDefaultLen = 10

// Secret returns the JWT secret the suite signs tokens with.
func Secret() string {
	return secret
}

func fetchSecret() string {
	if s := os.Getenv("SECRET"); s != "" {
		return s
	}
	return "test-secret"
}

// Suite runs the whole application in-process: requests go through
// the fiber handler stack without opening a socket.
type Suite struct {
	T       *testing.T
	Storage *sqlite.Storage
}

func New(t *testing.T) (*Suite, *httpexpect.Expect) {
	t.Helper()

	storage, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to init storage: %v", err)
	}
	t.Cleanup(func() { storage.Stop() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := routerApp.New(
		log,
		storage,
		"localhost:0",
		time.Hour,
		[]byte(secret),
		4*time.Second,
		t.TempDir(),
		512*1024*1024,
		t.TempDir(),
		30*time.Second,
		10*time.Second,
	)

	e := httpexpect.WithConfig(httpexpect.Config{
		TestName: t.Name(),
		BaseURL:  "http://vidhub.test",
		Client: &http.Client{
			Transport: fiberTransport{app: router.Fiber()},
		},
		Reporter: httpexpect.NewAssertReporter(t),
	})

	return &Suite{
		T:       t,
		Storage: storage,
	}, e
}

type fiberTransport struct {
	app *fiber.App
}

func (t fiberTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.app.Test(req, -1)
}

// RandomUser returns a signup form with random credentials.
func (s *Suite) RandomUser() models.SignUpIn {
	return models.SignUpIn{
		Name:     gofakeit.Username(),
		Email:    gofakeit.Email(),
		Password: gofakeit.Password(true, true, true, true, false, passDefaultLen),
	}
}

// SignUp registers a random user through the API and returns
// the form with the issued token.
func (s *Suite) SignUp(e *httpexpect.Expect) (models.SignUpIn, string) {
	s.T.Helper()

	form := s.RandomUser()

	token := e.POST("/signup").
		WithJSON(form).
		Expect().
		Status(200).
		JSON().Path("$.token").String().NotEmpty().Raw()

	return form, token
}

// CreateAdmin seeds an admin account directly in storage and logs
// it in through the API.
func (s *Suite) CreateAdmin(e *httpexpect.Expect) string {
	s.T.Helper()

	email := gofakeit.Email()
	pass := gofakeit.Password(true, true, true, true, false, passDefaultLen)

	passHash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		s.T.Fatalf("failed to hash password: %v", err)
	}

	_, err = s.Storage.SaveUser(context.Background(), models.User{
		Name:     gofakeit.Username(),
		Email:    email,
		PassHash: passHash,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		s.T.Fatalf("failed to save admin: %v", err)
	}

	return e.POST("/login").
		WithJSON(models.LoginIn{Email: email, Password: pass}).
		Expect().
		Status(200).
		JSON().Path("$.token").String().NotEmpty().Raw()
}

// SeedVideo writes a video record directly to storage, skipping the
// upload pipeline.
func (s *Suite) SeedVideo(title string) int64 {
	s.T.Helper()

	now := time.Now().UnixMilli()
	id, err := s.Storage.SaveVideo(context.Background(), models.Video{
		Title:       title,
		Description: gofakeit.Sentence(6),
		Video:       "videos/" + gofakeit.UUID() + ".mp4",
		Thumbnail:   "thumbnails/" + gofakeit.UUID() + ".png",
		Duration:    "0:1:30",
		Watch:       now,
		CreatedAt:   now,
	})
	if err != nil {
		s.T.Fatalf("failed to seed video: %v", err)
	}

	return id
}
