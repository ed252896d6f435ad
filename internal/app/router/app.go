package router

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/mgusev/vidhub/internal/storage/sqlite"

	authSrv "github.com/mgusev/vidhub/internal/service/auth"
	engageSrv "github.com/mgusev/vidhub/internal/service/engage"
	jwtSrv "github.com/mgusev/vidhub/internal/service/jwt"
	profileSrv "github.com/mgusev/vidhub/internal/service/profile"
	srcSrv "github.com/mgusev/vidhub/internal/service/source"
	videoSrv "github.com/mgusev/vidhub/internal/service/video"

	authCtr "github.com/mgusev/vidhub/internal/controller/auth"
	engageCtr "github.com/mgusev/vidhub/internal/controller/engage"
	jwtCtr "github.com/mgusev/vidhub/internal/controller/jwt"
	profileCtr "github.com/mgusev/vidhub/internal/controller/profile"
	videoCtr "github.com/mgusev/vidhub/internal/controller/video"
)

type App struct {
	log     *slog.Logger
	address string
	app     *fiber.App
}

// New returns configured router.App
func New(
	log *slog.Logger,
	storage *sqlite.Storage,
	address string,
	tokenTTL time.Duration,
	secret []byte,
	timeout time.Duration,
	tmpDir string,
	bodyLimit int,
	mediaRoot string,
	uploadTimeout time.Duration,
	probeTimeout time.Duration,
) *App {
	// Create sevices
	jwt := jwtSrv.New(secret)

	src := srcSrv.New(
		log,
		mediaRoot,
		uploadTimeout,
		probeTimeout,
	)

	auth := authSrv.New(
		log,
		storage,
		jwt,
		tokenTTL,
	)

	video := videoSrv.New(
		log,
		storage,
		src,
	)

	engage := engageSrv.New(
		log,
		storage,
		storage,
		storage,
		storage,
	)

	profile := profileSrv.New(
		log,
		storage,
		storage,
		src,
	)

	// Upload handlers carry their own deadline: two relocations, one
	// probe, plus the generic budget for the record write. The generic
	// handler timeout alone would cut the configured media budgets short.
	videoUploadTimeout := 2*uploadTimeout + probeTimeout + timeout
	coverUploadTimeout := uploadTimeout + timeout

	// Create controllers
	jwtController := jwtCtr.New(secret)
	authController := authCtr.New(timeout, auth)
	videoController := videoCtr.New(log, timeout, videoUploadTimeout, tmpDir, video, profile)
	engageController := engageCtr.New(timeout, engage)
	profileController := profileCtr.New(log, timeout, coverUploadTimeout, tmpDir, profile, src)

	app := fiber.New(fiber.Config{
		BodyLimit: bodyLimit,
	})

	authRequired := jwtController.AuthRequired()
	adminAccess := videoController.AdminAccess()

	// Public routes
	app.Get("/", videoController.Feed)
	app.Get("/watch/:id", videoController.Watch)
	app.Get("/search", videoController.Search)
	app.Post("/signup", authController.SignUp)
	app.Post("/login", authController.Login)
	app.Get("/logout", authController.Logout)

	// Authenticated routes
	app.Post("/upload-video", authRequired, videoController.Upload)
	app.Post("/upload", authRequired, videoController.Upload)
	app.Post("/do-like", authRequired, engageController.Like)
	app.Post("/do-dislike", authRequired, engageController.Dislike)
	app.Post("/do-comments", authRequired, engageController.Comment)
	app.Post("/delete_comment/:id", authRequired, engageController.DeleteComment)
	app.Post("/edit_comment/:videoId/:commentId", authRequired, engageController.EditComment)
	app.Get("/profile", authRequired, profileController.User)
	app.Post("/update_profile", authRequired, profileController.Update)
	app.Post("/upload_coverPhoto", authRequired, profileController.UploadCoverPhoto)

	// Admin routes
	app.Get("/edit/:id", authRequired, adminAccess, videoController.EditView)
	app.Post("/edit_video/:id", authRequired, adminAccess, videoController.Edit)
	app.Post("/edit/:id", authRequired, adminAccess, videoController.Edit)
	app.Post("/delete/:id", authRequired, adminAccess, videoController.Delete)

	return &App{
		log:     log,
		address: address,
		app:     app,
	}
}

func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

func (a *App) Run() error {
	return a.app.Listen(a.address)
}

func (a *App) Stop() {
	a.app.Shutdown()
}

// Fiber returns the underlying fiber app for in-process testing.
func (a *App) Fiber() *fiber.App {
	return a.app
}
