package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	routerApp "github.com/mgusev/vidhub/internal/app/router"
	"github.com/mgusev/vidhub/internal/lib/logger/sl"
	"github.com/mgusev/vidhub/internal/models"
	"github.com/mgusev/vidhub/internal/storage"
	"github.com/mgusev/vidhub/internal/storage/sqlite"
)

type App struct {
	Router routerApp.App
}

func New(
	log *slog.Logger,
	address string,
	storagePath string,
	tokenTTL time.Duration,
	secret []byte,
	adminEmail string,
	adminPass []byte,
	timeout time.Duration,
	tmpDir string,
	bodyLimit int,
	mediaRoot string,
	uploadTimeout time.Duration,
	probeTimeout time.Duration,
) *App {
	store, err := sqlite.New(storagePath)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if adminEmail != "" {
		if err := bootstrapAdmin(log, store, adminEmail, adminPass); err != nil {
			log.Error("failed to bootstrap admin", sl.Err(err))
			os.Exit(1)
		}
	}

	routerApp := routerApp.New(
		log,
		store,
		address,
		tokenTTL,
		secret,
		timeout,
		tmpDir,
		bodyLimit,
		mediaRoot,
		uploadTimeout,
		probeTimeout,
	)

	return &App{
		Router: *routerApp,
	}
}

// bootstrapAdmin makes sure the configured admin account exists.
// An existing account keeps its stored credentials.
func bootstrapAdmin(log *slog.Logger, store *sqlite.Storage, email string, pass []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := store.UserByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return err
	}

	passHash, err := bcrypt.GenerateFromPassword(pass, bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	id, err := store.SaveUser(ctx, models.User{
		Name:     "admin",
		Email:    email,
		PassHash: passHash,
		Role:     models.RoleAdmin,
	})
	if err != nil {
		return err
	}

	log.Info("created admin account", slog.Int64("id", id))

	return nil
}
