package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/streamia/backend/internal/config"
	"github.com/streamia/backend/internal/db"
	"github.com/streamia/backend/internal/models"
	"github.com/streamia/backend/internal/repositories"
)

// defaultAvatarPNG is a 1x1 transparent PNG assigned to accounts that never
// uploaded a profile image.
var defaultAvatarPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

var seedCategories = []string{"Drama", "Comedy", "Documentary", "Sci-Fi"}

type seedVideo struct {
	title       string
	description string
	releaseDate string
	categories  []string
}

var seedVideos = []seedVideo{
	{"First Light", "A pilot episode to exercise the catalog.", "2024-01-15", []string{"Drama"}},
	{"Laugh Track", "Stand-up special recorded live.", "2024-02-20", []string{"Comedy"}},
	{"Deep Field", "A tour of the observable universe.", "2024-03-05", []string{"Documentary", "Sci-Fi"}},
}

// runSeed wipes the catalog tables and installs a development data set: the
// default avatar, a superuser taken from the environment, and a handful of
// categories and videos.
func runSeed(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.SuperuserEmail == "" || cfg.SuperuserPassword == "" {
		return errors.New("STREAMIA_SUPERUSER_EMAIL and STREAMIA_SUPERUSER_PASSWORD must be set to seed")
	}

	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := truncateAll(ctx, pool); err != nil {
		return err
	}

	avatars := repositories.NewPostgresAvatarRepository(pool)
	avatarID, err := avatars.Create(ctx, defaultAvatarPNG)
	if err != nil {
		return fmt.Errorf("seed default avatar: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SuperuserPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash superuser password: %w", err)
	}

	users := repositories.NewPostgresUserRepository(pool)
	superuserID, err := users.Create(ctx, models.User{
		Username:     cfg.SuperuserName,
		Email:        cfg.SuperuserEmail,
		PasswordHash: string(hash),
		IsAdmin:      true,
		AvatarID:     &avatarID,
	})
	if err != nil {
		return fmt.Errorf("seed superuser: %w", err)
	}

	categories := repositories.NewPostgresCategoryRepository(pool)
	categoryIDs := make(map[string]int64, len(seedCategories))
	for _, name := range seedCategories {
		category, err := categories.Create(ctx, name)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
		categoryIDs[name] = category.ID
	}

	videos := repositories.NewPostgresVideoRepository(pool)
	for _, seed := range seedVideos {
		releaseDate, err := time.Parse("2006-01-02", seed.releaseDate)
		if err != nil {
			return fmt.Errorf("parse release date for %q: %w", seed.title, err)
		}

		videoID, err := videos.Create(ctx, models.Video{
			Title:       seed.title,
			Description: seed.description,
			Available:   true,
			ReleaseDate: releaseDate,
			CreatedAt:   time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("seed video %q: %w", seed.title, err)
		}

		ids := make([]int64, 0, len(seed.categories))
		for _, name := range seed.categories {
			ids = append(ids, categoryIDs[name])
		}
		if err := videos.SetCategories(ctx, videoID, ids); err != nil {
			return fmt.Errorf("link categories for %q: %w", seed.title, err)
		}
	}

	fmt.Printf("seeded superuser %d, %d categories, %d videos\n", superuserID, len(seedCategories), len(seedVideos))
	return nil
}

func truncateAll(ctx context.Context, pool db.Pool) error {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        TRUNCATE refresh_tokens, watchlist_video, watchlists, favorites, comments,
                 category_video, categories, videos, users, avatars
        RESTART IDENTITY CASCADE
    `)
	if err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}
