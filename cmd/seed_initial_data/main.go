package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"exam-express/cmd/seed_initial_data/internal/seedmodels"
	"exam-express/internal/config"
	"exam-express/internal/database"
	"exam-express/internal/domain"
	"exam-express/internal/logger"
	"exam-express/internal/repository"
	"exam-express/internal/service"
	"exam-express/internal/util"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	seedFilePath = "configs/seed_data/users.json"
)

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		// logger is not initialized yet
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	log.Info("Starting initial data seeding process...")
	db, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, cfg.DB.Driver); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	log.Info("Loading seed data from file", zap.String("path", seedFilePath))
	byteValue, err := os.ReadFile(seedFilePath)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", seedFilePath), zap.Error(err))
	}

	var seedUsers []seedmodels.SeedUser
	if err := json.Unmarshal(byteValue, &seedUsers); err != nil {
		log.Fatal("Failed to unmarshal seed data", zap.Error(err))
	}
	log.Info("Successfully unmarshalled seed data", zap.Int("users_loaded", len(seedUsers)))

	if err := seedData(ctx, db, log, cfg.Admin.Username, seedUsers); err != nil {
		log.Fatal("Seeding failed, transaction rolled back", zap.Error(err))
	}
	log.Info("Initial data seeding process completed.")
}

func seedData(ctx context.Context, db *sqlx.DB, log *zap.Logger, adminUsername string, seedUsers []seedmodels.SeedUser) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("Failed to rollback transaction", zap.Error(rbErr))
			}
		} else if cErr := tx.Commit(); cErr != nil {
			log.Error("Failed to commit transaction", zap.Error(cErr))
			err = cErr
		}
	}()

	txUserRepo := repository.NewUserRepository(tx)
	txKeyRepo := repository.NewAnswerKeyRepository(tx)

	for _, su := range seedUsers {
		if su.Username == adminUsername {
			log.Warn("Seed user uses the administrator username, skipping.", zap.String("username", su.Username))
			continue
		}
		existing, errUser := txUserRepo.GetByUsername(ctx, su.Username)
		if errUser != nil {
			return fmt.Errorf("error checking user %s: %w", su.Username, errUser)
		}
		if existing != nil {
			log.Info("User exists, skipping.", zap.String("username", su.Username))
			continue
		}

		var hash string
		if su.Password != "" {
			if hash, errUser = service.HashPassword(su.Password); errUser != nil {
				return fmt.Errorf("failed to hash password for %s: %w", su.Username, errUser)
			}
		}
		user := domain.NewUser(util.NewULID(), su.Username, hash)
		if errUser = user.Validate(); errUser != nil {
			return fmt.Errorf("invalid seed user %q: %w", su.Username, errUser)
		}
		if errUser = txUserRepo.Create(ctx, user); errUser != nil {
			return fmt.Errorf("failed to create user %s: %w", su.Username, errUser)
		}
		log.Info("Created user.", zap.String("id", user.ID), zap.String("username", user.Username), zap.Bool("has_password", user.HasPassword()))
	}

	current, err := txKeyRepo.GetLatest(ctx)
	if err != nil {
		return fmt.Errorf("error loading answer key: %w", err)
	}
	if current != nil {
		log.Info("Answer key already stored, leaving it unchanged.")
		return nil
	}
	key := domain.DefaultAnswerKey()
	version, err := txKeyRepo.Save(ctx, &key)
	if err != nil {
		return fmt.Errorf("failed to store default answer key: %w", err)
	}
	log.Info("Stored default answer key.", zap.Int("version", version), zap.Int("questions", key.QuestionCount()))
	return nil
}
