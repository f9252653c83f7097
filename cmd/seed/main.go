package main

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"codecrafting/internal/auth"
	"codecrafting/internal/config"
	"codecrafting/internal/db"
	"codecrafting/internal/model"
	"codecrafting/internal/repository"
)

const seedPassword = "Passw0rd!"

type seedUser struct {
	name  string
	email string
	role  model.Role
}

var seedUsers = []seedUser{
	{name: "Alice Codecraft", email: "alice@codecrafting.fr", role: model.RoleAdmin},
	{name: "Bob Artisan", email: "bob@codecrafting.fr", role: model.RoleMember},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.OAuthAccount{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	users := repository.NewUserRepository(gormDB)
	ctx := context.Background()

	for _, seed := range seedUsers {
		if _, err := users.FindByEmail(ctx, seed.email); err == nil {
			log.Printf("User %s already exists, skipping", seed.email)
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("Failed to check user %s: %v", seed.email, err)
		}

		hash, err := auth.HashPassword(seedPassword)
		if err != nil {
			log.Fatalf("Failed to hash password: %v", err)
		}

		user := &model.User{
			ID:           uuid.New(),
			Name:         seed.name,
			Email:        seed.email,
			PasswordHash: &hash,
			Role:         seed.role,
		}
		if err := users.Create(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", seed.email, err)
		}
		log.Printf("Created %s user %s", seed.role, seed.email)
	}

	log.Println("Seed completed")
}
