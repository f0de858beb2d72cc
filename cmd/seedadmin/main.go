// Command seedadmin provisions an administrator account. Account creation
// is deliberately kept out of the API surface; run this once against the
// target database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/khanbek/khancloud/internal/auth"
	"github.com/khanbek/khancloud/internal/config"
	"github.com/khanbek/khancloud/internal/storage"
)

func main() {
	email := flag.String("email", "", "administrator email (required)")
	password := flag.String("password", "", "administrator password (required)")
	role := flag.String("role", "admin", "account role")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()

	pool, err := storage.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := storage.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	hash, err := auth.HashPassword(*password, cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	repo := auth.NewRepository(pool)
	user, err := repo.CreateUser(ctx, *email, hash, *role)
	if err != nil {
		if errors.Is(err, auth.ErrEmailAlreadyExists) {
			log.Fatalf("account %s already exists", *email)
		}
		log.Fatalf("create user: %v", err)
	}

	fmt.Printf("created %s account %s (%s)\n", user.Role, user.Email, user.ID)
}
