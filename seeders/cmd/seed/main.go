package main

import (
	"context"
	"flag"
	"log"

	"makerspace/internal/repositories"
	"makerspace/migrations"
	"makerspace/pkg/config"
	"makerspace/pkg/database/postgresql"
	"makerspace/pkg/service"
	"makerspace/seeders"

	"go.uber.org/zap"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 makerspace seeders")
	log.Println("======================================================")

	runMigrate := flag.Bool("migrate", false, "apply pending migrations")
	runCore := flag.Bool("core", false, "seed development users, modules and equipment")
	tokenFor := flag.String("token", "", "print a development access token for the given username")
	flag.Parse()

	if !*runMigrate && !*runCore && *tokenFor == "" {
		log.Println("❌ nothing to do. Flags:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Examples:")
		log.Println("  go run ./seeders/cmd/seed -migrate -core")
		log.Println("  go run ./seeders/cmd/seed -token staff")
		return
	}

	cfg := config.New()
	ctx := context.Background()

	if *runMigrate {
		if err := migrations.Up(cfg.Postgres.DSN); err != nil {
			log.Fatalf("❌ migrations failed: %v", err)
		}
		log.Println("✅ migrations applied")
	}

	dbPool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, zap.NewNop())
	if err != nil {
		log.Fatalf("❌ database connection failed: %v", err)
	}
	defer dbPool.Close()

	if *runCore {
		if err := seeders.SeedCore(ctx, dbPool); err != nil {
			log.Fatalf("❌ seeding failed: %v", err)
		}
	}

	if *tokenFor != "" {
		user, err := repositories.NewUserRepository(dbPool, zap.NewNop()).FindByUsername(ctx, *tokenFor)
		if err != nil {
			log.Fatalf("❌ user %q: %v", *tokenFor, err)
		}
		token, err := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL).GenerateToken(user.ID)
		if err != nil {
			log.Fatalf("❌ token: %v", err)
		}
		log.Printf("🔑 %s (%s), valid for %s:", user.Username, user.Privilege, cfg.JWT.AccessTokenTTL)
		log.Println(token)
	}

	log.Println("======================================================")
}
