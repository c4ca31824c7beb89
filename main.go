package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tournament-signup-system/handlers"
	"tournament-signup-system/models"
	"tournament-signup-system/services"
	"tournament-signup-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New()

	// CORS for the mobile/web clients
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(allowedOriginsList, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.IdentityAccount{},
		&models.User{},
		&models.Tournament{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	store := services.NewStore(db)
	identity := services.NewIdentityService(db)
	sessions := services.NewSessionRegistry(identity, store)
	authService := services.NewAuthService(identity, store, sessions)
	tournamentService := services.NewTournamentService(store)
	adminService := services.NewAdminService(identity, store)

	// Every sign-in/sign-out flows through the registry, which forces a
	// fresh claim fetch before the snapshot becomes visible.
	identity.OnSessionChange(sessions.HandleSessionEvent)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	refreshWorker := workers.NewSessionRefreshWorker(sessions, 1*time.Minute)
	refreshWorker.Start(ctx)

	tournamentService.StartStatusScheduler()

	handlers.SetupAuthRoutes(app, authService, identity)
	handlers.SetupTournamentRoutes(app, tournamentService, identity)
	handlers.SetupAdminRoutes(app, adminService)

	go func() {
		if err := app.Listen(":5200"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5200")
	log.Println("✅ Session Refresh Worker running (every 1m)")
	log.Println("✅ Tournament status scheduler running (every 1m)")

	<-ctx.Done()
	log.Println("Shutting down server...")
}
