package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luminacrm/lumina/internal/infra/database"
	"github.com/luminacrm/lumina/internal/infra/http/handlers"
	"github.com/luminacrm/lumina/internal/infra/http/middleware"
	"github.com/luminacrm/lumina/internal/infra/mail"
	"github.com/luminacrm/lumina/internal/infra/queue"
	"github.com/luminacrm/lumina/internal/pkg/jwt"
)

func main() {
	godotenv.Load()

	db, err := database.NewConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// RabbitMQ is optional in development. Without it, status events are
	// simply not published and no alert worker runs.
	var producer *queue.RabbitMQProducer
	rabbitMQ, err := queue.NewRabbitMQ(
		envOr("RABBITMQ_USER", "guest"), envOr("RABBITMQ_PASS", "guest"),
		envOr("RABBITMQ_HOST", "localhost"), envOr("RABBITMQ_PORT", "5672"),
	)
	if err != nil {
		log.Printf("warning: RabbitMQ unavailable, lead events disabled: %v", err)
	} else {
		defer rabbitMQ.Close()
		producer = queue.NewProducer(rabbitMQ.Conn, rabbitMQ.Ch)

		mailSender := mail.NewEmailSender(
			os.Getenv("MAIL_HOST"), 587,
			os.Getenv("MAIL_USER"), os.Getenv("MAIL_PASS"),
			envOr("MAIL_FROM", "no-reply@luminacrm.local"),
			envOr("MAIL_ALERTS_TO", "sales@luminacrm.local"),
		)
		worker := queue.NewWorker(rabbitMQ.Ch, mailSender)
		go worker.Start(queue.QueueName)
	}

	leadRepo := database.NewLeadRepository(db)
	noteRepo := database.NewNoteRepository(db)
	userRepo := database.NewUserRepository(db)
	auditRepo := database.NewAuditRepository(db)

	jwtSvc := jwt.New(envOr("JWT_SECRET", "dev-secret"), 24*time.Hour)

	authHandler := handlers.NewAuthHandler(userRepo, jwtSvc)
	var events handlers.StatusEventPublisher
	if producer != nil {
		events = producer
	}
	leadHandler := handlers.NewLeadHandler(leadRepo, events, auditRepo)
	noteHandler := handlers.NewNoteHandler(noteRepo, leadRepo, auditRepo)
	auditHandler := handlers.NewAuditHandler(auditRepo)

	var healthHandler *handlers.HealthHandler
	if rabbitMQ != nil {
		healthHandler = handlers.NewHealthHandler(db, rabbitMQ.Conn)
	} else {
		healthHandler = handlers.NewHealthHandler(db, nil)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:5173", "*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	// Health lives under /api so the client base URL reaches it; the
	// bare path stays for infrastructure probes.
	r.Get("/health", healthHandler.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Handle)
		r.Post("/auth/login", authHandler.Login)

		// Public contact form endpoint, rate limited per IP.
		r.Post("/leads", leadHandler.Create)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSvc))

			r.Get("/leads", leadHandler.GetAll)
			r.Get("/leads/search", leadHandler.Search)
			r.Get("/leads/analytics", leadHandler.Analytics)
			r.Get("/leads/{id}", leadHandler.GetByID)
			r.Put("/leads/{id}", leadHandler.Update)
			r.Put("/leads/{id}/status", leadHandler.UpdateStatus)
			r.Delete("/leads/{id}", leadHandler.Delete)

			r.Get("/notes/lead/{leadId}", noteHandler.GetByLead)
			r.Post("/notes/lead/{leadId}", noteHandler.Create)
			r.Delete("/notes/{id}", noteHandler.Delete)

			r.Get("/audit-logs", auditHandler.GetAll)
		})
	})

	port := ":" + envOr("PORT", "8080")
	log.Printf("Lumina CRM API listening on %s", port)
	if err := http.ListenAndServe(port, r); err != nil {
		log.Fatal(err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
