// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/unclebandit/mailmerge-backend/internal/controller"
	"github.com/unclebandit/mailmerge-backend/internal/db"
	"github.com/unclebandit/mailmerge-backend/internal/handler"
	"github.com/unclebandit/mailmerge-backend/internal/mail"
	"github.com/unclebandit/mailmerge-backend/internal/queue"
	"github.com/unclebandit/mailmerge-backend/internal/repository"
	"github.com/unclebandit/mailmerge-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	// Init DB
	db.Init()
	ctx := context.Background()

	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	recipientRepo := &repository.RecipientRepository{DB: db.DB}
	outcomeRepo := &repository.OutcomeRepository{DB: db.DB}

	campaignService := &service.CampaignService{
		CampaignRepo:  campaignRepo,
		RecipientRepo: recipientRepo,
		OutcomeRepo:   outcomeRepo,
	}

	// Gmail authentication: without it, dispatch runs cannot start, but the
	// rest of the API still works.
	if transport, err := mail.NewGmailTransport(ctx, mail.GmailConfigFromEnv()); err != nil {
		log.Println("⚠️ Gmail transport unavailable:", err)
	} else if operator, err := transport.OperatorEmail(ctx); err != nil {
		log.Println("⚠️ Failed to fetch Gmail profile:", err)
	} else {
		campaignService.Transport = transport
		campaignService.OperatorEmail = operator
		log.Println("✅ Authenticated as:", operator)
	}

	// Dispatch jobs go through RabbitMQ when configured, otherwise an
	// in-process queue handled by this binary.
	if url := os.Getenv("RABBITMQ_URL"); url != "" {
		aq, err := queue.NewAmqpQueue(url)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ:", err)
		}
		defer aq.Close()
		campaignService.Queue = aq
	} else {
		mq := queue.NewInMemoryQueue()
		queue.StartCampaignDispatchSubscriber(ctx, mq, campaignService)
		campaignService.Queue = mq
	}

	campaignController := &controller.CampaignController{
		CampaignService: campaignService,
	}

	campaignHandler := &handler.CampaignHandler{
		Repo:    campaignRepo,
		Service: campaignService,
	}

	r := chi.NewRouter()

	// Campaign routes
	r.Post("/campaigns", campaignController.CreateCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)
	r.Post("/campaigns/{id}/recipients", campaignController.UploadRecipients)
	r.Post("/campaigns/{id}/preview", campaignController.PersonalizedPreview)
	r.Post("/campaigns/{id}/dispatch", campaignController.DispatchCampaign)
	r.Get("/campaigns/{id}/results.csv", campaignController.ExportResults)
	r.Get("/campaigns/{id}", campaignHandler.GetCampaignHandlerWithStats)

	log.Println("🚀 Server running on :8080")
	log.Fatal(http.ListenAndServe(":8080", r))
}
