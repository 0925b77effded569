package container

import (
	"context"
	"log/slog"

	"github.com/campsum/campsum-api/internal/catalog"
	"github.com/campsum/campsum-api/internal/config"
	"github.com/campsum/campsum-api/internal/helpers"
	"github.com/campsum/campsum-api/internal/mailer"
	"github.com/campsum/campsum-api/internal/models"
	"github.com/campsum/campsum-api/internal/services"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Clients are the external connections made at startup. Everything except
// Supabase is optional.
type Clients struct {
	Supabase   *supabase.Client
	MongoDB    *mongo.Client
	Redis      *redis.Client
	Cloudinary *cloudinary.Cloudinary
}

// Container holds all application dependencies
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Catalog *catalog.Catalog

	TokenVerifier *helpers.TokenVerifier
	HandoffLog    models.HandoffLog

	AuthService          *services.AuthService
	ProviderService      *services.ProviderService
	UniversityService    *services.UniversityService
	MarketplaceService   *services.MarketplaceService
	AccommodationService *services.AccommodationService
	FormService          *services.FormService
	BusinessService      *services.BusinessService
}

// NewContainer creates a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, cat *catalog.Catalog, clients Clients) *Container {
	supa := models.SupabaseNewRepo(clients.Supabase, cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseServiceRoleKey)

	// A nil *MongodbRepo inside the interface would not compare equal to nil.
	var handoffs models.HandoffLog
	if clients.MongoDB != nil {
		handoffs = models.MongodbNewRepo(clients.MongoDB, models.HandoffDbName)
	}

	var uploader helpers.ImageUploader
	if clients.Cloudinary != nil {
		uploader = helpers.NewCloudinaryUploader(clients.Cloudinary)
	}

	messenger := services.NewMessenger(cfg.WhatsAppNumber, handoffs, logger)
	authService := services.NewAuthService(supa, supa, cfg.SupabaseURL, cfg.FrontendURL)
	verifier := helpers.NewTokenVerifier(ctx, cfg.SupabaseURL, authService.Introspect, logger)

	return &Container{
		Config:        cfg,
		Logger:        logger,
		Catalog:       cat,
		TokenVerifier: verifier,
		HandoffLog:    handoffs,

		AuthService:       authService,
		ProviderService:   services.NewProviderService(supa),
		UniversityService: services.NewUniversityService(supa, cfg.CacheTTL),
		MarketplaceService: services.NewMarketplaceService(
			supa, supa, supa, uploader,
			services.NewRedisThrottle(clients.Redis, cfg.ReportCooldown),
			logger,
		),
		AccommodationService: services.NewAccommodationService(supa, supa, messenger),
		FormService:          services.NewFormService(supa, cat, messenger),
		BusinessService:      services.NewBusinessService(supa, supa, mailer.New(cfg.SMTP), cfg.FrontendURL, logger),
	}
}

func (c *Container) Close() {
	c.TokenVerifier.Close()
}
