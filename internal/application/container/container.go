// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/AzurNet/azurnet-go/internal/application/services"
	"github.com/AzurNet/azurnet-go/internal/domain/intent"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/caching/manager"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/email"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/geo"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/messaging"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/logging"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/observability/performance"
	"github.com/AzurNet/azurnet-go/internal/infrastructure/security"
	"github.com/AzurNet/azurnet-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application services (stateless singletons)
	VisitService              *services.VisitService
	ChatService               *services.ChatService
	DashboardAnalyticsService *services.DashboardAnalyticsService
	AuthService               *services.AuthService

	// Infrastructure dependencies
	CacheManager    *manager.Manager
	Classifier      *intent.Classifier
	LiveBroadcaster *messaging.LiveBroadcaster
	Logger          *logging.ChanneledLogger
	PerfTracker     *performance.Tracker
}

// NewContainer creates and wires all singleton services
func NewContainer(cacheManager *manager.Manager, classifier *intent.Classifier, geoResolver geo.Resolver, emailService email.Service, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) (*Container, error) {
	jwtSecret := config.JWTSecret
	if jwtSecret == "" {
		// Ephemeral secret: admin sessions will not survive a restart.
		generated, err := security.GenerateSecureKey(64)
		if err != nil {
			return nil, err
		}
		jwtSecret = generated
		logger.Auth().Warn("JWT_SECRET not configured, generated an ephemeral secret")
	}

	authService, err := services.NewAuthService(config.AdminPassword, jwtSecret, logger)
	if err != nil {
		return nil, err
	}

	dashboardService := services.NewDashboardAnalyticsService(
		cacheManager,
		classifier,
		config.ActiveVisitorWindow,
		config.TopPagesLimit,
		config.TrendDays,
		logger,
		perfTracker,
	)

	broadcaster := messaging.NewLiveBroadcaster(dashboardService.ComputeLiveStats, config.LiveBroadcastInterval, logger)

	// Store mutations push fresh live stats between ticker beats.
	cacheManager.SetMutationNotifier(broadcaster.Notify)

	return &Container{
		VisitService:              services.NewVisitService(cacheManager, logger, perfTracker),
		ChatService:               services.NewChatService(cacheManager, geoResolver, emailService, logger, perfTracker),
		DashboardAnalyticsService: dashboardService,
		AuthService:               authService,

		CacheManager:    cacheManager,
		Classifier:      classifier,
		LiveBroadcaster: broadcaster,
		Logger:          logger,
		PerfTracker:     perfTracker,
	}, nil
}
