package wire

import (
	"fmt"
	"net/http"

	"starter-api/internal/adaptor"
	"starter-api/internal/data/entity"
	"starter-api/internal/data/repository"
	"starter-api/internal/sso"
	"starter-api/internal/usecase"
	"starter-api/pkg/mailer"
	"starter-api/pkg/middleware"
	"starter-api/pkg/ratelimit"
	"starter-api/pkg/token"
	"starter-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// routeMiddleware is built once and shared by the wire* functions.
type routeMiddleware struct {
	authenticate func(http.Handler) http.Handler
	adminOnly    func(http.Handler) http.Handler
	otpLimit     func(http.Handler) http.Handler
	loginLimit   func(http.Handler) http.Handler
}

// Wiring builds every dependency. redisClient may be nil, which disables
// rate limiting.
func Wiring(repo *repository.Repository, redisClient *redis.Client, config *utils.Config, logger *zap.Logger) (*App, error) {
	issuer := token.NewIssuer(config.JWT)

	sender, err := mailer.New(config.Email, config.App.Name, logger)
	if err != nil {
		return nil, fmt.Errorf("init mailer: %w", err)
	}

	providers := sso.NewRegistry(config.SSO, config.App.APIPrefix)
	logger.Info("SSO providers configured", zap.Int("count", len(providers)))

	service := usecase.NewService(repo, issuer, sender, providers, config, logger)
	handler := adaptor.NewHandler(service, logger)

	mw := newRouteMiddleware(issuer, repo.User, redisClient, config, logger)
	router := setupRouter(handler, mw, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}, nil
}

func newRouteMiddleware(
	issuer *token.Issuer,
	users repository.UserRepository,
	redisClient *redis.Client,
	config *utils.Config,
	logger *zap.Logger,
) *routeMiddleware {
	var otpLimiter, loginLimiter ratelimit.Limiter
	if redisClient != nil {
		window := config.RateLimit.Window()
		otpLimiter = ratelimit.NewRedisLimiter(redisClient, "otp", config.RateLimit.OTPRequests, window)
		loginLimiter = ratelimit.NewRedisLimiter(redisClient, "login", config.RateLimit.OTPRequests, window)
	} else {
		logger.Warn("REDIS_URL not set, rate limiting disabled")
	}

	return &routeMiddleware{
		authenticate: middleware.Authenticate(issuer, users, logger),
		adminOnly:    middleware.RequireRole(logger, entity.RoleAdmin),
		otpLimit:     middleware.RateLimit(otpLimiter, logger),
		loginLimit:   middleware.RateLimit(loginLimiter, logger),
	}
}

func setupRouter(
	handler *adaptor.Handler,
	mw *routeMiddleware,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	if config.App.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config))

	// Apply routes
	r.Route(config.App.APIPrefix, func(api chi.Router) {
		wireAuth(api, handler.Auth, mw, config)
		wireUser(api, handler.User, mw)
		wireItem(api, handler.Item, mw)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
