package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/volunteerlinks-backend/api/controllers"
	"github.com/angelmondragon/volunteerlinks-backend/api/middleware"
	"github.com/angelmondragon/volunteerlinks-backend/internal/activities"
	"github.com/angelmondragon/volunteerlinks-backend/internal/auth"
	"github.com/angelmondragon/volunteerlinks-backend/internal/chat"
	"github.com/angelmondragon/volunteerlinks-backend/internal/engagements"
	"github.com/angelmondragon/volunteerlinks-backend/internal/notifications"
	"github.com/angelmondragon/volunteerlinks-backend/internal/reviews"
	"github.com/angelmondragon/volunteerlinks-backend/internal/users"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/config"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/enums"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/logger"
	"github.com/angelmondragon/volunteerlinks-backend/pkg/redis"
)

// redisStore is the slice of the redis client the HTTP layer needs.
type redisStore interface {
	redis.IdempotencyStore
	controllers.Pinger
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Services bundles everything the router mounts.
type Services struct {
	DB            controllers.Pinger
	Redis         redisStore
	Metrics       prometheus.Gatherer
	Auth          auth.Service
	Activities    activities.Service
	Engagements   engagements.Service
	Notifications notifications.Service
	Chat          chat.Service
	Reviews       reviews.Service
	Profiles      users.Profiles
}

func NewRouter(cfg *config.Config, logg *logger.Logger, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	signinPolicy := middleware.NewAuthRateLimitPolicy(
		"signin",
		cfg.AuthRateLimit.SigninWindow,
		cfg.AuthRateLimit.SigninIPLimit,
		cfg.AuthRateLimit.SigninEmailLimit,
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
	)
	idempotent := middleware.Idempotency(svc.Redis, logg)
	volunteer := middleware.RequireRole(logg, enums.UserRoleVolunteer)
	admin := middleware.RequireRole(logg, enums.UserRoleAdmin)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    svc.DB,
			"redis": svc.Redis,
		}))
	})
	if svc.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(svc.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(signupPolicy, svc.Redis, logg), idempotent).
				Post("/signup", controllers.AuthSignup(svc.Auth, logg))
			r.With(middleware.AuthRateLimit(signinPolicy, svc.Redis, logg)).
				Post("/signin", controllers.AuthSignin(svc.Auth, logg))
		})

		r.Get("/activities", controllers.ActivityList(svc.Activities, logg))
		r.Get("/activities/{activityId}", controllers.ActivityGet(svc.Activities, logg))
		r.Get("/activities/{activityId}/reviews", controllers.ReviewList(svc.Reviews, logg))
		r.Get("/activities/{activityId}/reviews/average", controllers.ReviewAverage(svc.Reviews, logg))
		r.Get("/reviews/{reviewId}/replies", controllers.ReviewReplies(svc.Reviews, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/users/me", controllers.UserMe(svc.Profiles, logg))
			r.Put("/users/me", controllers.UserUpdateMe(svc.Profiles, logg))

			r.Group(func(r chi.Router) {
				r.Use(volunteer)
				r.With(idempotent).Post("/engagements", controllers.EngagementJoin(svc.Engagements, logg))
				r.Get("/engagements/status", controllers.EngagementJoinStatus(svc.Engagements, logg))
				r.Get("/engagements/pending", controllers.EngagementPending(svc.Engagements, logg))
				r.Get("/engagements/completed", controllers.EngagementCompleted(svc.Engagements, logg))
				r.Get("/engagements/archived", controllers.EngagementArchived(svc.Engagements, logg))
				r.Get("/notifications/volunteer", controllers.NotificationsList(svc.Notifications, enums.AudienceVolunteer, logg))
				r.With(idempotent).Post("/activities/{activityId}/reviews", controllers.ReviewCreate(svc.Reviews, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.With(idempotent).Post("/activities", controllers.ActivityCreate(svc.Activities, logg))
				r.Patch("/activities/{activityId}", controllers.ActivityUpdate(svc.Activities, logg))
				r.Delete("/activities/{activityId}", controllers.ActivityDelete(svc.Activities, logg))
				r.Get("/admin/applicants", controllers.AdminApplicants(svc.Engagements, logg))
				r.Get("/admin/accepted", controllers.AdminAccepted(svc.Engagements, logg))
				r.With(idempotent).Post("/engagements/decisions", controllers.EngagementDecide(svc.Engagements, logg))
				r.With(idempotent).Post("/engagements/completions", controllers.EngagementComplete(svc.Engagements, logg))
				r.Get("/notifications/admin", controllers.NotificationsList(svc.Notifications, enums.AudienceAdmin, logg))
				r.With(idempotent).Post("/reviews/{reviewId}/replies", controllers.ReviewReply(svc.Reviews, logg))
			})

			r.With(idempotent).Post("/activities/{activityId}/messages", controllers.ChatSend(svc.Chat, logg))
			r.Get("/activities/{activityId}/messages", controllers.ChatList(svc.Chat, logg))
			r.Get("/activities/{activityId}/participants", controllers.ChatParticipants(svc.Chat, logg))
			r.Get("/activities/{activityId}/conversations/{userId}", controllers.ChatConversation(svc.Chat, logg))
		})
	})

	return r
}
