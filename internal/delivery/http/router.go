package http

import (
	"log/slog"
	"net/http"

	"hirelens/internal/delivery/http/controllers"
	"hirelens/internal/delivery/http/middleware"
	"hirelens/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterDeps carries everything NewRouter mounts.
type RouterDeps struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	Verifier       domain.TokenVerifier
	BookingLimiter *middleware.RateLimiter

	Auth         *controllers.AuthController
	Availability *controllers.AvailabilityController
	Meetings     *controllers.MeetingController
	RTC          *controllers.RTCController
	Health       *controllers.HealthController

	// Signaling is the websocket endpoint. It is mounted outside the
	// response-wrapping middleware so the connection can be hijacked.
	Signaling http.Handler
	// Metrics serves the Prometheus exposition; nil disables /metrics.
	Metrics  http.Handler
	Recorder middleware.RequestRecorder
}

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(d RouterDeps) http.Handler {
	api := http.NewServeMux()
	auth := middleware.RequireAuth(d.Verifier, d.Logger)
	interviewerOnly := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireRole(domain.RoleInterviewer)(next))
	}
	book := auth(d.Meetings.Book)
	if d.BookingLimiter != nil {
		book = auth(d.BookingLimiter.Middleware()(d.Meetings.Book))
	}

	// Auth and profiles
	api.HandleFunc("POST /api/auth/register", d.Auth.Register)
	api.HandleFunc("POST /api/auth/login", d.Auth.Login)
	api.HandleFunc("GET /api/auth/me", auth(d.Availability.Me))
	api.HandleFunc("GET /api/auth/interviewers", d.Availability.ListInterviewers)

	// Availability
	api.HandleFunc("POST /api/auth/availability", interviewerOnly(d.Availability.AddSlot))
	api.HandleFunc("DELETE /api/auth/availability/{slotID}", interviewerOnly(d.Availability.RemoveSlot))

	// Meetings
	api.HandleFunc("POST /api/meetings", book)
	api.HandleFunc("GET /api/meetings", auth(d.Meetings.List))

	// Calls
	api.HandleFunc("GET /api/rtc/ice-servers", d.RTC.GetICEServers)

	// Ops
	api.HandleFunc("GET /healthz", d.Health.Health)
	if d.Metrics != nil {
		api.Handle("GET /metrics", d.Metrics)
	}
	api.Handle("GET /swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = api
	if d.Recorder != nil {
		handler = middleware.Instrument(d.Recorder, handler)
	}
	handler = middleware.Recover(d.Logger, handler)
	handler = middleware.LoggingMiddleware(d.Logger, handler)
	handler = middleware.CORS(d.AllowedOrigins, handler)

	root := http.NewServeMux()
	if d.Signaling != nil {
		root.Handle("GET /signal", d.Signaling)
	}
	root.Handle("/", handler)
	return root
}
