package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dtroode/brainlag-server/internal/api/http/handler"
	"github.com/dtroode/brainlag-server/internal/api/http/middleware"
	"github.com/dtroode/brainlag-server/internal/logger"
	"github.com/dtroode/brainlag-server/internal/model"
)

// PathPrefix is where the account and session record routes are mounted.
const PathPrefix = "/api/auth"

// Options configures the cross-cutting middleware.
type Options struct {
	CORSAllowedOrigins []string
	RateLimitEnabled   bool
	RateLimitRPS       float64
	RateLimitBurst     int
	// RateLimitTrustedProxies lists the CIDRs whose forwarding headers name the client.
	RateLimitTrustedProxies []string
	// RecordsRequireAuth restricts GET /student-data to the owner of the email.
	RecordsRequireAuth bool
}

// Router represents the HTTP router for the BrainLag API.
// It wires handlers to routes and declares the middleware chain.
type Router struct {
	authService    handler.AuthService
	recordService  handler.SessionRecordService
	tokenService   middleware.TokenService
	contextManager model.ContextManager
	pinger         handler.Pinger
	opts           Options
	logger         *logger.Logger
}

// New creates new Router instance.
func New(
	authService handler.AuthService,
	recordService handler.SessionRecordService,
	tokenService middleware.TokenService,
	contextManager model.ContextManager,
	pinger handler.Pinger,
	opts Options,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		recordService:  recordService,
		tokenService:   tokenService,
		contextManager: contextManager,
		pinger:         pinger,
		opts:           opts,
		logger:         logger,
	}
}

// Register builds the handler tree. Requests pass through, in order:
// recover, logging, CORS, rate limit, authenticate (protected routes only), handler.
func (r *Router) Register() http.Handler {
	root := mux.NewRouter()
	root.Use(middleware.CaptureRoute)
	root.NotFoundHandler = http.HandlerFunc(notFound)
	root.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	r.registerHealthRoutes(root)

	api := root.PathPrefix(PathPrefix).Subrouter()
	r.registerAuthRoutes(api)
	r.registerSessionRecordRoutes(api)

	// Wrapping outside mux keeps the chain active for unmatched routes and preflights.
	var h http.Handler = root
	if r.opts.RateLimitEnabled {
		h = middleware.NewRateLimit(r.opts.RateLimitRPS, r.opts.RateLimitBurst, r.opts.RateLimitTrustedProxies, r.logger).Handle(h)
	}
	h = middleware.NewCORS(r.opts.CORSAllowedOrigins).Handle(h)
	h = middleware.NewLogging(r.logger).Handle(h)
	h = middleware.NewRecover(r.logger).Handle(h)

	return h
}

func (r *Router) registerHealthRoutes(root *mux.Router) {
	health := handler.NewHealth(r.pinger, r.logger)
	root.HandleFunc("/healthz", health.Check).Methods(http.MethodGet)
}

func (r *Router) registerAuthRoutes(api *mux.Router) {
	auth := handler.NewAuth(r.authService, r.contextManager, r.logger)

	api.HandleFunc("/register", auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/forgot-password", auth.ForgotPassword).Methods(http.MethodPost)
	api.HandleFunc("/reset-password/{token}", auth.ResetPassword).Methods(http.MethodPost)

	protected := r.protected(api)
	protected.HandleFunc("/me", auth.Me).Methods(http.MethodGet)
}

func (r *Router) registerSessionRecordRoutes(api *mux.Router) {
	records := handler.NewSessionRecord(r.recordService, r.authService, r.contextManager, r.logger)
	if r.opts.RecordsRequireAuth {
		records.WithOwnerCheck(middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger))
	}

	api.HandleFunc("/student-data", records.List).Methods(http.MethodGet)

	protected := r.protected(api)
	protected.HandleFunc("/student-data", records.Save).Methods(http.MethodPost)
	protected.HandleFunc("/estimate-load", records.Estimate).Methods(http.MethodPost)
}

func (r *Router) protected(api *mux.Router) *mux.Router {
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)

	sub := api.NewRoute().Subrouter()
	sub.Use(authenticate.Handle)
	return sub
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	handler.WriteMessage(w, http.StatusNotFound, "Not found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	handler.WriteMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
}
