package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/service"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/internal/auth/store"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/httpx"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/jwtx"
	"github.com/sistemamedicoufpe/Projeto-BFD-sub001/pkg/slogx"

	_ "github.com/sistemamedicoufpe/Projeto-BFD-sub001/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store            store.Store
	AuthService      *service.AuthService
	TokenService     *service.TokenService
	UserService      *service.UserService
	TwoFactorService *service.TwoFactorService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTwoFactor()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Clinical Records Authentication API
//	@version		0.1.0
//	@description	Credential and session management for the clinical records system: account
//	@description	registration, login with optional TOTP two-factor authentication, JWT access
//	@description	tokens and revocable refresh tokens.
//
//	@contact.name				Sistema Medico UFPE
//	@contact.url				https://github.com/sistemamedicoufpe/Projeto-BFD-sub001
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /auth/register - strict rate limit by IP (public signup endpoint)
	registerHandler := &RegisterHandler{AuthService: r.AuthService, TokenService: r.TokenService}
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/login - strict rate limit by IP (brute force prevention)
	loginHandler := &LoginHandler{AuthService: r.AuthService, TokenService: r.TokenService}
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	tokenHandler := &TokenHandler{TokenService: r.TokenService}

	// POST /auth/refresh - moderate rate limit by IP; the token itself is the credential
	r.Mux.Handle("POST /auth/refresh",
		httpx.Chain(http.HandlerFunc(tokenHandler.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /auth/logout - authenticated, moderate rate limit by user
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(http.HandlerFunc(tokenHandler.HandleLogout),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// GET /auth/me - authenticated, lenient rate limit by user
	meHandler := &MeHandler{UserService: r.UserService}
	r.Mux.Handle("GET /auth/me",
		httpx.Chain(meHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerTwoFactor() {
	h := &TwoFactorHandler{TwoFactorService: r.TwoFactorService}

	// POST /auth/2fa/enable - authenticated, moderate rate limit by user
	r.Mux.Handle("POST /auth/2fa/enable",
		httpx.Chain(http.HandlerFunc(h.HandleEnable),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// POST /auth/2fa/verify - authenticated, strict rate limit (code guessing)
	r.Mux.Handle("POST /auth/2fa/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	// POST /auth/2fa/disable - authenticated, strict rate limit (password guessing)
	r.Mux.Handle("POST /auth/2fa/disable",
		httpx.Chain(http.HandlerFunc(h.HandleDisable),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
