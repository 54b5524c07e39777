package app

import (
	"context"
	"net/http"

	"persona-auth/internal/auth"
	"persona-auth/internal/auth/handler"
	"persona-auth/internal/auth/persona"
	"persona-auth/internal/auth/provider"
	"persona-auth/internal/auth/resolver"
	"persona-auth/internal/config"
	"persona-auth/internal/middleware"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	var identityResolver resolver.Resolver = resolver.NewDBResolver(infra.DB)
	if infra.Redis != nil {
		identityResolver = resolver.NewCachedResolver(
			identityResolver,
			infra.Redis.Client,
			cfg.IdentityCacheTTL,
		)
	}

	personaStrategy, err := newPersonaStrategy(cfg, identityResolver)
	if err != nil {
		infra.Close()
		return nil, nil, err
	}

	router := newRouter(personaStrategy)

	return router, infra.Close, nil
}

func newPersonaStrategy(cfg config.Config, identities resolver.Resolver) (*persona.Strategy, error) {
	return persona.New(
		persona.Options{
			Audience:         cfg.PersonaAudience,
			VerifierEndpoint: cfg.PersonaVerifierURL,
			Transport: &http.Client{
				Timeout: cfg.PersonaVerifyTimeout,
			},
		},
		persona.EmailIssuerFunc(func(ctx context.Context, email, issuer string) (any, auth.Info, error) {
			userID, err := identities.Resolve(ctx, &auth.Identity{
				Provider: "persona",
				Email:    email,
				Issuer:   issuer,
				Audience: cfg.PersonaAudience,
			})
			if err != nil {
				return nil, nil, err
			}
			return gin.H{"id": userID, "email": email}, nil, nil
		}),
	)
}

func newRouter(strategies ...auth.Strategy) *gin.Engine {

	registry := provider.NewRegistry(strategies...)
	authHandler := handler.NewHandler(registry)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	for _, s := range strategies {
		api.POST("/"+s.Name()+"/me",
			middleware.GinRequireAuth(middleware.NewAuthMiddleware(s)),
			func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{
					"user": c.MustGet(middleware.UserContextKey),
				})
			},
		)
	}

	return router
}
