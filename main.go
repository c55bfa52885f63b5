package main

import (
	"context"
	"net/http"
	"os"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Orbasker/Whist/auth"
	"github.com/Orbasker/Whist/config"
	"github.com/Orbasker/Whist/game"
	"github.com/Orbasker/Whist/invite"
	"github.com/Orbasker/Whist/migrations"
	"github.com/Orbasker/Whist/storage"
)

const sessionTokenAge = 7 * 24 * time.Hour

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(ctx *gin.Context) { ctx.String(http.StatusOK, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")
		if origin == "" || slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := migrations.Migrate(cfg.PostgresURL); err != nil {
		log.Fatal().Err(err).Msg("migrations failed")
	}

	pgRepo, err := storage.NewPostgresRepo(context.Background(), cfg.PostgresURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to postgres")
	}
	defer pgRepo.Close()

	jwtManager := auth.NewJWTManager(cfg.AuthJWTSecret, sessionTokenAge)
	requireAuth := auth.Required(jwtManager)
	optionalAuth := auth.Optional(jwtManager)

	gameService := game.NewService(pgRepo, pgRepo, log)
	hub := game.NewHub(log)
	gameHandler := game.NewHandler(gameService, hub, log)

	inviteTokens := invite.NewTokenManager(cfg.InvitationSecret)
	mailer := invite.NewResendMailer(cfg.ResendAPIKey, cfg.FromEmail, cfg.FrontendURL, log)
	inviteService := invite.NewService(gameService, inviteTokens, mailer, log)
	inviteHandler := invite.NewHandler(inviteService)

	r := CreateServer(cfg.AllowedOrigins)

	{
		games := r.Group("/games")
		games.POST("", requireAuth, gameHandler.CreateGame)
		games.GET("", requireAuth, gameHandler.ListGames)
		games.GET("/:id", optionalAuth, gameHandler.GetGame)
		games.PUT("/:id", optionalAuth, gameHandler.UpdateGame)
		games.DELETE("/:id", requireAuth, gameHandler.DeleteGame)
		games.POST("/:id/join", requireAuth, gameHandler.JoinGame)
		games.POST("/:id/share", requireAuth, gameHandler.ShareGame)
		games.GET("/:id/rounds", gameHandler.GetRounds)
		games.POST("/:id/rounds/bids", optionalAuth, gameHandler.SubmitBids)
		games.POST("/:id/rounds/tricks", optionalAuth, gameHandler.SubmitTricks)
		games.POST("/:id/invite", requireAuth, inviteHandler.CreateInvitations)
	}

	r.GET("/shared/:code", gameHandler.GetSharedGame)

	{
		invites := r.Group("/invite")
		invites.GET("/:token", inviteHandler.GetInfo)
		invites.POST("/:token/accept", requireAuth, inviteHandler.Accept)
	}

	r.GET("/ws/games/:id", optionalAuth, gameHandler.Websocket)

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
