package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"boardfront/internal/proxy"
)

// RegisterRoutes builds the gin engine with the full middleware chain
// and every route the front server exposes.
func (s *Server) RegisterRoutes() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{s.cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true, // session cookie rides on every request
	}))

	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware())
	r.Use(SessionMiddleware(s.sessions, s.cfg.SessionSecret))

	r.GET("/health", s.auth.Health)

	requireAuth := proxy.RequireAuth(s.bridge)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", s.auth.Login)
		authGroup.POST("/logout", s.auth.Logout)
		authGroup.POST("/signup", s.auth.Signup)
		authGroup.GET("/check-email", s.auth.CheckEmail)
		authGroup.GET("/check-nickname", s.auth.CheckNickname)
		authGroup.GET("/me", s.auth.Me)
		authGroup.PUT("/change-password", requireAuth, s.auth.ChangePassword)
		authGroup.PUT("/update", requireAuth, s.auth.UpdateProfile)
		authGroup.POST("/refresh", s.auth.Refresh)
	}

	boards := r.Group("/boards")
	{
		boards.GET("", s.proxy.ListPosts)
		boards.GET("/:postId", s.proxy.GetPost)
		boards.POST("", requireAuth, s.proxy.CreatePost)
		boards.PUT("/:postId", requireAuth, s.proxy.UpdatePost)
		boards.DELETE("/:postId", requireAuth, s.proxy.DeletePost)
		boards.POST("/:postId/likes", requireAuth, s.proxy.ToggleLike)
	}

	comments := r.Group("/comments")
	{
		comments.GET("/:postId", s.proxy.ListComments)
		comments.POST("/:postId", requireAuth, s.proxy.CreateComment)
		comments.PUT("/:postId/:commentId", requireAuth, s.proxy.UpdateComment)
		comments.DELETE("/:postId/:commentId", requireAuth, s.proxy.DeleteComment)
	}

	users := r.Group("/users")
	{
		users.GET("/:userId", s.proxy.GetUser)
		users.PUT("/:userId", requireAuth, s.proxy.UpdateUser)
	}

	return r
}
