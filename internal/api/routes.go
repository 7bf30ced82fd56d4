package api

import (
	"github.com/gin-gonic/gin"

	"github.com/jigneshshiyal/SmartResumeAgent/internal/api/middleware"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/config"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/llm"
	"github.com/jigneshshiyal/SmartResumeAgent/internal/service"
)

// RegisterRoutes 注册全部业务路由，路径与前端约定一致，不带版本前缀。
func RegisterRoutes(
	router *gin.Engine,
	cfg *config.Config,
	svc *service.Service,
	tokens middleware.TokenValidator,
	chatOracle llm.Streamer,
	counter rateCounter,
) {
	verbose := cfg.API.VerboseErrors
	authHandler := NewAuthHandler(svc, counter, cfg.API.LoginRateLimitPerHour, verbose)
	resumeHandler := NewResumeHandler(svc, cfg.API.MaxUploadBytes, verbose)
	wsHandler := NewWsHandler(chatOracle, cfg.Chat.SessionID, cfg.Chat.Window, cfg.API.AllowedOrigins, verbose)

	router.POST("/register", authHandler.Register)
	router.POST("/login", authHandler.Login)
	router.GET("/download_pdf/:filename", resumeHandler.DownloadPDF)
	router.GET("/ws", wsHandler.HandleConnection)

	user := router.Group("")
	user.Use(middleware.TokenMiddleware(tokens, cfg.API.RequireToken))
	{
		user.POST("/upload_resume", resumeHandler.UploadResume)
		user.POST("/customize_resume", resumeHandler.CustomizeResume)
		user.GET("/get_customized_resumes", resumeHandler.ListCustomizations)
		user.POST("/render_resume_from_image", resumeHandler.RenderFromImage)
	}
}
