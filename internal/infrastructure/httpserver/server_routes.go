package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")

	posts := api.Group("/posts")
	posts.Use(s.middleware.Visitor.IdentifyVisitor())
	posts.GET("/popular", s.getPopularPosts)
	posts.GET("/:slug/stats", s.getPostStats)
	posts.POST("/:slug/views", s.recordView)
	posts.POST("/:slug/likes", s.likePost, s.middleware.RateLimit.PerVisitor())
	posts.GET("/:slug/related", s.getRelatedPosts)

	hooks := api.Group("/hooks/articles")
	hooks.Use(s.middleware.EditorAuth.RequireEditor())
	hooks.POST("/saved", s.articleSaved)
	hooks.POST("/removed", s.articleRemoved)
	hooks.POST("/:slug/reset", s.resetPostCache)
}
