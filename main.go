package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"papuy-backend/chat"
	"papuy-backend/conn"
	"papuy-backend/login"
	"papuy-backend/migrations"
	"papuy-backend/openai"
	"papuy-backend/pubmed"
	"papuy-backend/scholar"
	"papuy-backend/search"
)

func main() {
	_ = godotenv.Load()

	db, err := conn.NewMySQL()
	if err != nil {
		log.Fatalf("[main] mysql: %v", err)
	}
	migrations.Init(db)
	if err := migrations.Migrate(); err != nil {
		log.Fatalf("[main] migrate: %v", err)
	}
	if err := migrations.SeedDefaultUser(); err != nil {
		log.Printf("[main] seed user: %v", err)
	}

	ai := openai.NewClient()
	buscador := &search.Aggregator{
		Scholar:    scholar.NewClient(),
		PubMed:     pubmed.NewClient(),
		Translator: ai,
	}
	chatHandler := chat.NewHandler(ai, buscador)

	r := gin.Default()

	r.POST("/login", login.Handler)
	r.GET("/session", login.SessionHandler)
	r.POST("/logout", login.LogoutHandler)
	r.POST("/refresh", login.RefreshHandler)
	r.POST("/change-password", login.ChangePasswordHandler)

	api := r.Group("/chat", login.RequireAuth())
	api.POST("/start", chatHandler.Start)
	api.POST("/message", chatHandler.Message)
	api.POST("/reset", chatHandler.Reset)

	r.Run(":8080")
}
