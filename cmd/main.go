package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// @title E-commerce Data Generator API
// @version 1.0
// @description Populates the e-commerce schema with synthetic, referentially consistent data and verifies it.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
