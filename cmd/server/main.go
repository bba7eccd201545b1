package main

import (
	"log"

	"biteclub/internal/logger"
	"biteclub/internal/transport/http"
)

func main() {
	logger.Setup()

	if err := http.Run(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
