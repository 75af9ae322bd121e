package main

import (
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"ocrweb/internal/server"
)

func main() {
	// Optional .env for local runs; the environment wins when both are set.
	_ = godotenv.Load()

	if err := server.Run(); err != nil {
		logrus.Fatal(err)
	}
}
