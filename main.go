package main

import (
	"ourtime-api/core/logger"
	"ourtime-api/core/server"
)

// @title OurTime API
// @version 1.0
// @description Backend for OurTime, a "who's free when" scheduling coordinator.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:7070
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", err)
	}
}
