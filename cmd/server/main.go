package main

import (
	"traffic-image-server/internal/app/server"
	"traffic-image-server/internal/config"
)

func main() {
	cfg := config.Load()
	config.SetupLogging(cfg.Server.LogLevel, cfg.Server.LogFormat)
	server.Run(cfg)
}
