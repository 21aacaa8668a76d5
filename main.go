package main

import (
	"os"

	"github.com/avishai12321/Trackera-sub000/core/logger"
	"github.com/avishai12321/Trackera-sub000/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", "error", err)
		os.Exit(1)
	}
}
