package main

import (
	"flag"
	"os"

	"github.com/df07/go-raycore/pkg/core"
	"github.com/df07/go-raycore/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	threads := flag.Int("threads", 0, "Render threads per request (0 = all logical CPUs)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	logger := core.NewDefaultLogger("web", *debug)
	webServer := server.NewServer(*port, *threads, logger)

	logger.Infof("visit http://localhost:%d/api/scenes to list scenes", *port)
	if err := webServer.Start(); err != nil {
		logger.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}
