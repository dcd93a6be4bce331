// Web server for go-sitehost: one templated page plus static asset mounts
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	prof "github.com/go-while/go-cpu-mem-profiler"
	"github.com/go-while/go-sitehost/internal/config"
	"github.com/go-while/go-sitehost/internal/web"
)

var (
	// command-line flags
	host      string
	port      int
	webroot   string
	webssl    bool
	certFile  string
	keyFile   string
	pprofAddr string
	debug     bool
)

var Prof *prof.Profiler

var appVersion = "-unset-"

func main() {
	config.AppVersion = appVersion

	flag.StringVar(&host, "host", "", "Interface to bind (default: 0.0.0.0)")
	flag.IntVar(&port, "port", 0, "Web server port (default: 5000)")
	flag.StringVar(&webroot, "webroot", "", "Base directory holding templates/, static/, dist/ and assets/ (default: working directory)")
	flag.BoolVar(&webssl, "webssl", false, "Enable SSL")
	flag.StringVar(&certFile, "websslcert", "", "SSL certificate file (/path/to/fullchain.pem)")
	flag.StringVar(&keyFile, "websslkey", "", "SSL key file (/path/to/privkey.pem)")
	flag.StringVar(&pprofAddr, "pprofaddr", "", "Serve the pprof web UI on this address (e.g. :6060, default: disabled)")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Parse()

	log.Printf("Starting go-sitehost web server (version: %s)", appVersion)

	// Defaults, then environment, then command-line flags
	webConfig := config.NewDefaultConfig()
	webConfig.LoadEnv()
	webConfig.ApplyFlags(config.FlagOverrides{
		Host:     host,
		Port:     port,
		Webroot:  webroot,
		SSL:      webssl,
		CertFile: certFile,
		KeyFile:  keyFile,
		Debug:    debug,
	})

	// Validate port
	if webConfig.ListenPort < 1 || webConfig.ListenPort > 65535 {
		log.Fatalf("[WEB]: Invalid port number: %d (must be between 1 and 65535)", webConfig.ListenPort)
	}

	if pprofAddr != "" {
		Prof = prof.NewProf()
		go Prof.PprofWeb(pprofAddr)
		log.Printf("[WEB]: pprof web UI listening on %s", pprofAddr)
	}

	protocol := "http"
	if webConfig.SSL {
		protocol = "https"
	}
	log.Printf("[WEB]: Using web configuration: %s://%s", protocol, webConfig.Addr())

	server := web.NewServer(webConfig)

	// Set up cross-platform signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt) // Cross-platform (Ctrl+C on both Windows and Linux)

	// Start web server in goroutine to make it non-blocking
	webServerErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			webServerErrChan <- err
		}
	}()

	log.Printf("[WEB]: Server started successfully. Press Ctrl+C to gracefully shutdown...")

	// Start update file monitor in a separate goroutine
	updateFileChan := make(chan bool, 1)
	go monitorUpdateFile(updateFileChan)

	// Wait for either shutdown signal, server error, or update file
	select {
	case <-sigChan:
		log.Printf("[WEB]: Received shutdown signal, initiating graceful shutdown...")
	case err := <-webServerErrChan:
		log.Fatalf("[WEB]: Failed to start web server: %v", err)
	case <-updateFileChan:
		log.Printf("[WEB]: Update file detected, initiating graceful shutdown for update...")
	}

	if err := server.Shutdown(5 * time.Second); err != nil {
		log.Fatalf("[WEB]: Failed to shutdown web server: %v", err)
	}
	log.Printf("[WEB]: Graceful shutdown completed")
} // end main

// monitorUpdateFile checks for the existence of an .update file every 60
// seconds and signals for shutdown when found, renaming the file so the
// next start does not immediately exit again
func monitorUpdateFile(shutdownChan chan<- bool) {
	updateFilePath := ".update"
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	log.Printf("[WEB]: Update file monitor started, checking for '%s' every 60 seconds", updateFilePath)

	for range ticker.C {
		if _, err := os.Stat(updateFilePath); err != nil {
			// File doesn't exist, continue monitoring
			continue
		}
		log.Printf("[WEB]: Update file '%s' detected, triggering graceful shutdown", updateFilePath)

		if err := os.Rename(updateFilePath, updateFilePath+".todo"); err != nil {
			log.Printf("[WEB]: Warning: Failed to rename update file '%s': %v", updateFilePath, err)
			continue
		}

		// Signal shutdown
		select {
		case shutdownChan <- true:
			log.Printf("[WEB]: Shutdown signal sent via update file monitor")
		default:
			log.Printf("[WEB]: Shutdown channel already signaled")
		}
		return
	}
}
