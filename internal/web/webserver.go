// Package web provides the HTTP server and web interface for go-sitehost
package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/go-while/go-sitehost/internal/config"
)

// trustedProxies lists the peers whose X-Forwarded-* headers are believed:
// loopback plus the common private ranges used by reverse proxy setups
// (nginx, etc.)
var trustedProxies = []string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}

// WebServer represents the web server
type WebServer struct {
	Router        *gin.Engine
	Config        *config.WebConfig
	StartTime     time.Time // Track server start time for uptime display
	httpServer    *http.Server
	trustedNets   []*net.IPNet
	robotsTxtPath string // Path to robots.txt file if it exists
}

// NewServer creates a new web server instance
func NewServer(webconfig *config.WebConfig) *WebServer {
	if webconfig.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		// Set Gin to release mode for production
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Configure Gin to trust reverse proxy headers from the same peers the
	// ReverseProxyMiddleware believes
	router.SetTrustedProxies(trustedProxies)

	// Configure security headers based on SSL setup
	secureConfig := secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}

	// Only add SSL-specific headers if SSL is enabled on the application itself
	// (not when running behind a reverse proxy like nginx with SSL)
	if webconfig.SSL {
		secureConfig.SSLRedirect = true
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}

	server := &WebServer{
		Router:      router,
		Config:      webconfig,
		StartTime:   time.Now(),
		trustedNets: parseTrustedProxies(trustedProxies),
		httpServer: &http.Server{
			Addr:    webconfig.Addr(),
			Handler: router,
		},
	}

	// Access log, panic recovery, security headers, reverse proxy handling
	router.Use(server.ApacheLogFormat(), gin.Recovery())
	router.Use(secure.New(secureConfig))
	router.Use(server.ReverseProxyMiddleware())

	// Check if a physical robots.txt file exists in the static mount
	if dir := webconfig.MountDir("/static"); dir != "" {
		robotsPath := filepath.Join(dir, "robots.txt")
		if _, err := os.Stat(robotsPath); err == nil {
			server.robotsTxtPath = robotsPath
			log.Printf("[WEB]: Found robots.txt file at: %s", robotsPath)
		} else {
			log.Printf("[WEB]: No robots.txt file found, will use inline version")
		}
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (s *WebServer) setupRoutes() {
	// Static mounts first (highest priority)
	for _, mount := range s.Config.Mounts {
		s.registerMount(mount)
	}

	// Handle favicon to prevent it from falling through to the 404 page
	s.Router.GET("/favicon.ico", s.faviconHandler)
	s.Router.GET("/robots.txt", s.robotsHandler)
	s.Router.GET("/ping", func(c *gin.Context) {
		c.String(200, "pong")
	})

	// The templated root page
	s.Router.GET("/", s.homePage)

	// Anything unmatched renders the 404 page
	s.Router.NoRoute(s.notFoundHandler)
}

// Start runs the web server with SSL support if configured. It blocks
// until the listener fails or Shutdown is called.
func (s *WebServer) Start() error {
	if s.Config.SSL {
		if s.Config.CertFile == "" || s.Config.KeyFile == "" {
			return errors.New("SSL enabled but cert_file or key_file not specified in config")
		}
		log.Printf("[WEB]: Starting HTTPS server on %s", s.httpServer.Addr)
		return s.httpServer.ListenAndServeTLS(s.Config.CertFile, s.Config.KeyFile)
	}
	log.Printf("[WEB]: Starting HTTP server on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server gracefully
func (s *WebServer) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Printf("[WEB]: Server shut down cleanly")
	return nil
}

// ApacheLogFormat writes access log lines in Apache combined format
func (s *WebServer) ApacheLogFormat() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf(`%s - - [%s] "%s %s %s" %d %d "%s" "%s"`+"\n",
			param.ClientIP,
			param.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.BodySize,
			param.Request.Referer(),
			param.Request.UserAgent(),
		)
	})
}

// ReverseProxyMiddleware handles X-Forwarded headers when running behind a reverse proxy.
// The headers are only believed when the direct peer is a trusted proxy;
// anyone else keeps their real RemoteAddr and Host.
func (s *WebServer) ReverseProxyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.fromTrustedProxy(c.Request.RemoteAddr) {
			c.Next()
			return
		}

		// Handle X-Forwarded-Proto to detect if the original request was HTTPS
		if proto := c.GetHeader("X-Forwarded-Proto"); proto == "https" {
			c.Request.URL.Scheme = "https"
		}

		// Handle X-Forwarded-For to get the real client IP
		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			// Take the first IP from the list (original client)
			ips := strings.Split(xff, ",")
			if len(ips) > 0 {
				clientIP := strings.TrimSpace(ips[0])
				c.Request.RemoteAddr = clientIP + ":0"
			}
		}

		// Handle X-Real-IP as an alternative
		if realIP := c.GetHeader("X-Real-IP"); realIP != "" {
			c.Request.RemoteAddr = realIP + ":0"
		}

		// Handle X-Forwarded-Host to get the original host
		if host := c.GetHeader("X-Forwarded-Host"); host != "" {
			c.Request.Host = host
		}

		c.Next()
	}
}

// fromTrustedProxy reports whether remoteAddr (host:port) falls inside one
// of the trusted proxy networks
func (s *WebServer) fromTrustedProxy(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, ipnet := range s.trustedNets {
		if ipnet.Contains(ip) {
			return true
		}
	}
	return false
}

// parseTrustedProxies turns the proxy list into networks, treating bare
// addresses as single-host networks
func parseTrustedProxies(entries []string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(entries))
	for _, entry := range entries {
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				continue
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			entry = fmt.Sprintf("%s/%d", ip.String(), bits)
		}
		if _, ipnet, err := net.ParseCIDR(entry); err == nil {
			nets = append(nets, ipnet)
		}
	}
	return nets
}
