// Package web provides the HTTP server and web interface for go-sitehost
package web

import (
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-sitehost/internal/config"
)

// TemplateData is the context every page template receives. The inbound
// request is always present for templates that want to inspect it.
type TemplateData struct {
	Title       string
	Request     *http.Request
	Host        string
	Port        int
	CurrentTime string
	Uptime      string
	AppVersion  string
}

// ErrorPageData is the context for the error page template
type ErrorPageData struct {
	TemplateData
	Error      string
	StatusCode int
}

// GetPort returns the listening port from the config
func (s *WebServer) GetPort() int {
	return s.Config.ListenPort
}

// getBaseTemplateData creates a TemplateData struct with common information
func (s *WebServer) getBaseTemplateData(c *gin.Context, title string) TemplateData {
	return TemplateData{
		Title:       title,
		Request:     c.Request,
		Host:        c.Request.Host,
		Port:        s.GetPort(),
		CurrentTime: time.Now().Format("2006-01-02 15:04:05"),
		Uptime:      time.Since(s.StartTime).Round(time.Second).String(),
		AppVersion:  config.AppVersion,
	}
}

// renderError renders an error page with the given status code. When the
// error template itself is unavailable the status still goes out with a
// plain text body.
func (s *WebServer) renderError(c *gin.Context, statusCode int, message string, errstring string) {
	log.Printf("[WEB]: Error %d: %s - %s", statusCode, message, errstring)

	errorData := ErrorPageData{
		TemplateData: s.getBaseTemplateData(c, "Error"),
		Error:        message,
		StatusCode:   statusCode,
	}

	tmpl, err := template.ParseFiles(filepath.Join(s.Config.TemplatesDir, "error.html"))
	if err != nil {
		c.String(statusCode, "%d: %s", statusCode, message)
		return
	}

	c.Header("Content-Type", "text/html")
	c.Status(statusCode)
	if err := tmpl.Execute(c.Writer, errorData); err != nil {
		log.Printf("[WEB]: Error rendering error template: %v", err)
	}
}

// notFoundHandler renders the 404 page for unmatched routes
func (s *WebServer) notFoundHandler(c *gin.Context) {
	s.renderError(c, http.StatusNotFound, "Page Not Found", c.Request.URL.Path)
}
