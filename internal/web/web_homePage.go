// Package web provides the HTTP server and web interface for go-sitehost
package web

import (
	"html/template"
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// homePage renders the root page from index.html in the configured
// template directory. A missing or broken template file is a 500.
func (s *WebServer) homePage(c *gin.Context) {
	data := s.getBaseTemplateData(c, "Home")

	// Templates are parsed per request; edits on disk take effect immediately
	tmpl, err := template.ParseFiles(filepath.Join(s.Config.TemplatesDir, "index.html"))
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Template error", err.Error())
		return
	}

	c.Header("Content-Type", "text/html")
	if err := tmpl.Execute(c.Writer, data); err != nil {
		// Headers are already on the wire at this point
		log.Printf("[WEB]: Error rendering index.html: %v", err)
	}
}
