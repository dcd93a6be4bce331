package web

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-sitehost/internal/config"
)

// registerMount wires a static mount into the router. File routes answer
// both GET and HEAD.
func (s *WebServer) registerMount(mount config.Mount) {
	handler := s.staticMountHandler(mount)
	pattern := mount.URLPrefix + "/*filepath"
	s.Router.GET(pattern, handler)
	s.Router.HEAD(pattern, handler)
}

// staticMountHandler returns a handler serving files from mount.Dir below
// mount.URLPrefix. The cleaned request path must stay inside the mount
// directory: anything escaping the root is a 404, decided before any disk
// access. Traversal that resolves inside the mount (css/../site.css) is
// served normally.
func (s *WebServer) staticMountHandler(mount config.Mount) gin.HandlerFunc {
	return func(c *gin.Context) {
		rel := strings.TrimPrefix(c.Param("filepath"), "/")
		if rel == "" {
			// Mount roots have no index listing
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		// path.Clean only resolves forward-slash traversal; a backslash
		// element would survive it and become a separator on Windows once
		// joined, so any backslash is rejected outright, as http.Dir does
		clean := path.Clean(rel)
		if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") ||
			strings.ContainsRune(clean, '\\') {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}

		s.serveDiskFile(c, filepath.Join(mount.Dir, filepath.FromSlash(clean)))
	}
}

// serveDiskFile streams a regular file with an inferred Content-Type.
// Missing files and directories are a plain 404.
func (s *WebServer) serveDiskFile(c *gin.Context, name string) {
	f, err := os.Open(name)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil || fi.IsDir() {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}

	// Set some cache headers for static content
	c.Header("Cache-Control", "public, max-age=3600") // browser caches an hour

	// ServeContent infers the Content-Type from the file name and handles
	// Range and If-Modified-Since requests
	http.ServeContent(c.Writer, c.Request, fi.Name(), fi.ModTime(), f)
}

// faviconHandler serves favicon.ico from the static mount so browser
// requests do not fall through to the HTML 404 page
func (s *WebServer) faviconHandler(c *gin.Context) {
	dir := s.Config.MountDir("/static")
	if dir == "" {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	s.serveDiskFile(c, filepath.Join(dir, "favicon.ico"))
}

// robotsHandler prefers a physical robots.txt from the static mount
func (s *WebServer) robotsHandler(c *gin.Context) {
	// Check if we have a physical robots.txt file
	if s.robotsTxtPath != "" {
		s.serveDiskFile(c, s.robotsTxtPath)
		return
	}
	// Fallback to inline robots.txt with all allowed
	c.String(http.StatusOK, "User-agent: *\nDisallow:\n")
}
