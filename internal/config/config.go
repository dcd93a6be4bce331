// Package config provides configuration management for go-sitehost.
package config

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

var AppVersion = "-unset-" // will be set at build time

const (
	// Default bind settings. Host and port are configuration, not
	// contract: override via SITEHOST_* or the -host/-port flags.
	DefaultHost = "0.0.0.0"
	DefaultPort = 5000

	// Environment variable names recognized by LoadEnv
	EnvHost    = "SITEHOST_HOST"
	EnvPort    = "SITEHOST_PORT"
	EnvWebroot = "SITEHOST_WEBROOT"
)

// Mount associates a URL path prefix with a filesystem directory.
// Requests below URLPrefix resolve to files strictly inside Dir.
type Mount struct {
	URLPrefix string `json:"url_prefix"`
	Dir       string `json:"dir"`
}

// WebConfig holds the web server configuration
type WebConfig struct {
	Host         string  `json:"host"`
	ListenPort   int     `json:"listen_port"`
	SSL          bool    `json:"ssl"`
	CertFile     string  `json:"cert_file,omitempty"`
	KeyFile      string  `json:"key_file,omitempty"`
	TemplatesDir string  `json:"templates_dir"`
	Mounts       []Mount `json:"mounts"`
	Debug        bool    `json:"debug"` // Enable debug logging
}

// DefaultMounts returns the static mount table rooted at webroot.
// An empty webroot means the current working directory.
func DefaultMounts(webroot string) []Mount {
	return []Mount{
		{URLPrefix: "/static", Dir: filepath.Join(webroot, "static")},
		{URLPrefix: "/dist", Dir: filepath.Join(webroot, "dist")},
		{URLPrefix: "/assets", Dir: filepath.Join(webroot, "assets")},
	}
}

// NewDefaultConfig returns a configuration with sensible defaults:
// all interfaces, port 5000, site directories in the working directory.
func NewDefaultConfig() *WebConfig {
	return &WebConfig{
		Host:         DefaultHost,
		ListenPort:   DefaultPort,
		TemplatesDir: "templates",
		Mounts:       DefaultMounts(""),
	}
}

// LoadEnv applies SITEHOST_* environment overrides on top of the current
// values. A .env file in the working directory is read first when present;
// a missing .env file is not an error.
func (c *WebConfig) LoadEnv() {
	if err := godotenv.Load(); err == nil {
		log.Printf("[CONFIG]: Loaded environment overrides from .env")
	}
	if host := os.Getenv(EnvHost); host != "" {
		c.Host = host
	}
	if portEnv := os.Getenv(EnvPort); portEnv != "" {
		if p, err := strconv.Atoi(portEnv); err == nil {
			c.ListenPort = p
		} else {
			log.Printf("[CONFIG]: Ignoring invalid %s=%q: %v", EnvPort, portEnv, err)
		}
	}
	if webroot := os.Getenv(EnvWebroot); webroot != "" {
		c.SetWebroot(webroot)
	}
}

// FlagOverrides carries the command-line values applied on top of the
// environment. Zero values mean the flag was not given.
type FlagOverrides struct {
	Host     string
	Port     int
	Webroot  string
	SSL      bool
	CertFile string
	KeyFile  string
	Debug    bool
}

// ApplyFlags applies the command-line overrides, the last word in the
// defaults, environment, flags chain.
func (c *WebConfig) ApplyFlags(f FlagOverrides) {
	if f.Host != "" {
		c.Host = f.Host
		log.Printf("[CONFIG]: Overriding bind host with command-line flag: %s", c.Host)
	}
	if f.Port > 0 {
		c.ListenPort = f.Port
		log.Printf("[CONFIG]: Overriding listen port with command-line flag: %d", c.ListenPort)
	}
	if f.Webroot != "" {
		c.SetWebroot(f.Webroot)
		log.Printf("[CONFIG]: Serving site from webroot: %s", f.Webroot)
	}
	if f.SSL {
		c.SSL = true
		log.Printf("[CONFIG]: SSL enabled via command-line flag")
	}
	if f.CertFile != "" {
		c.CertFile = f.CertFile
		log.Printf("[CONFIG]: SSL cert file set: %s", c.CertFile)
	}
	if f.KeyFile != "" {
		c.KeyFile = f.KeyFile
		log.Printf("[CONFIG]: SSL key file set: %s", c.KeyFile)
	}
	c.Debug = f.Debug
}

// SetWebroot rebases the template directory and the default mount table
// under dir.
func (c *WebConfig) SetWebroot(dir string) {
	c.TemplatesDir = filepath.Join(dir, "templates")
	c.Mounts = DefaultMounts(dir)
}

// MountDir returns the directory backing the mount registered at prefix,
// or "" when no such mount exists.
func (c *WebConfig) MountDir(prefix string) string {
	for _, m := range c.Mounts {
		if m.URLPrefix == prefix {
			return m.Dir
		}
	}
	return ""
}

// Addr returns the listen address in host:port form.
func (c *WebConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.ListenPort))
}
