// Package server publishes the lunar calendar feed and a small JSON API over
// a localhost HTTP listener.
package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tartampluch/go-lunar/internal/config"
	"github.com/tartampluch/go-lunar/internal/engine"
)

// cacheItem stores the rendered calendar and its metadata for HTTP caching.
type cacheItem struct {
	data         []byte
	etag         string
	lastModified string // RFC1123 format required by HTTP headers
	contacts     []engine.BirthdayEntry
}

// CalendarServer serves the ICS feed and the conversion API.
type CalendarServer struct {
	// Reads vastly outnumber syncs, so the feed is swapped lock-free.
	cache  atomic.Pointer[cacheItem]
	Port   string
	router *gin.Engine
}

// NewCalendarServer creates a server for the given port and registers its routes.
func NewCalendarServer(port string) *CalendarServer {
	s := &CalendarServer{Port: port}
	s.router = s.newRouter()
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *CalendarServer) Handler() http.Handler {
	return s.router
}

// Start listens on localhost and blocks until ctx is cancelled.
func (s *CalendarServer) Start(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.router,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)

	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompServer)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
		}
		return nil

	case err := <-serverError:
		return fmt.Errorf("%s: %w", config.ErrServerStartup, err)
	}
}

// Publish atomically replaces the served feed and birthday list.
func (s *CalendarServer) Publish(data []byte, contacts []engine.BirthdayEntry) {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	s.cache.Store(&cacheItem{
		data:         data,
		etag:         etag,
		lastModified: time.Now().UTC().Format(http.TimeFormat),
		contacts:     contacts,
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompServer,
		config.LogKeySizeBytes, len(data),
		config.LogKeyCount, len(contacts),
		config.LogKeyETag, etag,
	)
}

// handleCalendar serves the ICS content with HTTP caching support.
func (s *CalendarServer) handleCalendar(c *gin.Context) {
	r := c.Request
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		c.Header(config.HeaderAllow, config.AllowedMethods)
		c.String(http.StatusMethodNotAllowed, config.HTTPMsgMethodNotAll)
		return
	}

	item := s.cache.Load()
	if item == nil {
		c.Header(config.HeaderRetryAfter, config.RetryAfterSeconds)
		c.String(http.StatusServiceUnavailable, config.HTTPMsgInitializing)
		return
	}

	c.Header(config.HeaderXContentType, config.MimeNoSniff)
	c.Header(config.HeaderCacheControl, config.CacheControlPrivate)
	c.Header(config.HeaderETag, item.etag)
	c.Header(config.HeaderLastModified, item.lastModified)

	if match := r.Header.Get(config.HeaderIfNoneMatch); match == item.etag {
		c.Status(http.StatusNotModified)
		return
	}

	if since := r.Header.Get(config.HeaderIfModifiedSince); since != "" {
		if clientTime, err := time.Parse(http.TimeFormat, since); err == nil {
			if serverTime, err := time.Parse(http.TimeFormat, item.lastModified); err == nil {
				if !serverTime.After(clientTime) {
					c.Status(http.StatusNotModified)
					return
				}
			}
		}
	}

	if r.Method == http.MethodHead {
		c.Header(config.HeaderContentType, config.MimeTextCalendar)
		c.Status(http.StatusOK)
		return
	}
	c.Data(http.StatusOK, config.MimeTextCalendar, item.data)
}

// requestLogger logs each request through slog instead of gin's own writer.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug(config.MsgRequestServed,
			config.LogKeyComponent, config.CompServer,
			config.LogKeyRoute, c.FullPath(),
			config.LogKeyStatus, c.Writer.Status(),
			config.LogKeyDuration, time.Since(start).Milliseconds(),
		)
	}
}
