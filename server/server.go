// Package server hosts a movie catalog over HTTP, in the shape the
// "backend" source kind consumes.
package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"charm.land/log/v2"
	"github.com/gin-gonic/gin"

	"github.com/Gaurav-Gosain/reelscout/movie"
	"github.com/Gaurav-Gosain/reelscout/source"
)

// Server serves a fixed, in-memory catalog.
type Server struct {
	catalog []movie.Record
	logger  *log.Logger
}

// LoadCatalog reads a catalog file in any shape DecodeCatalog accepts.
func LoadCatalog(path string) ([]movie.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	records, err := source.DecodeCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("decode catalog %s: %w", path, err)
	}
	return records, nil
}

func New(catalog []movie.Record, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{catalog: catalog, logger: logger}
}

// Handler returns the gin engine with all routes registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "movies": len(s.catalog)})
	})
	r.GET("/movies", s.listMovies)
	r.GET("/movies/:id", s.getMovie)
	return r
}

// listMovies returns the catalog, optionally narrowed by a title substring
// in q. Clients that filter on their own simply omit q.
func (s *Server) listMovies(c *gin.Context) {
	movies := s.catalog
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		movies = source.FilterByTitle(movies, q)
	}
	if movies == nil {
		movies = []movie.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"movies": movies})
}

func (s *Server) getMovie(c *gin.Context) {
	id := c.Param("id")
	for _, r := range s.catalog {
		if movie.IDOf(r) == id {
			c.JSON(http.StatusOK, r)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "movie not found"})
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.Info("Request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status())
	}
}
