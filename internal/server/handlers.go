package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/docriver/gateway/internal/errs"
	"github.com/docriver/gateway/internal/manifest"
	"github.com/docriver/gateway/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type handlers struct {
	gateway *service.Gateway
	health  func(c *gin.Context)
}

func (h *handlers) routes(router *gin.Engine) {
	router.POST("/tx/:realm", h.submit)
	router.DELETE("/tx/:realm", h.delete)
	router.GET("/document/:realm/*document", h.getDocument)
	router.GET("/events/:realm", h.getEvents)
	router.GET("/health", h.health)
}

func (h *handlers) submit(c *gin.Context) {
	var m manifest.Manifest
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Basic validation error"})
		return
	}

	result, err := h.gateway.Submit(c.Request.Context(), c.Param("realm"), &m, c.GetHeader("Authorization"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) delete(c *gin.Context) {
	var m manifest.Manifest
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Basic validation error"})
		return
	}

	result, err := h.gateway.Delete(c.Request.Context(), c.Param("realm"), &m, c.GetHeader("Authorization"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) getDocument(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("document"), "/")

	r, mimeType, err := h.gateway.GetDocument(c.Request.Context(), c.Param("realm"), name, c.GetHeader("Authorization"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer r.Close()

	c.Header("Content-Type", mimeType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, r); err != nil {
		logrus.Warnf("streaming document %s failed: %v", name, err)
	}
}

func (h *handlers) getEvents(c *gin.Context) {
	from, err := parseTime(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from is not valid"})
		return
	}
	to, err := parseTime(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to is not valid"})
		return
	}

	events, err := h.gateway.GetEvents(c.Request.Context(), c.Param("realm"), c.GetHeader("Authorization"), from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// parseTime accepts RFC 3339 or milliseconds since the epoch. Empty means
// unbounded.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	millis, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(millis), nil
}

// writeError maps the typed errors onto status codes. Anything untyped is an
// internal failure whose detail stays in the log.
func writeError(c *gin.Context, err error) {
	var validation *errs.ValidationError
	var authorization *errs.AuthorizationError
	var document *errs.DocumentError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case errors.As(err, &authorization):
		c.JSON(http.StatusUnauthorized, gin.H{"error": authorization.Message})
	case errors.As(err, &document):
		c.JSON(http.StatusNotFound, gin.H{"error": document.Message})
	default:
		logrus.Errorf("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}
