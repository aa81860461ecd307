// Package handler exposes the import pipeline over JSON-over-HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vipul43/blogforge/internal/apperr"
	"github.com/vipul43/blogforge/internal/logging"
	"github.com/vipul43/blogforge/internal/models"
	"github.com/vipul43/blogforge/internal/provider"
	"github.com/vipul43/blogforge/internal/service"
)

const (
	serviceName = "blogforge"

	msgInvalidRequest = "Invalid request parameters"
	msgInternal       = "Internal server error"
)

type Connector interface {
	Authorize(ctx context.Context, name models.Provider) (*service.AuthorizeResult, error)
	Connect(ctx context.Context, req service.ConnectRequest) (*service.ConnectResult, error)
}

type Importer interface {
	Fetch(ctx context.Context, req service.FetchRequest) (*provider.Content, error)
	Import(ctx context.Context, req service.FetchRequest) (*models.GenerationResult, error)
}

type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error)
}

type Handlers struct {
	connector Connector
	importer  Importer
	generator Generator
	logger    logging.Logger
}

func New(connector Connector, importer Importer, generator Generator, logger logging.Logger) *Handlers {
	return &Handlers{
		connector: connector,
		importer:  importer,
		generator: generator,
		logger:    logger,
	}
}

type authBody struct {
	Mode   string `json:"mode"`
	Code   string `json:"code"`
	State  string `json:"state"`
	UserID string `json:"userId"`
}

// fetchBody covers both providers. Username is read by Twitter, MemberID
// by LinkedIn. UserID selects a stored token when AccessToken is empty.
type fetchBody struct {
	AccessToken string `json:"accessToken"`
	Username    string `json:"username"`
	MemberID    string `json:"memberId"`
	UserID      string `json:"userId"`
}

func (b fetchBody) request(p models.Provider) service.FetchRequest {
	return service.FetchRequest{
		Provider:    p,
		AccessToken: b.AccessToken,
		UserID:      b.UserID,
		Query:       provider.ContentQuery{Username: b.Username, MemberID: b.MemberID},
	}
}

// Auth handles both steps of the OAuth flow, selected by the body's mode.
func (h *Handlers) Auth(p models.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body authBody
		if err := c.ShouldBindJSON(&body); err != nil {
			h.badRequest(c, err)
			return
		}

		switch body.Mode {
		case service.ModeAuthorize:
			result, err := h.connector.Authorize(c.Request.Context(), p)
			if err != nil {
				h.writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, result)

		case service.ModeToken:
			result, err := h.connector.Connect(c.Request.Context(), service.ConnectRequest{
				Provider: p,
				Code:     body.Code,
				State:    body.State,
				UserID:   body.UserID,
			})
			if err != nil {
				h.writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, result)

		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidRequest})
		}
	}
}

// Fetch returns the provider-native post listing unchanged.
func (h *Handlers) Fetch(p models.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body fetchBody
		if err := c.ShouldBindJSON(&body); err != nil {
			h.badRequest(c, err)
			return
		}

		content, err := h.importer.Fetch(c.Request.Context(), body.request(p))
		if err != nil {
			h.writeError(c, err)
			return
		}

		if len(content.Raw) == 0 {
			c.JSON(http.StatusOK, gin.H{"data": []any{}})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", content.Raw)
	}
}

func (h *Handlers) Import(p models.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body fetchBody
		if err := c.ShouldBindJSON(&body); err != nil {
			h.badRequest(c, err)
			return
		}

		result, err := h.importer.Import(c.Request.Context(), body.request(p))
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (h *Handlers) Generate() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.GenerationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, err)
			return
		}

		result, err := h.generator.Generate(c.Request.Context(), req)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (h *Handlers) Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
	}
}

func (h *Handlers) badRequest(c *gin.Context, err error) {
	h.logger.WithError(err).WithField("request_id", c.GetString(requestIDKey)).Debug("Invalid request body")
	c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidRequest})
}

// writeError renders the {error} envelope. Causes are logged, never sent.
func (h *Handlers) writeError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)

	entry := h.logger.WithError(err).WithFields(logging.Fields{
		"request_id": c.GetString(requestIDKey),
		"path":       c.Request.URL.Path,
		"status":     status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Info("Request rejected")
	}

	msg := msgInternal
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		msg = apperr.Message(err)
	}
	c.JSON(status, gin.H{"error": msg})
}
