// Package controller exposes the word-association game over HTTP.
package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Laisky/word-association/internal/web/lwow/model"
	"github.com/Laisky/word-association/internal/web/lwow/service"
)

const (
	requestTimeout = 10 * time.Second
	// maxBodyBytes bounds request bodies; the largest legal one is
	// a feedback of 5000 characters.
	maxBodyBytes = 64 << 10

	msgInvalidJSON       = "Invalid JSON body."
	msgInvalidBody       = "Invalid body."
	msgUseGeneratePOST   = "Use POST with { words: [...] }"
	msgEngineUnavailable = "engine unavailable"
	msgGameNotFound      = "game not found"
	msgGameFinished      = "game already finished"
	msgRoundConflict     = "round already submitted"
	msgInternal          = "internal error"
)

// Controller holds the gin handlers.
type Controller struct {
	svc *service.Service
}

// New creates a Controller
func New(svc *service.Service) *Controller {
	return &Controller{svc: svc}
}

// Register mounts every route under r.
func (ctl *Controller) Register(r gin.IRouter) {
	g := r.Group("/lwow")
	g.POST("/generate", ctl.Generate)
	g.GET("/generate", ctl.GenerateMethodNotAllowed)
	g.GET("/health", ctl.Health)
	g.POST("/games", ctl.StartGame)
	g.GET("/games/:id", ctl.GetGame)
	g.POST("/games/:id/rounds", ctl.SubmitRound)
	g.GET("/games/:id/export", ctl.ExportGame)
	g.POST("/feedback", ctl.SubmitFeedback)
}

// Generate answers 26 cue words.
func (ctl *Controller) Generate(c *gin.Context) {
	in := new(service.GenerateInput)
	if !bindStrictJSON(c, in) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	aiWords, err := ctl.svc.Generate(ctx, in)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "aiWords": aiWords})
}

// GenerateMethodNotAllowed tells GET callers how to use the endpoint.
func (ctl *Controller) GenerateMethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"ok": false, "error": msgUseGeneratePOST})
}

// Health reports the association row count.
func (ctl *Controller) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	h, err := ctl.svc.Health(ctx)
	if err != nil {
		gmw.GetLogger(c).Error("health check", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}

	c.JSON(http.StatusOK, h)
}

// StartGame opens a game session.
func (ctl *Controller) StartGame(c *gin.Context) {
	in := new(service.StartGameInput)
	if !bindStrictJSON(c, in) {
		return
	}

	sess, err := ctl.svc.StartGame(c.Request.Context(), in)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "game": sess})
}

// GetGame returns the state of a game session.
func (ctl *Controller) GetGame(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}

	sess, err := ctl.svc.GetGame(c.Request.Context(), id)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "game": sess})
}

// SubmitRound plays one round of a game session.
func (ctl *Controller) SubmitRound(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}

	in := new(service.RoundInput)
	if !bindStrictJSON(c, in) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
	defer cancel()

	sess, err := ctl.svc.SubmitRound(ctx, id, in)
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "game": sess})
}

// ExportGame downloads the game grid as CSV.
func (ctl *Controller) ExportGame(c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := ctl.svc.ExportCSV(c.Request.Context(), id, &buf); err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="lwow-`+id+`.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// SubmitFeedback accepts user feedback.
func (ctl *Controller) SubmitFeedback(c *gin.Context) {
	in := new(service.FeedbackInput)
	if !bindStrictJSON(c, in) {
		return
	}

	id, err := ctl.svc.SubmitFeedback(c.Request.Context(), in, c.ClientIP())
	if err != nil {
		abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "id": id})
}

// gameID reads the :id path parameter, which must be a UUID.
func gameID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"ok": false, "error": msgGameNotFound})
		return "", false
	}

	return id, true
}

// bindStrictJSON decodes the body into out, rejecting unknown fields.
//
// Malformed JSON answers "Invalid JSON body."; unknown fields or
// wrongly typed values answer "Invalid body." with issues.
func bindStrictJSON(c *gin.Context, out any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": msgInvalidJSON})
		return false
	}

	if !json.Valid(body) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"ok": false, "error": msgInvalidJSON})
		return false
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err = dec.Decode(out); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"ok":     false,
			"error":  msgInvalidBody,
			"issues": []model.Issue{decodeIssue(err)},
		})
		return false
	}

	return true
}

func decodeIssue(err error) model.Issue {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return model.Issue{
			Path:    typeErr.Field,
			Message: "expected " + typeErr.Type.String() + ", got " + typeErr.Value,
		}
	}

	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return model.Issue{
			Path:    strings.Trim(field, `"`),
			Message: "unrecognized key",
		}
	}

	return model.Issue{Message: err.Error()}
}

// abortWithServiceError maps service errors onto status codes.
func abortWithServiceError(c *gin.Context, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"ok":     false,
			"error":  msgInvalidBody,
			"issues": verr.Issues,
		})
	case errors.Is(err, model.ErrSessionNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"ok": false, "error": msgGameNotFound})
	case errors.Is(err, model.ErrGameFinished):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"ok": false, "error": msgGameFinished})
	case errors.Is(err, model.ErrRoundConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"ok": false, "error": msgRoundConflict})
	case errors.Is(err, model.ErrStoreUnavailable):
		gmw.GetLogger(c).Error("association store unavailable", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": msgEngineUnavailable})
	default:
		gmw.GetLogger(c).Error("handle request", zap.Error(err), zap.String("path", c.FullPath()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"ok": false, "error": msgInternal})
	}
}
