package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/remote-compute/internal/async"
	"github.com/joseph-ayodele/remote-compute/internal/common"
)

// Gateway exposes the executor over HTTP with server-sent events.
type Gateway struct {
	jobs   Jobs
	logger *slog.Logger
	router *gin.Engine
}

func NewGateway(jobs Jobs, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gateway{jobs: jobs, logger: logger}

	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	router.GET("/healthz", g.Health)
	router.POST("/v1/execute", g.Execute)
	g.router = router
	return g
}

// Handler returns the routed engine for an http.Server.
func (g *Gateway) Handler() http.Handler { return g.router }

type executeRequest struct {
	SourceCode    string   `json:"source_code" binding:"required"`
	FileName      string   `json:"file_name" binding:"required"`
	CompilerFlags []string `json:"compiler_flags"`
}

// Execute streams chunk events followed by a single done or error event.
func (g *Gateway) Execute(c *gin.Context) {
	var body executeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	js, err := g.jobs.Submit(c.Request.Context(), async.Submission{
		SourceCode:    body.SourceCode,
		FileName:      body.FileName,
		CompilerFlags: body.CompilerFlags,
	})
	if err != nil {
		g.logger.Warn("execute request rejected", "file_name", body.FileName, "error", err)
		c.JSON(submitHTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Job-ID", js.JobID)
	for chunk := range js.Chunks() {
		c.SSEvent("chunk", chunk)
		c.Writer.Flush()
	}

	if err := js.Err(); err != nil {
		g.logger.Error("job failed", "job_id", js.JobID, "error", err)
		c.SSEvent("error", gin.H{"job_id": js.JobID, "error": "job failed before producing output"})
	} else {
		c.SSEvent("done", gin.H{"job_id": js.JobID})
	}
	c.Writer.Flush()
}

func (g *Gateway) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "active_jobs": g.jobs.Active()})
}

func submitHTTPStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, async.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
	}
}
