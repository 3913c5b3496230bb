package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"reelsmith/services"
	"reelsmith/types"
)

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(proc *services.ReelProcessor) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	s := &server{processor: proc}
	r.GET("/api/health", s.handleHealth)
	g := r.Group("/api/reels")
	g.POST("", s.handleSubmit)
	g.GET("/:id/status", s.handleStatus)
	return r
}

type server struct {
	processor *services.ReelProcessor
}

// handleSubmit accepts a reel request and starts processing asynchronously,
// returning 202 Accepted immediately. Progress is queryable via the status
// endpoint when Redis is configured.
func (s *server) handleSubmit(c *gin.Context) {
	var req types.ReelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.SubmitResponse{
			Success: false, Message: "Invalid JSON payload", Error: err.Error(),
		})
		return
	}

	if req.RequestID == "" {
		c.JSON(http.StatusBadRequest, types.SubmitResponse{
			Success: false, Message: "request_id is required",
		})
		return
	}
	if req.BackgroundKey == "" {
		c.JSON(http.StatusBadRequest, types.SubmitResponse{
			Success: false, Message: "background_key is required",
		})
		return
	}
	if len(req.OverlayConfig) == 0 {
		c.JSON(http.StatusBadRequest, types.SubmitResponse{
			Success: false, Message: "overlay_config is required",
		})
		return
	}

	log.Printf("Received reel request: %s", req.RequestID)

	go func() {
		if err := s.processor.ProcessRequest(context.Background(), req); err != nil {
			log.Printf("Reel processing failed for %s: %v", req.RequestID, err)
		}
	}()

	c.JSON(http.StatusAccepted, types.SubmitResponse{
		Success: true, Message: "Reel generation started", RequestID: req.RequestID,
	})
}

// handleStatus reports the stored state of a request.
func (s *server) handleStatus(c *gin.Context) {
	store := s.processor.Status()
	if store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "status store not configured"})
		return
	}

	st, err := store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if st == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown request"})
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
