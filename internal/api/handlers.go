package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/resolvd/resolvd/internal/storage"
	"github.com/resolvd/resolvd/internal/types"
)

type processTicketRequest struct {
	TicketID    string `json:"ticket_id"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

type ingestDocument struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

type ingestRequest struct {
	Documents []ingestDocument `json:"documents"`
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleProcessTicket runs one ticket through the engine and returns the
// final result, escalated or resolved.
func (s *Server) handleProcessTicket(c *gin.Context) {
	var req processTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if errs := types.ValidateTicketInput(req.Subject, req.Description); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ticket", "details": errs})
		return
	}

	ticket := types.NewTicket(req.Subject, req.Description, req.TicketID)
	result, err := s.engine.Run(c.Request.Context(), ticket)
	if err != nil {
		slog.Error("ticket processing failed", "ticketID", ticket.TicketID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleTicketHistory returns the most recent run for a ticket.
func (s *Server) handleTicketHistory(c *gin.Context) {
	ticketID := c.Param("id")
	result, err := s.store.GetRun(c.Request.Context(), ticketID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no runs found for ticket " + ticketID})
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleRecentRuns lists the latest runs, newest first.
func (s *Server) handleRecentRuns(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	runs, err := s.store.GetRecentRuns(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		runs = []*types.Result{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// handleIngestKnowledge chunks and indexes documents under a category.
func (s *Server) handleIngestKnowledge(c *gin.Context) {
	category, ok := types.ParseCategory(c.Param("category"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category: " + c.Param("category")})
		return
	}

	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Documents) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no documents provided"})
		return
	}

	totalChunks := 0
	for i, doc := range req.Documents {
		source := doc.Source
		if source == "" {
			source = "upload-" + strconv.Itoa(i)
		}
		chunks, err := s.ingestor.Ingest(c.Request.Context(), category, source, doc.Content)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":           err.Error(),
				"ingested_chunks": totalChunks,
			})
			return
		}
		totalChunks += chunks
	}

	c.JSON(http.StatusOK, gin.H{
		"category":  category,
		"documents": len(req.Documents),
		"chunks":    totalChunks,
	})
}

// handleEscalations lists the latest escalation records. With
// ?format=csv the response is the CSV export used for handoffs.
func (s *Server) handleEscalations(c *gin.Context) {
	limit := queryInt(c, "limit", 50)
	records, err := s.store.GetEscalations(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if c.Query("format") == "csv" {
		var buf bytes.Buffer
		if err := storage.WriteEscalationsCSV(&buf, records); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="escalations.csv"`)
		c.Data(http.StatusOK, "text/csv", buf.Bytes())
		return
	}

	if records == nil {
		records = []*types.EscalationRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"escalations": records, "count": len(records)})
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
