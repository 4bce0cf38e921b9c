package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/lokallens/lokallens/pkg/llm"
	"github.com/lokallens/lokallens/pkg/storage"
	"github.com/lokallens/lokallens/pkg/utils"
)

// TranscriptSummary is the list view of a transcript.
type TranscriptSummary struct {
	ID          string `json:"id"`
	RequestID   string `json:"request_id,omitempty"`
	Provider    string `json:"provider"`
	Model       string `json:"model"`
	Turns       int    `json:"turns"`
	Preview     string `json:"preview"`
	CompletedAt string `json:"completed_at"`
	DurationMs  int64  `json:"duration_ms"`
}

// TranscriptListResponse is returned by GET /transcripts.
type TranscriptListResponse struct {
	Transcripts []TranscriptSummary `json:"transcripts"`
	Count       int                 `json:"count"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListTranscripts returns the newest transcripts, newest first.
func (s *Server) handleListTranscripts(c *fiber.Ctx) error {
	limit := s.config.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "limit must be a positive integer"})
		}
		limit = min(n, s.config.MaxLimit)
	}

	transcripts, err := s.driver.List(c.UserContext(), limit)
	if err != nil {
		s.logger.Error("failed to list transcripts", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to list transcripts"})
	}

	summaries := make([]TranscriptSummary, 0, len(transcripts))
	for _, t := range transcripts {
		summaries = append(summaries, summarize(t))
	}

	return c.JSON(TranscriptListResponse{
		Transcripts: summaries,
		Count:       len(summaries),
	})
}

// handleGetTranscript returns a single transcript by its ID.
func (s *Server) handleGetTranscript(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "id parameter required"})
	}

	t, err := s.driver.Get(c.UserContext(), id)
	if err != nil {
		var notFound storage.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "transcript not found"})
		}
		s.logger.Error("failed to get transcript", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to get transcript"})
	}

	return c.JSON(t)
}

func summarize(t *storage.Transcript) TranscriptSummary {
	return TranscriptSummary{
		ID:          t.ID,
		RequestID:   t.RequestID,
		Provider:    t.Provider,
		Model:       t.Model,
		Turns:       len(t.Turns),
		Preview:     utils.Truncate(t.Reply, 80),
		CompletedAt: t.CompletedAt.Format("2006-01-02T15:04:05Z07:00"),
		DurationMs:  t.Duration().Milliseconds(),
	}
}
