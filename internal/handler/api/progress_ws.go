package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"ScreenPull/internal/domain/models"
	"ScreenPull/internal/usecase"
	xlogger "ScreenPull/pkg/logger"
)

// ProgressWSHandler streams job progress snapshots over a WebSocket until
// the job reaches a terminal state.
type ProgressWSHandler struct {
	logger       *xlogger.Logger
	orchestrator *usecase.Orchestrator
	upgrader     websocket.Upgrader
	pollInterval time.Duration
}

func NewProgressWSHandler(logger *xlogger.Logger, orchestrator *usecase.Orchestrator) *ProgressWSHandler {
	return &ProgressWSHandler{
		logger:       logger,
		orchestrator: orchestrator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		pollInterval: 500 * time.Millisecond,
	}
}

// Progress upgrades the connection and pushes a snapshot whenever the job
// record changes. The final snapshot carries the terminal status, then the
// connection closes server-side.
func (h *ProgressWSHandler) Progress(c echo.Context) error {
	id := c.Param("id")
	ctx := c.Request().Context()

	// Reject unknown ids before upgrading.
	if _, err := h.orchestrator.GetStatus(ctx, id); err != nil {
		if errors.Is(err, models.ErrJobNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "job not found")
		}
		return err
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	ticker := time.NewTicker(h.pollInterval)
	defer ticker.Stop()

	var last models.JobSummary
	for {
		job, err := h.orchestrator.GetStatus(ctx, id)
		if err != nil {
			h.logger.Warn("ws status lookup failed", xlogger.String("job_id", id), xlogger.Error(err))
			return nil
		}

		snapshot := job.Summary()
		if changed(&last, &snapshot) {
			last = snapshot
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(snapshot); err != nil {
				return nil // client went away
			}
		}

		if snapshot.Status.Terminal() {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(snapshot.Status))
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func changed(a, b *models.JobSummary) bool {
	return a.Status != b.Status ||
		a.Progress != b.Progress ||
		a.TotalStocks != b.TotalStocks ||
		a.ScreenedStocks != b.ScreenedStocks ||
		a.FoundStocks != b.FoundStocks
}
