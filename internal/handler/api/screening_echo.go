package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"ScreenPull/internal/domain/models"
	domrepo "ScreenPull/internal/domain/repository"
	"ScreenPull/internal/service/universe"
	"ScreenPull/internal/usecase"
	xhttp "ScreenPull/pkg/http"
	xlogger "ScreenPull/pkg/logger"
	xutil "ScreenPull/pkg/util"
)

// ScreeningEchoHandler exposes the screening job API.
type ScreeningEchoHandler struct {
	logger       *xlogger.Logger
	orchestrator *usecase.Orchestrator
	universe     *universe.StaticProvider
	ws           *ProgressWSHandler
}

func NewScreeningEchoHandler(
	logger *xlogger.Logger,
	orchestrator *usecase.Orchestrator,
	provider *universe.StaticProvider,
	ws *ProgressWSHandler,
) *ScreeningEchoHandler {
	return &ScreeningEchoHandler{
		logger:       logger,
		orchestrator: orchestrator,
		universe:     provider,
		ws:           ws,
	}
}

func (h *ScreeningEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1/screening")
	g.POST("/run", h.Run)
	g.GET("/status/:id", h.Status)
	g.GET("/results/:id", h.Results)
	g.DELETE("/cancel/:id", h.Cancel)
	g.GET("/export/:id", h.Export)
	g.GET("/history", h.History)
	g.GET("/indexes", h.Indexes)
	g.GET("/criteria", h.Criteria)
	if h.ws != nil {
		g.GET("/ws/:id", h.ws.Progress)
	}
}

// runRequest is the run endpoint payload. Criteria-specific knobs and config
// overrides are optional.
type runRequest struct {
	IndexType    string   `json:"index_type" validate:"omitempty,oneof=0 1 2 3 4 5 12 14 15"`
	Criteria     string   `json:"criteria" validate:"required,oneof=0 1 2 3 4 5 6 7"`
	StockCodes   []string `json:"stock_codes" validate:"omitempty,max=5000,dive,min=1,max=24"`
	BacktestDate string   `json:"backtest_date" validate:"omitempty,datetime=2006-01-02"`

	RSIMin     *int `json:"rsi_min" validate:"omitempty,gte=0,lte=100"`
	RSIMax     *int `json:"rsi_max" validate:"omitempty,gte=0,lte=100"`
	VolumeDays *int `json:"volume_days" validate:"omitempty,gte=1,lte=200"`
	MALength   *int `json:"ma_length" validate:"omitempty,gte=2,lte=500"`
	Lookback   *int `json:"lookback_candles" validate:"omitempty,gte=2,lte=250"`

	Config *configOverride `json:"config"`
}

type configOverride struct {
	Period                  string  `json:"period" validate:"omitempty,max=8"`
	DaysToLookback          int     `json:"days_to_lookback" validate:"omitempty,gte=1,lte=250"`
	MinPrice                float64 `json:"min_price" validate:"omitempty,gt=0"`
	MaxPrice                float64 `json:"max_price" validate:"omitempty,gt=0"`
	VolumeRatio             float64 `json:"volume_ratio" validate:"omitempty,gt=0"`
	ConsolidationPercentage float64 `json:"consolidation_percentage" validate:"omitempty,gt=0,lte=100"`
	Concurrency             int     `json:"concurrency" validate:"omitempty,gte=1,lte=64"`
	PaceDelayMS             int     `json:"pace_delay_ms" validate:"omitempty,gte=0,lte=10000"`
	UseEMA                  bool    `json:"use_ema"`
	CacheEnabled            bool    `json:"cache_enabled"`
}

type runResponse struct {
	JobID  string           `json:"job_id"`
	Status models.JobStatus `json:"status"`
}

// Run validates the request and submits a screening job. The job id comes
// back immediately; screening proceeds in the background.
func (h *ScreeningEchoHandler) Run(c echo.Context) error {
	req := &runRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	domainReq := &models.ScreeningRequest{
		IndexType:  models.IndexType(req.IndexType),
		Criteria:   models.Criteria(req.Criteria),
		StockCodes: req.StockCodes,
		RSIMin:     req.RSIMin,
		RSIMax:     req.RSIMax,
		VolumeDays: req.VolumeDays,
		MALength:   req.MALength,
		Lookback:   req.Lookback,
	}
	if req.BacktestDate != "" {
		date, err := xutil.ParseDate(req.BacktestDate)
		if err != nil {
			return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
				Code: "ERR_DATETIME", Field: "backtest_date", Message: err.Error(),
			}})
		}
		domainReq.BacktestDate = &date
	}

	var override *models.ScreeningConfig
	if req.Config != nil {
		override = &models.ScreeningConfig{
			Period:                  req.Config.Period,
			DaysToLookback:          req.Config.DaysToLookback,
			MinPrice:                req.Config.MinPrice,
			MaxPrice:                req.Config.MaxPrice,
			VolumeRatio:             req.Config.VolumeRatio,
			ConsolidationPercentage: req.Config.ConsolidationPercentage,
			Concurrency:             req.Config.Concurrency,
			PaceDelay:               time.Duration(req.Config.PaceDelayMS) * time.Millisecond,
			UseEMA:                  req.Config.UseEMA,
			CacheEnabled:            req.Config.CacheEnabled,
		}
	}

	id, err := h.orchestrator.Submit(c.Request().Context(), domainReq, override)
	if err != nil {
		return h.mapError(c, err)
	}
	return xhttp.CreatedResponse(c, runResponse{JobID: id, Status: models.JobPending})
}

// Status returns the current job snapshot without the result payload.
func (h *ScreeningEchoHandler) Status(c echo.Context) error {
	job, err := h.orchestrator.GetStatus(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return xhttp.SuccessResponse(c, job.Summary())
}

// Results returns the result rows of a completed job.
func (h *ScreeningEchoHandler) Results(c echo.Context) error {
	results, err := h.orchestrator.GetResults(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return xhttp.ListResponse(c, results, int64(len(results)))
}

// Cancel requests cancellation of a pending or running job.
func (h *ScreeningEchoHandler) Cancel(c echo.Context) error {
	id := c.Param("id")
	if err := h.orchestrator.Cancel(c.Request().Context(), id); err != nil {
		return h.mapError(c, err)
	}
	job, err := h.orchestrator.GetStatus(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, err)
	}
	return xhttp.SuccessResponse(c, job.Summary())
}

// Export streams completed results as a CSV or JSON attachment.
func (h *ScreeningEchoHandler) Export(c echo.Context) error {
	id := c.Param("id")
	results, err := h.orchestrator.GetResults(c.Request().Context(), id)
	if err != nil {
		return h.mapError(c, err)
	}

	format := c.QueryParam("format")
	if format == "" {
		format = "csv"
	}

	switch format {
	case "json":
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="screening_%s.json"`, id))
		return c.JSON(http.StatusOK, results)
	case "csv":
		c.Response().Header().Set(echo.HeaderContentType, "text/csv")
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf(`attachment; filename="screening_%s.csv"`, id))
		c.Response().WriteHeader(http.StatusOK)
		return writeResultsCSV(c.Response(), results)
	default:
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code: "ERR_ONEOF", Field: "format", Message: "format must be one of: csv, json",
		}})
	}
}

// History lists past jobs, newest first.
func (h *ScreeningEchoHandler) History(c echo.Context) error {
	limit := xhttp.ParseIntDefault(c.QueryParam("limit"), 50)
	offset := xhttp.ParseIntDefault(c.QueryParam("offset"), 0)

	summaries, err := h.orchestrator.ListHistory(c.Request().Context(), limit, offset)
	if err != nil {
		return h.mapError(c, err)
	}
	return xhttp.ListResponse(c, summaries, int64(len(summaries)))
}

// Indexes lists the selectable symbol universes.
func (h *ScreeningEchoHandler) Indexes(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.universe.Indexes())
}

type criteriaInfo struct {
	Code models.Criteria `json:"code"`
	Name string          `json:"name"`
}

// Criteria lists the available screening criteria.
func (h *ScreeningEchoHandler) Criteria(c echo.Context) error {
	return xhttp.SuccessResponse(c, []criteriaInfo{
		{models.CriteriaFullScreening, "Full screening"},
		{models.CriteriaBreakoutConsolidation, "Breakout from consolidation"},
		{models.CriteriaBreakoutVolume, "Breakout volume"},
		{models.CriteriaConsolidating, "Consolidating"},
		{models.CriteriaLowestVolume, "Lowest volume"},
		{models.CriteriaRSI, "RSI screening"},
		{models.CriteriaReversalSignals, "Reversal signals"},
		{models.CriteriaChartPatterns, "Chart patterns"},
	})
}

func (h *ScreeningEchoHandler) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrJobNotFound):
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("job not found").WithError(err))
	case errors.Is(err, models.ErrJobTerminal):
		return xhttp.AppErrorResponse(c, xhttp.ConflictError("job already finished").WithError(err))
	case errors.Is(err, models.ErrJobNotCompleted):
		return xhttp.AppErrorResponse(c, xhttp.ConflictError("job has no results yet").WithError(err))
	case errors.Is(err, models.ErrInvalidRequest), errors.Is(err, domrepo.ErrUnknownIndex):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	default:
		h.logger.Error("screening handler error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("internal error").WithError(err))
	}
}

func writeResultsCSV(w http.ResponseWriter, results []models.StockResult) error {
	cw := csv.NewWriter(w)
	header := []string{"stock", "consolidating", "breaking_out", "ltp", "volume", "ma_signal", "rsi", "trend", "pattern"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.Stock,
			r.Consolidating,
			r.BreakingOut,
			strconv.FormatFloat(r.LTP, 'f', 2, 64),
			strconv.FormatFloat(r.VolumeRatio, 'f', 2, 64),
			r.MASignal,
			strconv.Itoa(r.RSI),
			r.Trend,
			r.Pattern,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
