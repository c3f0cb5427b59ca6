package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/benbjohnson/clock"
	"github.com/eleven-am/auteur/internal/archive"
	"github.com/eleven-am/auteur/internal/geometry"
	"github.com/eleven-am/auteur/internal/lens"
	"github.com/eleven-am/auteur/internal/shared"
	"github.com/eleven-am/auteur/internal/vision"
	"github.com/labstack/echo/v4"
)

const maxFrameBytes = 8 << 20

// Pipeline is the operator surface of the vision session controller.
type Pipeline interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	SetLens(ctx context.Context, m lens.Mode) error
	Snapshot() vision.Snapshot
	Current() *vision.Insight
	History() []vision.Insight
	Preview(ctx context.Context) (*vision.Frame, error)
}

type FrameSink interface {
	StoreFrame(ctx context.Context, frame *vision.Frame) error
}

type ArchiveReader interface {
	Recent(ctx context.Context, sessionID string, limit int) ([]*archive.Record, error)
}

type Config struct {
	Pipeline Pipeline
	Frames   FrameSink
	// Archive is optional; the archive route answers 503 without it.
	Archive ArchiveReader
	Source  string
	Clock   clock.Clock
	Logger  *slog.Logger
}

type Handler struct {
	pipeline Pipeline
	frames   FrameSink
	archive  ArchiveReader
	source   string
	clock    clock.Clock
	logger   *slog.Logger
}

func NewHandler(cfg Config) *Handler {
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Handler{
		pipeline: cfg.Pipeline,
		frames:   cfg.Frames,
		archive:  cfg.Archive,
		source:   cfg.Source,
		clock:    cfg.Clock,
		logger:   cfg.Logger.With("component", "vision-api"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group, ingest ...echo.MiddlewareFunc) {
	g.GET("", h.Status)
	g.POST("/start", h.Start)
	g.POST("/stop", h.Stop)
	g.PUT("/lens", h.SetLens)
	g.GET("/history", h.History)
	g.GET("/overlays", h.Overlays)
	g.POST("/frames", h.IngestFrame, ingest...)
	g.GET("/preview", h.Preview)
	g.GET("/archive", h.Archive)
}

// @Summary      Get vision session status
// @Description  Returns state, lens, freshness, the current insight and the last error
// @Tags         vision
// @Produce      json
// @Success      200  {object}  vision.Snapshot
// @Router       /v1/vision [get]
func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.pipeline.Snapshot())
}

// @Summary      Start the vision session
// @Tags         vision
// @Produce      json
// @Success      200  {object}  vision.Snapshot
// @Failure      409  {object}  shared.APIError  "Session is stopping"
// @Failure      500  {object}  shared.APIError
// @Failure      503  {object}  shared.APIError  "Inference unavailable"
// @Router       /v1/vision/start [post]
func (h *Handler) Start(c echo.Context) error {
	err := h.pipeline.Start(c.Request().Context())
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, h.pipeline.Snapshot())
	case errors.Is(err, vision.ErrSessionBusy):
		return shared.Conflict("session_busy", err.Error())
	case errors.Is(err, vision.ErrInferenceStart):
		return shared.ServiceUnavailable("inference_unavailable", err.Error())
	default:
		h.logger.Error("failed to start vision", "error", err)
		return shared.InternalError("start_failed", "failed to start vision")
	}
}

// @Summary      Stop the vision session
// @Tags         vision
// @Produce      json
// @Success      200  {object}  vision.Snapshot
// @Failure      500  {object}  shared.APIError
// @Router       /v1/vision/stop [post]
func (h *Handler) Stop(c echo.Context) error {
	if err := h.pipeline.Stop(c.Request().Context()); err != nil {
		h.logger.Warn("vision stop reported an error", "error", err)
		return shared.InternalError("stop_failed", err.Error())
	}
	return c.JSON(http.StatusOK, h.pipeline.Snapshot())
}

type LensRequest struct {
	Lens string `json:"lens"`
}

// @Summary      Switch the analysis lens
// @Tags         vision
// @Accept       json
// @Produce      json
// @Param        request  body      LensRequest  true  "Lens to activate"
// @Success      200      {object}  vision.Snapshot
// @Failure      400      {object}  shared.APIError
// @Failure      500      {object}  shared.APIError
// @Router       /v1/vision/lens [put]
func (h *Handler) SetLens(c echo.Context) error {
	var req LensRequest
	if err := c.Bind(&req); err != nil {
		return shared.BadRequest("invalid_request", "invalid request body")
	}

	m, err := lens.Parse(req.Lens)
	if err != nil {
		return shared.NewAPIError("invalid_lens", err.Error()).
			WithDetails(map[string]any{"valid": lens.Modes()}).
			ToHTTP(http.StatusBadRequest)
	}

	if err := h.pipeline.SetLens(c.Request().Context(), m); err != nil {
		return shared.InternalError("lens_failed", err.Error())
	}
	return c.JSON(http.StatusOK, h.pipeline.Snapshot())
}

type HistoryResponse struct {
	Total    int              `json:"total"`
	Insights []vision.Insight `json:"insights"`
}

// @Summary      List recent insights
// @Description  Newest first, capped at the history limit
// @Tags         vision
// @Produce      json
// @Success      200  {object}  HistoryResponse
// @Router       /v1/vision/history [get]
func (h *Handler) History(c echo.Context) error {
	items := h.pipeline.History()
	if items == nil {
		items = []vision.Insight{}
	}
	return c.JSON(http.StatusOK, HistoryResponse{Total: len(items), Insights: items})
}

type OverlaysResponse struct {
	Timestamp int64           `json:"timestamp,omitempty"`
	Lens      lens.Mode       `json:"lens,omitempty"`
	Layout    geometry.Layout `json:"layout"`
}

// @Summary      Project current overlays
// @Description  Maps the current insight's overlays onto a width x height viewport
// @Tags         vision
// @Produce      json
// @Param        width   query     number  true  "Viewport width in pixels"
// @Param        height  query     number  true  "Viewport height in pixels"
// @Success      200     {object}  OverlaysResponse
// @Failure      400     {object}  shared.APIError
// @Router       /v1/vision/overlays [get]
func (h *Handler) Overlays(c echo.Context) error {
	width, err := strconv.ParseFloat(c.QueryParam("width"), 64)
	if err != nil || width < 0 {
		return shared.BadRequest("invalid_width", "width must be a non-negative number")
	}
	height, err := strconv.ParseFloat(c.QueryParam("height"), 64)
	if err != nil || height < 0 {
		return shared.BadRequest("invalid_height", "height must be a non-negative number")
	}

	ins := h.pipeline.Current()
	if ins == nil {
		return c.JSON(http.StatusOK, OverlaysResponse{Layout: geometry.Project(nil, width, height)})
	}
	return c.JSON(http.StatusOK, OverlaysResponse{
		Timestamp: ins.Timestamp,
		Lens:      ins.Lens,
		Layout:    geometry.Project(ins.Annotations, width, height),
	})
}

type FrameResponse struct {
	Source    string `json:"source"`
	Timestamp int64  `json:"timestamp"`
	Bytes     int    `json:"bytes"`
}

// IngestFrame stores one JPEG frame from the request body. width, height and
// a millisecond ts may be given as query parameters.
//
// @Summary      Ingest a camera frame
// @Tags         frames
// @Accept       image/jpeg
// @Produce      json
// @Param        width   query     int  false  "Frame width"
// @Param        height  query     int  false  "Frame height"
// @Param        ts      query     int  false  "Capture time in ms"
// @Success      202     {object}  FrameResponse
// @Failure      400     {object}  shared.APIError
// @Failure      413     {object}  shared.APIError
// @Failure      429     {object}  shared.APIError
// @Failure      500     {object}  shared.APIError
// @Router       /v1/vision/frames [post]
func (h *Handler) IngestFrame(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxFrameBytes+1))
	if err != nil {
		return shared.BadRequest("invalid_frame", "failed to read frame")
	}
	if len(body) == 0 {
		return shared.BadRequest("empty_frame", "frame body is empty")
	}
	if len(body) > maxFrameBytes {
		return shared.NewAPIError("frame_too_large", "frame exceeds size limit").ToHTTP(http.StatusRequestEntityTooLarge)
	}

	frame := &vision.Frame{
		Source:    h.source,
		Timestamp: h.clock.Now().UnixMilli(),
		Data:      body,
		Width:     queryInt(c, "width"),
		Height:    queryInt(c, "height"),
	}
	if ts, err := strconv.ParseInt(c.QueryParam("ts"), 10, 64); err == nil && ts > 0 {
		frame.Timestamp = ts
	}

	if err := h.frames.StoreFrame(c.Request().Context(), frame); err != nil {
		h.logger.Error("failed to store frame", "error", err, "source", h.source)
		return shared.InternalError("store_failed", "failed to store frame")
	}

	return c.JSON(http.StatusAccepted, FrameResponse{
		Source:    frame.Source,
		Timestamp: frame.Timestamp,
		Bytes:     len(body),
	})
}

// @Summary      Latest camera frame
// @Tags         frames
// @Produce      image/jpeg
// @Success      200  {file}    binary
// @Failure      404  {object}  shared.APIError
// @Failure      409  {object}  shared.APIError
// @Router       /v1/vision/preview [get]
func (h *Handler) Preview(c echo.Context) error {
	frame, err := h.pipeline.Preview(c.Request().Context())
	if errors.Is(err, vision.ErrNotStreaming) {
		return shared.Conflict("not_streaming", err.Error())
	}
	if err != nil {
		return shared.InternalError("preview_failed", "failed to load preview")
	}
	if frame == nil {
		return shared.NotFound("no_frame", "no frame captured yet")
	}

	c.Response().Header().Set("X-Frame-Timestamp", strconv.FormatInt(frame.Timestamp, 10))
	return c.Blob(http.StatusOK, "image/jpeg", frame.Data)
}

type ArchiveResponse struct {
	Records []*archive.Record `json:"records"`
}

// @Summary      List archived insights
// @Tags         archive
// @Produce      json
// @Param        session  query     string  false  "Session ID"
// @Param        limit    query     int     false  "Maximum records"
// @Success      200      {object}  ArchiveResponse
// @Failure      500      {object}  shared.APIError
// @Failure      503      {object}  shared.APIError  "Archive disabled"
// @Router       /v1/vision/archive [get]
func (h *Handler) Archive(c echo.Context) error {
	if h.archive == nil {
		return shared.ServiceUnavailable("archive_disabled", "insight archive is not configured")
	}

	limit := queryInt(c, "limit")
	records, err := h.archive.Recent(c.Request().Context(), c.QueryParam("session"), limit)
	if err != nil {
		h.logger.Error("failed to read archive", "error", err)
		return shared.InternalError("archive_failed", "failed to read archive")
	}
	if records == nil {
		records = []*archive.Record{}
	}
	return c.JSON(http.StatusOK, ArchiveResponse{Records: records})
}

func queryInt(c echo.Context, name string) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
