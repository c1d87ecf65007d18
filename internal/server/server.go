// Package server exposes the dashboard session over an HTTP JSON API.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/verte-zerg/empdash/internal/dashboard"
	"github.com/verte-zerg/empdash/internal/export"
	"github.com/verte-zerg/empdash/internal/filter"
	"github.com/verte-zerg/empdash/internal/model"
	"github.com/verte-zerg/empdash/internal/stats"
)

// Handler serves dashboard views of one session.
type Handler struct {
	session *dashboard.Session
}

// NewHandler returns a handler for session.
func NewHandler(session *dashboard.Session) *Handler {
	return &Handler{session: session}
}

// New returns an echo instance with middleware and routes installed.
func New(session *dashboard.Session) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = JSONSerializer{}
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	NewHandler(session).RegisterRoutes(e)
	return e
}

// RegisterRoutes mounts the API under /api.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/bounds", h.GetBounds)
	api.GET("/summary", h.GetSummary)
	api.GET("/insights", h.GetInsights)
	api.GET("/records", h.GetRecords)
	api.GET("/charts", h.GetCharts)
	api.GET("/export", h.GetExport)
	api.POST("/reload", h.PostReload)
}

type rangeJSON[T float64 | int] struct {
	Min T `json:"min"`
	Max T `json:"max"`
}

type boundsJSON struct {
	Departments []string           `json:"departments"`
	Salary      rangeJSON[float64] `json:"salary"`
	Performance rangeJSON[float64] `json:"performance"`
	YearJoined  rangeJSON[int]     `json:"year_joined"`
}

type departmentJSON struct {
	Department      string  `json:"department"`
	Count           int     `json:"count"`
	MeanSalary      float64 `json:"mean_salary"`
	MeanPerformance float64 `json:"mean_performance"`
}

type summaryJSON struct {
	Count           int              `json:"count"`
	MeanSalary      float64          `json:"mean_salary"`
	MeanPerformance float64          `json:"mean_performance"`
	SalaryDisplay   string           `json:"mean_salary_display"`
	Departments     []departmentJSON `json:"departments"`
	Warning         string           `json:"warning,omitempty"`
}

type insightJSON struct {
	Rule string `json:"rule"`
	Text string `json:"text"`
}

type bucketJSON struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type spreadJSON struct {
	Department string  `json:"department"`
	Min        float64 `json:"min"`
	Mean       float64 `json:"mean"`
	Max        float64 `json:"max"`
}

type pivotJSON struct {
	Departments []string     `json:"departments"`
	Years       []int        `json:"years"`
	Cells       [][]*float64 `json:"cells"`
}

// --- HANDLERS ---

// GetBounds returns the observed departments and value ranges.
func (h *Handler) GetBounds(c echo.Context) error {
	b, ok := h.session.Bounds()
	if !ok {
		return h.unavailable()
	}
	return c.JSON(http.StatusOK, toBoundsJSON(b))
}

// GetSummary returns the KPIs and department breakdown of the filtered view.
func (h *Handler) GetSummary(c echo.Context) error {
	view, err := h.evaluate(c)
	if err != nil {
		return err
	}
	depts := make([]departmentJSON, 0, len(view.Result.Departments))
	for _, d := range view.Result.Departments {
		depts = append(depts, departmentJSON(d))
	}
	return c.JSON(http.StatusOK, summaryJSON{
		Count:           view.Result.Count,
		MeanSalary:      view.Result.MeanSalary,
		MeanPerformance: view.Result.MeanPerformance,
		SalaryDisplay:   stats.FormatCurrency(view.Result.MeanSalary, h.session.Currency()),
		Departments:     depts,
		Warning:         view.Warning,
	})
}

// GetInsights returns the insight lines of the filtered view.
func (h *Handler) GetInsights(c echo.Context) error {
	view, err := h.evaluate(c)
	if err != nil {
		return err
	}
	out := make([]insightJSON, 0, len(view.Insights))
	for _, ins := range view.Insights {
		out = append(out, insightJSON(ins))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"insights": out,
		"warning":  view.Warning,
	})
}

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// GetRecords returns a page of filtered rows.
func (h *Handler) GetRecords(c echo.Context) error {
	view, err := h.evaluate(c)
	if err != nil {
		return err
	}
	total := view.Table.Len()
	limit, offset := getPaginationParams(c, total)
	start := min(offset, total)
	end := start + min(limit, total-start)

	rows := make([][]interface{}, 0, end-start)
	for i := start; i < end; i++ {
		rows = append(rows, view.Table.Row(i))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"columns": view.Table.Header(),
		"data":    rows,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetCharts returns the chart series of the filtered view.
func (h *Handler) GetCharts(c echo.Context) error {
	view, err := h.evaluate(c)
	if err != nil {
		return err
	}
	spread := stats.SalarySpread(view.Table)
	spreadOut := make([]spreadJSON, 0, len(spread))
	for _, s := range spread {
		spreadOut = append(spreadOut, spreadJSON(s))
	}
	pivot := stats.PerformancePivot(view.Table)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"by_department":            toBucketsJSON(stats.CountByDepartment(view.Table)),
		"performance_distribution": toBucketsJSON(stats.PerformanceDistribution(view.Table)),
		"salary_spread":            spreadOut,
		"performance_pivot": pivotJSON{
			Departments: pivot.Departments,
			Years:       pivot.Years,
			Cells:       pivot.Cells,
		},
	})
}

// GetExport streams the filtered view as an xlsx attachment.
func (h *Handler) GetExport(c echo.Context) error {
	spec, err := h.filterSpec(c)
	if err != nil {
		return err
	}
	data, err := h.session.Export(spec)
	if err != nil {
		if errors.Is(err, dashboard.ErrNotLoaded) {
			return h.unavailable()
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+export.DefaultFilename+`"`)
	return c.Blob(http.StatusOK, export.ContentType, data)
}

// PostReload re-reads the source. A failed reload keeps the previous table.
func (h *Handler) PostReload(c echo.Context) error {
	if err := h.session.Reload(c.Request().Context()); err != nil {
		status := http.StatusInternalServerError
		if _, ok := h.session.Table(); !ok {
			status = http.StatusServiceUnavailable
		}
		return c.JSON(status, map[string]string{"error": err.Error()})
	}
	tbl, _ := h.session.Table()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "reloaded",
		"source":  h.session.Source().String(),
		"records": tbl.Len(),
	})
}

func (h *Handler) evaluate(c echo.Context) (dashboard.View, error) {
	spec, err := h.filterSpec(c)
	if err != nil {
		return dashboard.View{}, err
	}
	view, err := h.session.Evaluate(spec)
	if err != nil {
		return dashboard.View{}, h.unavailable()
	}
	return view, nil
}

// filterSpec reads the filter query parameters. Absent parameters select
// the observed bounds; a present but empty dept selects nothing.
func (h *Handler) filterSpec(c echo.Context) (model.FilterSpec, error) {
	b, ok := h.session.Bounds()
	if !ok {
		return model.FilterSpec{}, h.unavailable()
	}
	return parseFilter(c, b)
}

func parseFilter(c echo.Context, b model.Bounds) (model.FilterSpec, error) {
	spec := filter.Default(b)
	params := c.QueryParams()
	if params.Has("dept") {
		spec.Departments = filter.ParseDepartments(strings.Join(params["dept"], ","))
	}
	var err error
	if spec.Salary.Min, err = floatParam(c, "salary_min", b.Salary.Min); err != nil {
		return model.FilterSpec{}, err
	}
	if spec.Salary.Max, err = floatParam(c, "salary_max", b.Salary.Max); err != nil {
		return model.FilterSpec{}, err
	}
	if spec.Performance.Min, err = floatParam(c, "perf_min", b.Performance.Min); err != nil {
		return model.FilterSpec{}, err
	}
	if spec.Performance.Max, err = floatParam(c, "perf_max", b.Performance.Max); err != nil {
		return model.FilterSpec{}, err
	}
	if spec.YearJoined.Min, err = intParam(c, "year_min", b.YearJoined.Min); err != nil {
		return model.FilterSpec{}, err
	}
	if spec.YearJoined.Max, err = intParam(c, "year_max", b.YearJoined.Max); err != nil {
		return model.FilterSpec{}, err
	}
	spec.NameQuery = strings.TrimSpace(c.QueryParam("name"))
	return spec, nil
}

func floatParam(c echo.Context, name string, fallback float64) (float64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name+": "+raw)
	}
	return v, nil
}

func intParam(c echo.Context, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name+": "+raw)
	}
	return v, nil
}

// unavailable reports that no dataset is loaded yet or the last load failed.
func (h *Handler) unavailable() error {
	msg := dashboard.ErrNotLoaded.Error()
	if err := h.session.Err(); err != nil {
		msg = err.Error()
	}
	return echo.NewHTTPError(http.StatusServiceUnavailable, msg)
}

func toBoundsJSON(b model.Bounds) boundsJSON {
	return boundsJSON{
		Departments: b.Departments,
		Salary:      rangeJSON[float64](b.Salary),
		Performance: rangeJSON[float64](b.Performance),
		YearJoined:  rangeJSON[int](b.YearJoined),
	}
}

func toBucketsJSON(buckets []stats.Bucket) []bucketJSON {
	out := make([]bucketJSON, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, bucketJSON(b))
	}
	return out
}
