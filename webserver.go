package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"goPayeCalculator/paye"
)

// RequestIDHeader carries the per-request id in both directions
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "requestID"

// WebServer serves the calculator over HTTP
type WebServer struct {
	config *Config
	calc   *paye.Calculator
	log    *zap.Logger
	router *gin.Engine
}

// NewWebServer creates a web server bound to one calculator. The calculator is
// immutable, so handlers run concurrently without locking.
func NewWebServer(config *Config, calc *paye.Calculator, log *zap.Logger) *WebServer {
	if log == nil {
		log = zap.NewNop()
	}
	ws := &WebServer{
		config: config,
		calc:   calc,
		log:    log,
	}
	ws.router = ws.routes()
	return ws
}

// Handler returns the HTTP handler, mainly for tests
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

func (ws *WebServer) routes() *gin.Engine {
	registerJSONFieldNames()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ws.configureCORS())
	router.Use(requestIDMiddleware())
	router.Use(ws.requestLogger())

	router.GET("/", ws.handleIndex)

	api := router.Group("/api")
	{
		api.GET("/health", ws.handleHealth)
		api.GET("/rates", ws.handleRates)
		api.GET("/bands", ws.handleBands)
		api.POST("/calculate", ws.handleCalculate)
		api.POST("/net-to-gross", ws.handleNetToGross)
		api.POST("/bonus", ws.handleBonus)
		api.POST("/compare", ws.handleCompare)
		api.POST("/compare.csv", ws.handleCompareCSV)
		api.POST("/payslip.pdf", ws.handlePayslipPDF)
	}
	return router
}

// Start serves until ctx is cancelled, then drains in-flight requests
func (ws *WebServer) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ws.config.Server.GetAddr(),
		Handler:           ws.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		ws.log.Info("Starting web server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "listen")
	case <-ctx.Done():
	}

	ws.log.Info("Shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ws.config.Server.GetShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

func (ws *WebServer) configureCORS() gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(ws.config.Server.CORSOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = ws.config.Server.CORSOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", RequestIDHeader}
	corsConfig.ExposeHeaders = []string{RequestIDHeader, "Content-Disposition"}
	return cors.New(corsConfig)
}

// requestIDMiddleware keeps a caller-supplied request id or assigns a new one
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func (ws *WebServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			ws.log.Error("Request failed", append(fields, zap.String("error", c.Errors.String()))...)
		case c.Writer.Status() >= http.StatusBadRequest:
			ws.log.Warn("Request rejected", append(fields, zap.String("error", c.Errors.String()))...)
		default:
			ws.log.Info("Request handled", fields...)
		}
	}
}

// APIError is the body of every non-2xx JSON response
type APIError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// respondError maps calculator errors to HTTP status codes
func (ws *WebServer) respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var inputErr *paye.InputError
	var fieldErrs validator.ValidationErrors
	switch {
	case errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, APIError{Error: inputErr.Message, Field: inputErr.Field})
	case errors.As(err, &fieldErrs) && len(fieldErrs) > 0:
		fe := fieldErrs[0]
		c.JSON(http.StatusBadRequest, APIError{Error: fmt.Sprintf("failed %q validation", fe.Tag()), Field: fe.Field()})
	case errors.Is(err, paye.ErrInvalidTarget):
		c.JSON(http.StatusBadRequest, APIError{Error: err.Error(), Field: "target_net"})
	case errors.Is(err, paye.ErrNotConverged):
		c.JSON(http.StatusUnprocessableEntity, APIError{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, APIError{Error: "internal error"})
	}
}

func (ws *WebServer) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			ws.respondError(c, err)
			return false
		}
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, APIError{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// CalculateRequest is the body of POST /api/calculate
type CalculateRequest struct {
	GrossSalary *float64 `json:"gross_salary" binding:"required"`
	// Months of cumulative projection to include (0 for none)
	ProjectionMonths int `json:"projection_months" binding:"gte=0,lte=120"`
	paye.Elections
}

// CalculateResponse is the body returned by POST /api/calculate
type CalculateResponse struct {
	Result      paye.Result       `json:"result"`
	Utilisation paye.Utilisation  `json:"relief_utilisation"`
	Projection  []ProjectionMonth `json:"projection,omitempty"`
}

// NetToGrossRequest is the body of POST /api/net-to-gross
type NetToGrossRequest struct {
	TargetNet *float64 `json:"target_net" binding:"required"`
	paye.Elections
}

// NetToGrossResponse carries the solution and, when it converged, the full
// payroll at the solved gross
type NetToGrossResponse struct {
	Solution paye.Solution `json:"solution"`
	Result   *paye.Result  `json:"result,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// BonusRequest is the body of POST /api/bonus
type BonusRequest struct {
	BaseGross   *float64 `json:"base_gross" binding:"required"`
	BonusAmount *float64 `json:"bonus_amount" binding:"required"`
	paye.Elections
}

// CompareRequest is the body of POST /api/compare and /api/compare.csv
type CompareRequest struct {
	Levels []float64 `json:"levels"`
	paye.Elections
}

// PayslipRequest is the body of POST /api/payslip.pdf
type PayslipRequest struct {
	GrossSalary    *float64 `json:"gross_salary" binding:"required"`
	Period         string   `json:"period"` // YYYY-MM, defaults to the current month
	Employer       string   `json:"employer"`
	Employee       string   `json:"employee"`
	EmployeeNumber string   `json:"employee_number"`
	paye.Elections
}

// BandsResponse is the body returned by GET /api/bands
type BandsResponse struct {
	TaxableIncome   float64          `json:"taxable_income"`
	Bands           []paye.BandShare `json:"bands"`
	TaxBeforeRelief float64          `json:"tax_before_relief"`
	MarginalRate    float64          `json:"marginal_rate"`
}

func (ws *WebServer) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(webUIHTML))
}

func (ws *WebServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"rates":  ws.calc.Rates().Name,
	})
}

func (ws *WebServer) handleRates(c *gin.Context) {
	c.JSON(http.StatusOK, ws.calc.Rates())
}

func (ws *WebServer) handleBands(c *gin.Context) {
	raw := c.Query("taxable")
	taxable, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		ws.respondError(c, &paye.InputError{Field: "taxable", Message: fmt.Sprintf("must be a number (got %q)", raw)})
		return
	}
	if taxable < 0 {
		ws.respondError(c, &paye.InputError{Field: "taxable", Message: "must not be negative"})
		return
	}

	c.JSON(http.StatusOK, BandsResponse{
		TaxableIncome:   taxable,
		Bands:           ws.calc.BandBreakdown(taxable),
		TaxBeforeRelief: ws.calc.LadderTax(taxable),
		MarginalRate:    ws.calc.MarginalRate(taxable),
	})
}

func (ws *WebServer) handleCalculate(c *gin.Context) {
	var req CalculateRequest
	if !ws.bind(c, &req) {
		return
	}

	result, err := ws.calc.FullCalculation(*req.GrossSalary, req.Elections)
	if err != nil {
		ws.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, CalculateResponse{
		Result:      result,
		Utilisation: ws.calc.ReliefUtilisation(result),
		Projection:  ProjectMonths(result, time.Now(), req.ProjectionMonths),
	})
}

func (ws *WebServer) handleNetToGross(c *gin.Context) {
	var req NetToGrossRequest
	if !ws.bind(c, &req) {
		return
	}

	sol, err := ws.calc.SolveGrossForNet(*req.TargetNet, req.Elections)
	switch {
	case err == nil:
		result, err := ws.calc.FullCalculation(sol.Gross, req.Elections)
		if err != nil {
			ws.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, NetToGrossResponse{Solution: sol, Result: &result})
	case errors.Is(err, paye.ErrNotConverged):
		// Still useful to the caller: the closest gross found
		_ = c.Error(err)
		c.JSON(http.StatusUnprocessableEntity, NetToGrossResponse{Solution: sol, Error: err.Error()})
	default:
		ws.respondError(c, err)
	}
}

func (ws *WebServer) handleBonus(c *gin.Context) {
	var req BonusRequest
	if !ws.bind(c, &req) {
		return
	}

	bonus, err := ws.calc.BonusImpact(*req.BaseGross, *req.BonusAmount, req.Elections)
	if err != nil {
		ws.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bonus)
}

func (ws *WebServer) compareRows(c *gin.Context) ([]paye.ComparisonRow, bool) {
	var req CompareRequest
	if !ws.bind(c, &req) {
		return nil, false
	}
	levels := req.Levels
	if len(levels) == 0 {
		levels = ws.config.Comparison.GetLevels()
	}

	rows, err := ws.calc.CompareSalaries(levels, req.Elections)
	if err != nil {
		ws.respondError(c, err)
		return nil, false
	}
	return rows, true
}

func (ws *WebServer) handleCompare(c *gin.Context) {
	rows, ok := ws.compareRows(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

func (ws *WebServer) handleCompareCSV(c *gin.Context) {
	rows, ok := ws.compareRows(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := WriteComparisonCSV(&buf, rows); err != nil {
		ws.respondError(c, errors.Wrap(err, "write csv"))
		return
	}
	filename := fmt.Sprintf("paye-comparison-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (ws *WebServer) handlePayslipPDF(c *gin.Context) {
	var req PayslipRequest
	if !ws.bind(c, &req) {
		return
	}

	period, err := parsePeriod(req.Period)
	if err != nil {
		ws.respondError(c, &paye.InputError{Field: "period", Message: err.Error()})
		return
	}

	result, err := ws.calc.FullCalculation(*req.GrossSalary, req.Elections)
	if err != nil {
		ws.respondError(c, err)
		return
	}

	info := ws.config.Payslip
	if req.Employer != "" {
		info.Employer = req.Employer
	}
	if req.Employee != "" {
		info.Employee = req.Employee
	}
	if req.EmployeeNumber != "" {
		info.EmployeeNumber = req.EmployeeNumber
	}

	payslip := NewPayslip(info, period, result)
	data, err := NewPayslipPDF(payslip).Bytes()
	if err != nil {
		ws.respondError(c, err)
		return
	}

	ws.log.Debug("Payslip generated",
		zap.String("request_id", requestID(c)),
		zap.String("reference", payslip.Reference.String()))
	c.Header("Content-Disposition", `attachment; filename="`+payslip.Filename()+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

var jsonFieldNamesOnce sync.Once

// registerJSONFieldNames makes gin's shared validator report binding errors
// by JSON field name
func registerJSONFieldNames() {
	jsonFieldNamesOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(jsonFieldName)
		}
	})
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// webUIHTML is the embedded single-page calculator form
const webUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Kenya PAYE Calculator</title>
    <style>
        body { font-family: system-ui, sans-serif; max-width: 720px; margin: 2rem auto; color: #1f2937; }
        h1 { color: #0e7c3a; }
        label { display: block; margin-top: .6rem; font-size: .9rem; }
        input, select { width: 100%; padding: .4rem; box-sizing: border-box; }
        button { margin-top: 1rem; padding: .5rem 1.2rem; background: #0e7c3a; color: #fff; border: 0; cursor: pointer; }
        table { width: 100%; border-collapse: collapse; margin-top: 1.5rem; }
        td { padding: .3rem; border-bottom: 1px solid #e5e7eb; }
        td.amount { text-align: right; font-variant-numeric: tabular-nums; }
        .error { color: #bb0000; }
    </style>
</head>
<body>
    <h1>Kenya PAYE Calculator</h1>
    <form id="calc">
        <label>Gross monthly salary (KES)<input name="gross_salary" type="number" min="0" step="any" required value="100000"></label>
        <label>Pension contribution<input name="pension_contribution" type="number" min="0" step="any" value="0"></label>
        <label>Mortgage interest<input name="mortgage_interest" type="number" min="0" step="any" value="0"></label>
        <label>Insurance premium<input name="insurance_premium" type="number" min="0" step="any" value="0"></label>
        <label>Company car
            <select name="vehicle_benefit">
                <option value="none">None</option>
                <option value="below1500">Below 1500cc</option>
                <option value="1500to2000">1500cc - 2000cc</option>
                <option value="2000to3000">2000cc - 3000cc</option>
                <option value="above3000">Above 3000cc</option>
            </select>
        </label>
        <label>Housing benefit<input name="housing_benefit" type="number" min="0" step="any" value="0"></label>
        <label><input name="has_disability" type="checkbox" style="width:auto"> Disability exemption certificate</label>
        <button type="submit">Calculate</button>
    </form>
    <div id="out"></div>
    <script>
    const rows = [
        ["Gross salary", "gross_salary"], ["NSSF", "nssf"], ["SHIF", "shif"], ["Housing levy", "housing_levy"],
        ["Taxable income", "taxable_income"], ["PAYE", "paye"], ["Total deductions", "total_deductions"],
        ["Net salary", "net_salary"], ["Total employer cost", "total_employer_cost"]
    ];
    const kes = n => "KES " + n.toLocaleString("en-KE", {minimumFractionDigits: 2, maximumFractionDigits: 2});
    document.getElementById("calc").addEventListener("submit", async ev => {
        ev.preventDefault();
        const f = new FormData(ev.target);
        const body = {};
        for (const [k, v] of f.entries()) body[k] = k === "vehicle_benefit" ? v : Number(v);
        body.has_disability = f.get("has_disability") === "on";
        const res = await fetch("/api/calculate", {method: "POST", headers: {"Content-Type": "application/json"}, body: JSON.stringify(body)});
        const data = await res.json();
        const out = document.getElementById("out");
        if (!res.ok) { out.innerHTML = '<p class="error">' + (data.field ? data.field + ": " : "") + data.error + "</p>"; return; }
        out.innerHTML = "<table>" + rows.map(([label, key]) =>
            "<tr><td>" + label + '</td><td class="amount">' + kes(data.result[key]) + "</td></tr>").join("") + "</table>";
    });
    </script>
</body>
</html>
`
