package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"goPayeCalculator/paye"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *WebServer {
	t.Helper()
	config, err := LoadDefaultConfig()
	require.NoError(t, err)
	return NewWebServer(config, paye.Default(), zap.NewNop())
}

func doRequest(t *testing.T, ws *WebServer, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	ws.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func assertAPIError(t *testing.T, w *httptest.ResponseRecorder, status int, field string) {
	t.Helper()
	assert.Equal(t, status, w.Code, w.Body.String())
	var apiErr APIError
	decodeBody(t, w, &apiErr)
	assert.NotEmpty(t, apiErr.Error)
	assert.Equal(t, field, apiErr.Field)
}

func TestHealth(t *testing.T) {
	ws := newTestServer(t)
	w := doRequest(t, ws, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	decodeBody(t, w, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Kenya 2026", body["rates"])
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDPassthrough(t *testing.T) {
	ws := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	ws.Handler().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	ws := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/calculate", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	ws.Handler().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestIndex(t *testing.T) {
	w := doRequest(t, newTestServer(t), http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Kenya PAYE Calculator")
}

func TestRates(t *testing.T) {
	w := doRequest(t, newTestServer(t), http.MethodGet, "/api/rates", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Name  string `json:"name"`
		Bands []struct {
			Upper *float64 `json:"upper"`
		} `json:"tax_bands"`
	}
	decodeBody(t, w, &body)
	assert.Equal(t, "Kenya 2026", body.Name)
	require.Len(t, body.Bands, 5)
	assert.Nil(t, body.Bands[4].Upper)
}

func TestBands(t *testing.T) {
	ws := newTestServer(t)

	t.Run("breakdown", func(t *testing.T) {
		w := doRequest(t, ws, http.MethodGet, "/api/bands?taxable=95680", "")
		require.Equal(t, http.StatusOK, w.Code)
		var body BandsResponse
		decodeBody(t, w, &body)
		assert.InDelta(t, 23487.35, body.TaxBeforeRelief, 0.001)
		assert.Equal(t, 0.30, body.MarginalRate)
		assert.Len(t, body.Bands, 5)
	})

	t.Run("not a number", func(t *testing.T) {
		assertAPIError(t, doRequest(t, ws, http.MethodGet, "/api/bands?taxable=abc", ""), http.StatusBadRequest, "taxable")
	})

	t.Run("negative", func(t *testing.T) {
		assertAPIError(t, doRequest(t, ws, http.MethodGet, "/api/bands?taxable=-1", ""), http.StatusBadRequest, "taxable")
	})
}

func TestCalculate(t *testing.T) {
	ws := newTestServer(t)

	t.Run("100k", func(t *testing.T) {
		w := doRequest(t, ws, http.MethodPost, "/api/calculate", `{"gross_salary": 100000, "projection_months": 2}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body CalculateResponse
		decodeBody(t, w, &body)
		assert.InDelta(t, 21087.35, body.Result.PAYE, 0.001)
		assert.InDelta(t, 70342.65, body.Result.NetSalary, 0.001)
		assert.Len(t, body.Projection, 2)
		assert.InDelta(t, 2*70342.65, body.Projection[1].CumulativeNet, 0.01)
	})

	t.Run("with elections", func(t *testing.T) {
		w := doRequest(t, ws, http.MethodPost, "/api/calculate",
			`{"gross_salary": 100000, "loan_repayment": 5000, "vehicle_benefit": "none"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body CalculateResponse
		decodeBody(t, w, &body)
		assert.InDelta(t, 65342.65, body.Result.NetSalary, 0.001)
	})

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing gross", `{}`, "gross_salary"},
		{"negative gross", `{"gross_salary": -5}`, "gross_salary"},
		{"negative election", `{"gross_salary": 50000, "pension_contribution": -1}`, "pension_contribution"},
		{"unknown car", `{"gross_salary": 50000, "vehicle_benefit": "tractor"}`, "vehicle_benefit"},
		{"projection too long", `{"gross_salary": 50000, "projection_months": 500}`, "projection_months"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertAPIError(t, doRequest(t, ws, http.MethodPost, "/api/calculate", tc.body), http.StatusBadRequest, tc.field)
		})
	}

	t.Run("malformed json", func(t *testing.T) {
		w := doRequest(t, ws, http.MethodPost, "/api/calculate", `{"gross_salary":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid request body")
	})
}

func TestServers_ShareFieldNaming(t *testing.T) {
	first := newTestServer(t)
	second := newTestServer(t)

	for _, ws := range []*WebServer{first, second, first} {
		assertAPIError(t, doRequest(t, ws, http.MethodPost, "/api/calculate", `{}`), http.StatusBadRequest, "gross_salary")
	}
}

func TestNetToGross(t *testing.T) {
	ws := newTestServer(t)

	t.Run("converges", func(t *testing.T) {
		w := doRequest(t, ws, http.MethodPost, "/api/net-to-gross", `{"target_net": 70342.65}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body struct {
			Solution struct {
				Status string  `json:"status"`
				Gross  float64 `json:"gross_salary"`
			} `json:"solution"`
			Result *paye.Result `json:"result"`
		}
		decodeBody(t, w, &body)
		assert.Equal(t, "converged", body.Solution.Status)
		assert.InDelta(t, 100000, body.Solution.Gross, 5)
		require.NotNil(t, body.Result)
		assert.InDelta(t, 70342.65, body.Result.NetSalary, 1)
	})

	t.Run("invalid target", func(t *testing.T) {
		assertAPIError(t, doRequest(t, ws, http.MethodPost, "/api/net-to-gross", `{"target_net": 0}`), http.StatusBadRequest, "target_net")
	})

	t.Run("invalid elections", func(t *testing.T) {
		assertAPIError(t, doRequest(t, ws, http.MethodPost, "/api/net-to-gross",
			`{"target_net": 50000, "loan_repayment": -1}`), http.StatusBadRequest, "loan_repayment")
	})

	t.Run("missing target", func(t *testing.T) {
		assertAPIError(t, doRequest(t, ws, http.MethodPost, "/api/net-to-gross", `{}`), http.StatusBadRequest, "target_net")
	})

	t.Run("not converged", func(t *testing.T) {
		w := doRequest(t, ws, http.MethodPost, "/api/net-to-gross", `{"target_net": 100}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

		var body NetToGrossResponse
		var raw map[string]json.RawMessage
		decodeBody(t, w, &raw)
		assert.NotContains(t, raw, "result")
		require.NoError(t, json.Unmarshal(raw["error"], &body.Error))
		assert.Contains(t, body.Error, "did not converge")
	})
}

func TestBonus(t *testing.T) {
	ws := newTestServer(t)

	w := doRequest(t, ws, http.MethodPost, "/api/bonus", `{"base_gross": 100000, "bonus_amount": 100000}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body paye.Bonus
	decodeBody(t, w, &body)
	assert.InDelta(t, 30000, body.BonusTax, 0.001)
	assert.InDelta(t, 70000, body.NetBonus, 0.001)
	assert.InDelta(t, 0.30, body.BonusRate, 1e-9)

	assertAPIError(t, doRequest(t, ws, http.MethodPost, "/api/bonus", `{"base_gross": 100000}`), http.StatusBadRequest, "bonus_amount")
	assertAPIError(t, doRequest(t, ws, http.MethodPost, "/api/bonus", `{"base_gross": 100000, "bonus_amount": -1}`), http.StatusBadRequest, "bonus_amount")
}

func TestCompare(t *testing.T) {
	ws := newTestServer(t)

	t.Run("configured levels", func(t *testing.T) {
		w := doRequest(t, ws, http.MethodPost, "/api/compare", `{}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body struct {
			Rows []paye.ComparisonRow `json:"rows"`
		}
		decodeBody(t, w, &body)
		assert.Len(t, body.Rows, len(paye.DefaultComparisonLevels))
	})

	t.Run("custom levels", func(t *testing.T) {
		w := doRequest(t, ws, http.MethodPost, "/api/compare", `{"levels": [100000]}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var body struct {
			Rows []paye.ComparisonRow `json:"rows"`
		}
		decodeBody(t, w, &body)
		require.Len(t, body.Rows, 1)
		assert.InDelta(t, 70342.65, body.Rows[0].Net, 0.001)
	})

	t.Run("negative level", func(t *testing.T) {
		assertAPIError(t, doRequest(t, ws, http.MethodPost, "/api/compare", `{"levels": [-1]}`), http.StatusBadRequest, "levels")
	})

	t.Run("csv", func(t *testing.T) {
		w := doRequest(t, ws, http.MethodPost, "/api/compare.csv", `{"levels": [50000, 100000]}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
		lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
		require.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "gross,net,paye"))
		assert.True(t, strings.HasPrefix(lines[2], "100000.00,70342.65,"))
	})
}

func TestPayslipPDFEndpoint(t *testing.T) {
	ws := newTestServer(t)

	t.Run("pdf", func(t *testing.T) {
		w := doRequest(t, ws, http.MethodPost, "/api/payslip.pdf",
			`{"gross_salary": 100000, "period": "2026-10", "employee": "B. Mutua"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "payslip-2026-10-")
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
	})

	t.Run("bad period", func(t *testing.T) {
		assertAPIError(t, doRequest(t, ws, http.MethodPost, "/api/payslip.pdf",
			`{"gross_salary": 100000, "period": "October"}`), http.StatusBadRequest, "period")
	})

	t.Run("missing gross", func(t *testing.T) {
		assertAPIError(t, doRequest(t, ws, http.MethodPost, "/api/payslip.pdf", `{"period": "2026-10"}`), http.StatusBadRequest, "gross_salary")
	})
}
