package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applogger "github.com/uranium24/Fresh-Price/pkg/logger"
)

type pingRequest struct {
	Name  string `param:"name" validate:"required"`
	Limit int    `query:"limit" default:"5" validate:"gte=1,lte=10"`
}

type pingHandler struct{}

func (pingHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ping/:name", func(c echo.Context) error {
		req := &pingRequest{}
		if verrs := ReadAndValidateRequest(c, req); verrs != nil {
			return BadRequestResponse(c, verrs)
		}
		return SuccessResponse(c, req)
	})
	e.GET("/missing", func(c echo.Context) error {
		return AppErrorResponse(c, NotFound("nothing here"))
	})
	e.GET("/boom", func(c echo.Context) error {
		return AppErrorResponse(c, errors.New("db down"))
	})
	e.GET("/panic", func(c echo.Context) error {
		panic("unexpected")
	})
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(applogger.Nop(), []Handler{pingHandler{}},
		WithMetrics("/metrics", prometheus.NewRegistry()))
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRequestDefaultsAndValidation(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/ping/wheat", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "wheat", data["Name"])
	assert.EqualValues(t, 5, data["Limit"])

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/ping/wheat?limit=99", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decode(t, rec)["data"].([]interface{})
	require.Len(t, errs, 1)
	first := errs[0].(map[string]interface{})
	assert.Equal(t, CodeValidation, first["code"])
	assert.Equal(t, "limit", first["field"])
	assert.Equal(t, "limit must be at most 10", first["message"])

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/ping/wheat?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAppErrorResponses(t *testing.T) {
	s := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, http.StatusNotFound, body["status"])
	first := body["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, CodeNotFound, first["code"])

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestPanicIsRecovered(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestIDIsEchoedOrGenerated(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/ping/rice", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc-123")
	rec := serve(s, req)
	assert.Equal(t, "abc-123", rec.Header().Get(echo.HeaderXRequestID))

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/ping/rice", nil))
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/ping/rice", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	rec := serve(s, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestMetricsEndpointExposesHTTPCollectors(t *testing.T) {
	s := newTestServer(t)
	serve(s, httptest.NewRequest(http.MethodGet, "/ping/rice", nil))

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `freshprice_http_requests_total{method="GET",route="/ping/:name",status="200"} 1`)
}
