package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/mdtable/internal/engine"
	"github.com/leengari/mdtable/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T, opts Options) *gin.Engine {
	t.Helper()
	eng := engine.New(engine.DefaultOptions())
	table, report, err := eng.LoadWithReport(testutil.LeaderboardReadme)
	require.NoError(t, err)
	return NewRouter(NewHandler(eng, testutil.LeaderboardReadme, table, report), opts)
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type result struct {
	Columns []string                 `json:"columns"`
	Rows    []map[string]interface{} `json:"rows"`
	Message string                   `json:"message"`
	Error   string                   `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) result {
	t.Helper()
	var res result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestHealth(t *testing.T) {
	rec := do(newRouter(t, Options{}), "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","rows":5}`, rec.Body.String())
}

func TestTableFormats(t *testing.T) {
	router := newRouter(t, Options{})

	res := decode(t, do(router, "GET", "/table", ""))
	assert.Equal(t, []string{"Model", "Score", "Commercial?", "Released", "Org"}, res.Columns)
	assert.Len(t, res.Rows, 5)

	rec := do(router, "GET", "/table?format=markdown", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "| Model | Score | Commercial? | Released | Org |\n"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")

	rec = do(router, "GET", "/table?format=html", "")
	assert.Contains(t, rec.Body.String(), "<table>")

	rec = do(router, "GET", "/table?format=text", "")
	assert.Contains(t, rec.Body.String(), "Score (NUMERIC)")

	rec = do(router, "GET", "/table?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuery(t *testing.T) {
	router := newRouter(t, Options{})

	rec := do(router, "POST", "/query", `{"query":"FILTER COLUMNS Org WHERE Score >= 3.5"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode(t, rec)
	assert.Equal(t, "2 of 5 rows", res.Message)
	assert.Equal(t, []string{"Model", "Org"}, res.Columns)
	assert.Equal(t, "A", res.Rows[0]["Model"])
	assert.Equal(t, "D", res.Rows[1]["Model"])

	rec = do(router, "POST", "/query", `{"query":"FILTER ROWS E COLUMNS Org","format":"markdown"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "| Model | Org |\n|---|---|\n| E | Meta |\n", rec.Body.String())
}

func TestQueryErrors(t *testing.T) {
	router := newRouter(t, Options{})

	tests := []struct {
		body string
		want string
	}{
		{`{}`, "Query"},
		{`{"query":"FILTER","format":"xml"}`, "Format"},
		{`not json`, "invalid"},
		{`{"query":"FILTER WHERE Nope = 1"}`, "column not found: Nope"},
		{`{"query":"FILTER ROWS"}`, "parse error"},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			rec := do(router, "POST", "/query", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, decode(t, rec).Error, tt.want)
		})
	}
}

func TestRow(t *testing.T) {
	router := newRouter(t, Options{})

	rec := do(router, "GET", "/rows/C", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"Model":"C","Score":3,"Commercial?":false,"Released":"2022-11-30","Org":null}`, rec.Body.String())

	rec = do(router, "GET", "/rows/Z", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSectionsAndSchema(t *testing.T) {
	router := newRouter(t, Options{})

	rec := do(router, "GET", "/sections", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sections []struct {
		Level int    `json:"level"`
		Text  string `json:"text"`
		Table bool   `json:"table"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sections))
	require.Len(t, sections, 4)
	assert.Equal(t, "Leaderboard", sections[1].Text)
	assert.True(t, sections[1].Table)

	rec = do(router, "GET", "/schema", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"index":"Model"`)
	assert.Contains(t, rec.Body.String(), `"inference"`)
}

func TestRateLimit(t *testing.T) {
	router := newRouter(t, Options{RateLimit: 1})

	assert.Equal(t, http.StatusOK, do(router, "GET", "/table", "").Code)
	assert.Equal(t, http.StatusOK, do(router, "GET", "/table", "").Code)
	rec := do(router, "GET", "/table", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())

	// health checks are not limited
	assert.Equal(t, http.StatusOK, do(router, "GET", "/healthz", "").Code)
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(1, 1)
	rl.now = func() time.Time { return clock }
	rl.lastSweep = clock

	router := gin.New()
	router.Use(rl.Middleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	from := func(addr string) int {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, from("10.0.0.1:1000"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, from("10.0.0.2:1000"))
	assert.Equal(t, 2, rl.Len())

	clock = clock.Add(IdleTTL / 2)
	from("10.0.0.2:1000")
	assert.Equal(t, 2, rl.Len(), "no sweep before a full ttl")

	clock = clock.Add(IdleTTL / 2)
	assert.Equal(t, http.StatusOK, from("10.0.0.3:1000"))
	assert.Equal(t, 2, rl.Len(), "10.0.0.1 was idle for a full ttl")

	assert.Equal(t, http.StatusOK, from("10.0.0.1:1000"), "an evicted client starts with a fresh burst")
	assert.Equal(t, 3, rl.Len())
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("mdtable_pipeline_events_total 1\n"))
	})
	router := newRouter(t, Options{Metrics: metrics})

	rec := do(router, "GET", "/metrics", "")
	assert.Equal(t, "mdtable_pipeline_events_total 1\n", rec.Body.String())

	rec = do(newRouter(t, Options{}), "GET", "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
