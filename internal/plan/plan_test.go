package plan_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/programme-lv/kernval/internal"
	"github.com/programme-lv/kernval/internal/catalog"
	"github.com/programme-lv/kernval/internal/plan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) (*plan.Source, func() string) {
	t.Helper()
	var mu sync.Mutex
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotQuery = r.URL.Query().Get("planId")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	src := plan.NewSource(srv.URL+"/api/plan", 5*time.Second, catalog.Default(), internal.DTypeFP16, logger)
	return src, func() string {
		mu.Lock()
		defer mu.Unlock()
		return gotQuery
	}
}

func TestFetchTranslatesCases(t *testing.T) {
	src, q := serve(t, http.StatusOK, `{
		"success": true,
		"result": {"cases": [
			{"id": 11, "filtersConditionDOMap": {"operator": "convolution", "variant": ["packn_gemm"], "vlen": 256}},
			{"id": "12", "filtersConditionDOMap": {"operator": ["layer_norm"], "dtype": "32"}},
			{"id": 13, "filtersConditionDOMap": {"operator": "averagepool", "variant": "global"}}
		]}
	}`)

	cases, err := src.Fetch(context.Background(), "4242")
	require.NoError(t, err)
	assert.Equal(t, "4242", q())
	require.Len(t, cases, 3)

	assert.Equal(t, "convolution-256-packn_gemm", cases[0].ID)
	assert.Equal(t, internal.DTypeFP16, cases[0].DType)
	assert.Equal(t, "11", cases[0].PlanRef)

	assert.Equal(t, "layer_norm", cases[1].ID)
	assert.Equal(t, internal.DTypeFP32, cases[1].DType)
	assert.Equal(t, "12", cases[1].PlanRef)

	assert.Equal(t, "averagepool-global", cases[2].ID)
	assert.False(t, cases[2].VLen.IsSet())
}

func TestFetchSuccessFalseIsUnavailable(t *testing.T) {
	src, _ := serve(t, http.StatusOK, `{"success": false, "message": "no such plan"}`)
	cases, err := src.Fetch(context.Background(), "1")
	require.ErrorIs(t, err, plan.ErrPlanUnavailable)
	assert.Empty(t, cases)
	assert.Contains(t, err.Error(), "no such plan")
}

func TestFetchFailures(t *testing.T) {
	for name, tc := range map[string]struct {
		status int
		body   string
	}{
		"server error":   {http.StatusInternalServerError, `{"success": true}`},
		"not found":      {http.StatusNotFound, ``},
		"malformed json": {http.StatusOK, `{"success": tru`},
	} {
		t.Run(name, func(t *testing.T) {
			src, _ := serve(t, tc.status, tc.body)
			_, err := src.Fetch(context.Background(), "1")
			require.ErrorIs(t, err, plan.ErrPlanUnavailable)
		})
	}
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	src := plan.NewSource(url, time.Second, catalog.Default(), internal.DTypeInt8, nil)
	_, err := src.Fetch(context.Background(), "1")
	require.ErrorIs(t, err, plan.ErrPlanUnavailable)
}

func TestFetchEmptyPlanID(t *testing.T) {
	src := plan.NewSource("http://127.0.0.1:1", time.Second, catalog.Default(), internal.DTypeInt8, nil)
	cases, err := src.Fetch(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, cases)
}

func TestFetchSkipsBadEntries(t *testing.T) {
	src, _ := serve(t, http.StatusOK, `{
		"success": true,
		"result": {"cases": [
			{"id": 1, "filtersConditionDOMap": {"operator": "conv9d"}},
			{"id": 2, "filtersConditionDOMap": {"operator": "convolution", "variant": "nope", "vlen": 128}},
			{"id": 3, "filtersConditionDOMap": {"operator": "convolution", "variant": "pack1_com", "vlen": 1024}},
			{"id": 4, "filtersConditionDOMap": {"operator": "softmax", "vlen": 128}},
			{"id": 5, "filtersConditionDOMap": {"operator": "convolution_nchw", "variant": "random", "dtype": 8}},
			{"id": 6, "filtersConditionDOMap": {"operator": "add", "variant": ["common", "vector"]}},
			{"id": 7, "filtersConditionDOMap": {}},
			{"id": 8, "filtersConditionDOMap": {"operator": "add", "variant": "common", "vlen": "128"}},
			{"id": 9, "filtersConditionDOMap": {"operator": "add", "variant": "common", "vlen": 128}}
		]}
	}`)

	cases, err := src.Fetch(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "add-128-common", cases[0].ID)
	assert.Equal(t, "8", cases[0].PlanRef)
}

func TestFetchHonoursContext(t *testing.T) {
	src, _ := serve(t, http.StatusOK, `{"success": true, "result": {"cases": []}}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := src.Fetch(ctx, "1")
	require.ErrorIs(t, err, plan.ErrPlanUnavailable)
	require.ErrorIs(t, err, context.Canceled)
}
