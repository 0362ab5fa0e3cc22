package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazario-group/pricing-cli/internal/ensemble"
	"github.com/bazario-group/pricing-cli/internal/extract"
	"github.com/bazario-group/pricing-cli/internal/feature"
	"github.com/bazario-group/pricing-cli/internal/model"
	"github.com/bazario-group/pricing-cli/internal/patterns"
	"github.com/bazario-group/pricing-cli/internal/predict"
	"github.com/bazario-group/pricing-cli/internal/validate"
)

func leafModel(t *testing.T, c model.Category, value float64) *ensemble.Model {
	t.Helper()
	manifest := feature.ManifestFor(c)
	n := manifest.Len()
	scaler := &ensemble.RobustScaler{Center: make([]float64, n), Scale: make([]float64, n)}
	for i := range scaler.Scale {
		scaler.Scale[i] = 1
	}
	leaf := func() *ensemble.BaggedTrees {
		return &ensemble.BaggedTrees{Trees: []*ensemble.TreeNode{{Value: value}}}
	}
	m := &ensemble.Model{
		Version:  ensemble.ArtifactVersion,
		Category: c,
		Manifest: manifest,
		Fills:    feature.DefaultFills(c),
		Scaler:   scaler,
		Learners: []ensemble.LearnerArtifact{
			{Kind: ensemble.KindBoostDeep, Bag: leaf()},
			{Kind: ensemble.KindBoostShallow, Bag: leaf()},
			{Kind: ensemble.KindBagged, Bag: leaf()},
			{Kind: ensemble.KindBoostCoarse, Bag: leaf()},
		},
		Weights: ensemble.DefaultWeights(),
	}
	require.NoError(t, m.Validate())
	return m
}

func newTestRouter(t *testing.T, models ...*ensemble.Model) http.Handler {
	t.Helper()
	pats := patterns.Default()
	reg := ensemble.NewRegistry()
	for _, m := range models {
		require.NoError(t, reg.Swap(m))
	}
	env := &serveEnv{
		reg:      reg,
		svc:      predict.NewService(pats, reg),
		ex:       extract.New(pats),
		val:      validate.New(pats),
		modelDir: t.TempDir(),
	}
	return newRouter(env, 0, 0)
}

func TestServeHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestServePredictOK(t *testing.T) {
	router := newTestRouter(t, leafModel(t, model.CategoryMobile, 500))

	body := `{"title":"Samsung Galaxy S23 8GB RAM 128GB","category":"mobile"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/predict", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"predicted_price":500`)
}

func TestServePredictRejected(t *testing.T) {
	router := newTestRouter(t, leafModel(t, model.CategoryMobile, 500))

	body := `{"title":"great phone bargain","category":"mobile"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/predict", strings.NewReader(body)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_brand")
}

func TestServePredictNoModel(t *testing.T) {
	router := newTestRouter(t)

	body := `{"title":"Samsung Galaxy S23 8GB RAM","category":"mobile"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/predict", strings.NewReader(body)))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServePredictBadRequest(t *testing.T) {
	router := newTestRouter(t)

	for _, body := range []string{
		`{not json`,
		`{"title":"","category":"mobile"}`,
		`{"title":"x","category":"boats"}`,
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/predict", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestServeValidate(t *testing.T) {
	router := newTestRouter(t)

	body := `{"title":"HP MacBook Pro for sale","category":"laptop"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/validate", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "brand_model_conflict")
}

func TestServeExtract(t *testing.T) {
	router := newTestRouter(t)

	body := `{"title":"Dell Inspiron i5 8GB RAM 256GB SSD","category":"laptop"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/extract", strings.NewReader(body)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"brand":"dell"`)
}

func TestServeModels(t *testing.T) {
	router := newTestRouter(t, leafModel(t, model.CategoryMobile, 100))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/models", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"category":"mobile"`)
}

func TestServeReloadEmptyDir(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/models/reload", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reloaded":0`)
}

func TestServeRateLimit(t *testing.T) {
	pats := patterns.Default()
	reg := ensemble.NewRegistry()
	env := &serveEnv{
		reg:      reg,
		svc:      predict.NewService(pats, reg),
		ex:       extract.New(pats),
		val:      validate.New(pats),
		modelDir: t.TempDir(),
	}
	router := newRouter(env, 1, 1)

	body := `{"title":"Dell Inspiron i5","category":"laptop"}`
	first := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/extract", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.1:1234"
	router.ServeHTTP(first, req)
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/v1/extract", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.1:1234"
	router.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// A different client has its own bucket.
	third := httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/v1/extract", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.2:1234"
	router.ServeHTTP(third, req)
	assert.Equal(t, http.StatusOK, third.Code)
}
