package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bazario-group/pricing-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testListing(title string, c model.Category, price float64) model.Listing {
	return model.Listing{
		Title:       title,
		Description: "well kept, single owner",
		Category:    c,
		AskingPrice: price,
	}
}

func TestSQLite_AddAndListListings(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.AddListing(ctx, testListing("iPhone 13 128GB", model.CategoryMobile, 900), "", "manual")
	require.NoError(t, err)
	_, err = st.AddListing(ctx, testListing("Dell Inspiron i5", model.CategoryLaptop, 450), "", "manual")
	require.NoError(t, err)

	mobiles, err := st.ListListings(ctx, ListingFilter{Category: model.CategoryMobile})
	require.NoError(t, err)
	require.Len(t, mobiles, 1)
	assert.Equal(t, "iPhone 13 128GB", mobiles[0].Listing.Title)
	assert.Equal(t, 900.0, mobiles[0].Listing.AskingPrice)

	all, err := st.ListListings(ctx, ListingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLite_ExternalIDUpsert(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.AddListing(ctx, testListing("iPhone 13", model.CategoryMobile, 900), "olx-1", "olx")
	require.NoError(t, err)
	_, err = st.AddListing(ctx, testListing("iPhone 13 Pro", model.CategoryMobile, 1100), "olx-1", "olx")
	require.NoError(t, err)

	n, err := st.CountListings(ctx, model.CategoryMobile)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := st.ListListings(ctx, ListingFilter{Category: model.CategoryMobile})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "iPhone 13 Pro", got[0].Listing.Title)
}

func TestSQLite_EmptyExternalIDsDoNotCollide(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.AddListing(ctx, testListing("sofa one", model.CategoryFurniture, 100), "", "manual")
	require.NoError(t, err)
	_, err = st.AddListing(ctx, testListing("sofa two", model.CategoryFurniture, 120), "", "manual")
	require.NoError(t, err)

	n, err := st.CountListings(ctx, model.CategoryFurniture)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLite_AddListingsBatch(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	batch := []model.LabeledListing{
		{Listing: testListing("Galaxy S22", model.CategoryMobile, 600), ExternalID: "b-1", Source: "csv"},
		{Listing: testListing("Galaxy S23", model.CategoryMobile, 800), ExternalID: "b-2", Source: "csv"},
		{Listing: testListing("sheesham bed", model.CategoryFurniture, 300), Source: "csv"},
	}
	n, err := st.AddListings(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	fromCSV, err := st.ListListings(ctx, ListingFilter{Source: "csv"})
	require.NoError(t, err)
	assert.Len(t, fromCSV, 3)
}

func TestSQLite_ListListingsLimitOffset(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := st.AddListing(ctx, testListing("Pixel 8", model.CategoryMobile, 500), "", "manual")
		require.NoError(t, err)
	}

	page, err := st.ListListings(ctx, ListingFilter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestSQLite_RunLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.CategoryLaptop)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	metrics := map[string]float64{"train_mae": 42.5, "train_rmse": 60.1}
	require.NoError(t, st.CompleteRun(ctx, run.ID, 1200, metrics))

	runs, err := st.ListRuns(ctx, RunFilter{Category: model.CategoryLaptop})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
	assert.Equal(t, 1200, runs[0].Examples)
	assert.Equal(t, 42.5, runs[0].Metrics["train_mae"])
	assert.NotNil(t, runs[0].FinishedAt)
}

func TestSQLite_FailRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, model.CategoryMobile)
	require.NoError(t, err)
	require.NoError(t, st.FailRun(ctx, run.ID, "too few examples"))

	runs, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "too few examples", runs[0].Error)
}

func TestSQLite_RunNotFound(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	assert.Error(t, st.CompleteRun(ctx, "missing", 0, nil))
	assert.Error(t, st.FailRun(ctx, "missing", "x"))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "dsn")
	assert.Error(t, err)
}

func TestOpen_SQLiteDefault(t *testing.T) {
	st, err := Open(context.Background(), "", filepath.Join(t.TempDir(), "d.db"))
	require.NoError(t, err)
	require.NoError(t, st.Close())
}
