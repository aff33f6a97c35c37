package db

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRoutes(t *testing.T) {
	db := newTestDB(t)
	s := NewResultSink(db)
	writeSampleRun(t, s)
	runID, err := s.Commit(context.Background(), RunMeta{Source: "sample.pos"})
	require.NoError(t, err)

	mux := http.NewServeMux()
	db.AttachRunRoutes(mux)

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	t.Run("list", func(t *testing.T) {
		w := get("/api/runs")
		require.Equal(t, http.StatusOK, w.Code)
		var runs []Run
		require.NoError(t, json.NewDecoder(w.Body).Decode(&runs))
		require.Len(t, runs, 1)
		assert.Equal(t, runID, runs[0].RunID)
	})

	t.Run("tables", func(t *testing.T) {
		w := get("/api/runs/" + runID + "/tables")
		require.Equal(t, http.StatusOK, w.Code)
		var tables []TableJSON
		require.NoError(t, json.NewDecoder(w.Body).Decode(&tables))
		require.Len(t, tables, 1)
		assert.Equal(t, "Composition", tables[0].Name)
		require.Len(t, tables[0].Rows, 2)
		assert.Nil(t, tables[0].Rows[1][1], "NaN is served as null")
	})

	t.Run("texts", func(t *testing.T) {
		w := get("/api/runs/" + runID + "/texts")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Clusters: 1")
	})

	t.Run("unknown run", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, get("/api/runs/nope/tables").Code)
		assert.Equal(t, http.StatusNotFound, get("/api/runs/nope/texts").Code)
	})

	t.Run("method", func(t *testing.T) {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/runs", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})
}
