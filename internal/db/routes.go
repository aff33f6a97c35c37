package db

import (
	"net/http"

	"github.com/banshee-data/composition.report/internal/apt/sink"
	"github.com/banshee-data/composition.report/internal/httputil"
)

// TableJSON is the API form of a stored result table. Numbers that could
// not be computed are null.
type TableJSON struct {
	Name    string          `json:"name"`
	Columns []columnJSON    `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

func tableJSON(t *sink.Table) TableJSON {
	out := TableJSON{Name: t.Name, Rows: make([][]interface{}, 0, len(t.Rows))}
	for _, c := range t.Columns {
		out.Columns = append(out.Columns, columnJSON{Name: c.Name, Kind: c.Kind.String()})
	}
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, encodeCells(row))
	}
	return out
}

// AttachRunRoutes mounts read-only JSON endpoints over stored runs:
//
//	GET /api/runs               list runs, newest first
//	GET /api/runs/{id}/tables   result tables of one run
//	GET /api/runs/{id}/texts    text blocks of one run
func (db *DB) AttachRunRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/runs", db.handleRuns)
	mux.HandleFunc("/api/runs/{id}/tables", db.handleRunTables)
	mux.HandleFunc("/api/runs/{id}/texts", db.handleRunTexts)
}

func (db *DB) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	runs, err := db.Runs(r.Context())
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	if runs == nil {
		runs = []Run{}
	}
	httputil.WriteJSON(w, http.StatusOK, runs)
}

func (db *DB) runExists(r *http.Request, id string) (bool, error) {
	var n int
	err := db.QueryRowContext(r.Context(), `SELECT COUNT(*) FROM runs WHERE run_id = ?`, id).Scan(&n)
	return n > 0, err
}

func (db *DB) handleRunTables(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	id := r.PathValue("id")
	if ok, err := db.runExists(r, id); err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	} else if !ok {
		httputil.NotFound(w, "no such run: "+id)
		return
	}

	tables, err := db.LoadTables(r.Context(), id)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	out := make([]TableJSON, 0, len(tables))
	for _, t := range tables {
		out = append(out, tableJSON(t))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (db *DB) handleRunTexts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	id := r.PathValue("id")
	if ok, err := db.runExists(r, id); err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	} else if !ok {
		httputil.NotFound(w, "no such run: "+id)
		return
	}

	texts, err := db.LoadTexts(r.Context(), id)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, texts)
}
