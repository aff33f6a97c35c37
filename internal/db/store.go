package db

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/composition.report/internal/apt/l1ions"
	"github.com/banshee-data/composition.report/internal/apt/sink"
	"github.com/banshee-data/composition.report/internal/timeutil"
)

// RunMeta is the per-run summary stored in the runs table.
type RunMeta struct {
	Source        string
	Config        any // JSON-encoded into config_json
	TotalAtoms    int
	SelectedAtoms int
	ClustersKept  int
	Elapsed       time.Duration
}

// Run is a stored runs row.
type Run struct {
	RunID         string `json:"run_id"`
	CreatedAt     int64  `json:"created_at"`
	Source        string `json:"source"`
	ConfigJSON    string `json:"config_json,omitempty"`
	TotalAtoms    int    `json:"total_atoms"`
	SelectedAtoms int    `json:"selected_atoms"`
	ClustersKept  int    `json:"clusters_kept"`
	ElapsedMs     int64  `json:"elapsed_ms"`
}

// ResultSink buffers one run's output and writes it in a single
// transaction on Commit. Nothing reaches the database if the run fails
// before Commit.
type ResultSink struct {
	db    *DB
	clock timeutil.Clock
	buf   sink.MemorySink
}

// NewResultSink returns a sink that commits into db.
func NewResultSink(db *DB) *ResultSink {
	return &ResultSink{db: db, clock: timeutil.RealClock{}}
}

// WithClock sets the clock used to stamp created_at.
func (s *ResultSink) WithClock(c timeutil.Clock) *ResultSink {
	s.clock = c
	return s
}

// WriteTable implements sink.ResultSink.
func (s *ResultSink) WriteTable(t *sink.Table) error { return s.buf.WriteTable(t) }

// WritePointCloud implements sink.ResultSink.
func (s *ResultSink) WritePointCloud(pc sink.PointCloud) error { return s.buf.WritePointCloud(pc) }

// WriteSurface implements sink.ResultSink.
func (s *ResultSink) WriteSurface(surf sink.Surface) error { return s.buf.WriteSurface(surf) }

// WriteText implements sink.ResultSink.
func (s *ResultSink) WriteText(b sink.TextBlock) error { return s.buf.WriteText(b) }

// Commit stores everything written so far under a fresh run id and
// returns that id.
func (s *ResultSink) Commit(ctx context.Context, meta RunMeta) (string, error) {
	runID := uuid.New().String()

	var cfgJSON interface{}
	if meta.Config != nil {
		b, err := json.Marshal(meta.Config)
		if err != nil {
			return "", fmt.Errorf("encode run config: %w", err)
		}
		cfgJSON = string(b)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, created_at, source, config_json,
			total_atoms, selected_atoms, clusters_kept, elapsed_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, s.clock.Now().UnixNano(), meta.Source, cfgJSON,
		meta.TotalAtoms, meta.SelectedAtoms, meta.ClustersKept, meta.Elapsed.Milliseconds(),
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for ti, t := range s.buf.Tables {
		if err := insertTable(ctx, tx, runID, ti, t); err != nil {
			return "", err
		}
	}
	for _, pc := range s.buf.PointClouds {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO point_clouds (run_id, name, grp, color, point_count, points_blob)
			VALUES (?, ?, ?, ?, ?, ?)`,
			runID, pc.Name, pc.Group, pc.Color.Hex(), len(pc.Points), encodePoints(pc.Points),
		); err != nil {
			return "", fmt.Errorf("insert point cloud %q: %w", pc.Name, err)
		}
	}
	for _, surf := range s.buf.Surfaces {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO surfaces (run_id, name, grp, color, vertex_count, triangle_count, vertices_blob, triangles_blob)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, surf.Name, surf.Group, surf.Color.Hex(), len(surf.Vertices), len(surf.Triangles),
			encodePoints(surf.Vertices), encodeTriangles(surf.Triangles),
		); err != nil {
			return "", fmt.Errorf("insert surface %q: %w", surf.Name, err)
		}
	}
	for bi, b := range s.buf.Texts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO text_blocks (run_id, block_idx, title, body) VALUES (?, ?, ?, ?)`,
			runID, bi, b.Title, b.Body,
		); err != nil {
			return "", fmt.Errorf("insert text block %q: %w", b.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	s.buf = sink.MemorySink{}
	return runID, nil
}

type columnJSON struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func insertTable(ctx context.Context, tx *sql.Tx, runID string, ti int, t *sink.Table) error {
	cols := make([]columnJSON, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = columnJSON{Name: c.Name, Kind: c.Kind.String()}
	}
	colsJSON, err := json.Marshal(cols)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO result_tables (run_id, table_idx, name, columns_json) VALUES (?, ?, ?, ?)`,
		runID, ti, t.Name, string(colsJSON),
	); err != nil {
		return fmt.Errorf("insert table %q: %w", t.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO result_rows (run_id, table_idx, row_idx, cells_json) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for ri, row := range t.Rows {
		cells, err := json.Marshal(encodeCells(row))
		if err != nil {
			return fmt.Errorf("encode row %d of %q: %w", ri, t.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, runID, ti, ri, string(cells)); err != nil {
			return fmt.Errorf("insert row %d of %q: %w", ri, t.Name, err)
		}
	}
	return nil
}

// encodeCells maps a row to JSON values. NaN and infinities become null.
func encodeCells(row []sink.Cell) []interface{} {
	out := make([]interface{}, len(row))
	for i, c := range row {
		switch {
		case c.Kind() == sink.String:
			out[i] = c.Text()
		case math.IsNaN(c.Value()) || math.IsInf(c.Value(), 0):
			out[i] = nil
		default:
			out[i] = c.Value()
		}
	}
	return out
}

func encodePoints(pts []l1ions.Point3D) []byte {
	blob := make([]byte, len(pts)*24)
	for i, p := range pts {
		off := i * 24
		binary.LittleEndian.PutUint64(blob[off:], math.Float64bits(p.X))
		binary.LittleEndian.PutUint64(blob[off+8:], math.Float64bits(p.Y))
		binary.LittleEndian.PutUint64(blob[off+16:], math.Float64bits(p.Z))
	}
	return blob
}

func decodePoints(blob []byte) ([]l1ions.Point3D, error) {
	if len(blob)%24 != 0 {
		return nil, fmt.Errorf("point blob length %d is not a multiple of 24", len(blob))
	}
	pts := make([]l1ions.Point3D, len(blob)/24)
	for i := range pts {
		off := i * 24
		pts[i] = l1ions.Point3D{
			X: math.Float64frombits(binary.LittleEndian.Uint64(blob[off:])),
			Y: math.Float64frombits(binary.LittleEndian.Uint64(blob[off+8:])),
			Z: math.Float64frombits(binary.LittleEndian.Uint64(blob[off+16:])),
		}
	}
	return pts, nil
}

func encodeTriangles(tris [][3]int32) []byte {
	blob := make([]byte, len(tris)*12)
	for i, tri := range tris {
		for k, v := range tri {
			binary.LittleEndian.PutUint32(blob[i*12+k*4:], uint32(v))
		}
	}
	return blob
}

// Runs returns stored runs, newest first.
func (db *DB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT run_id, created_at, source, COALESCE(config_json, ''),
		       total_atoms, selected_atoms, clusters_kept, elapsed_ms
		FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.CreatedAt, &r.Source, &r.ConfigJSON,
			&r.TotalAtoms, &r.SelectedAtoms, &r.ClustersKept, &r.ElapsedMs); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LoadTables reads back the tables stored for runID in emission order.
// Null numbers load as NaN.
func (db *DB) LoadTables(ctx context.Context, runID string) ([]*sink.Table, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT table_idx, name, columns_json FROM result_tables WHERE run_id = ? ORDER BY table_idx`, runID)
	if err != nil {
		return nil, err
	}
	type header struct {
		idx  int
		name string
		cols []columnJSON
	}
	var headers []header
	for rows.Next() {
		var h header
		var colsJSON string
		if err := rows.Scan(&h.idx, &h.name, &colsJSON); err != nil {
			rows.Close()
			return nil, err
		}
		if err := json.Unmarshal([]byte(colsJSON), &h.cols); err != nil {
			rows.Close()
			return nil, fmt.Errorf("decode columns of %q: %w", h.name, err)
		}
		headers = append(headers, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tables := make([]*sink.Table, 0, len(headers))
	for _, h := range headers {
		cols := make([]sink.Column, len(h.cols))
		for i, c := range h.cols {
			if c.Kind == sink.String.String() {
				cols[i] = sink.StrCol(c.Name)
			} else {
				cols[i] = sink.NumCol(c.Name)
			}
		}
		t := sink.NewTable(h.name, cols...)
		if err := db.loadRows(ctx, runID, h.idx, t); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func (db *DB) loadRows(ctx context.Context, runID string, tableIdx int, t *sink.Table) error {
	rows, err := db.QueryContext(ctx,
		`SELECT cells_json FROM result_rows WHERE run_id = ? AND table_idx = ? ORDER BY row_idx`,
		runID, tableIdx)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cellsJSON string
		if err := rows.Scan(&cellsJSON); err != nil {
			return err
		}
		var raw []interface{}
		if err := json.Unmarshal([]byte(cellsJSON), &raw); err != nil {
			return fmt.Errorf("decode row of %q: %w", t.Name, err)
		}
		cells := make([]sink.Cell, len(raw))
		for i, v := range raw {
			switch v := v.(type) {
			case string:
				cells[i] = sink.Str(v)
			case float64:
				cells[i] = sink.Num(v)
			default:
				cells[i] = sink.Num(math.NaN())
			}
		}
		if err := t.Append(cells...); err != nil {
			return err
		}
	}
	return rows.Err()
}

// LoadPointCloud reads back one stored point cloud.
func (db *DB) LoadPointCloud(ctx context.Context, runID, name string) (sink.PointCloud, error) {
	var (
		pc    sink.PointCloud
		color string
		blob  []byte
	)
	err := db.QueryRowContext(ctx,
		`SELECT name, grp, color, points_blob FROM point_clouds WHERE run_id = ? AND name = ?`,
		runID, name,
	).Scan(&pc.Name, &pc.Group, &color, &blob)
	if err != nil {
		return sink.PointCloud{}, err
	}
	pc.Color, err = sink.ParseHex(color)
	if err != nil {
		return sink.PointCloud{}, err
	}
	pc.Points, err = decodePoints(blob)
	if err != nil {
		return sink.PointCloud{}, err
	}
	return pc, nil
}

// LoadTexts reads back the text blocks stored for runID.
func (db *DB) LoadTexts(ctx context.Context, runID string) ([]sink.TextBlock, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT title, body FROM text_blocks WHERE run_id = ? ORDER BY block_idx`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []sink.TextBlock
	for rows.Next() {
		var b sink.TextBlock
		if err := rows.Scan(&b.Title, &b.Body); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}
