package datalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/intdogs/roombarl/environment"
	"github.com/intdogs/roombarl/trajectory"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// Row is the parquet form of a trajectory. Global state snapshots are
// stored as JSON.
type Row struct {
	ID      string `parquet:"id"`
	Session string `parquet:"session,dict"`
	AgentID int32  `parquet:"agent_id"`
	Kind    string `parquet:"kind,dict"`

	StartX *int32 `parquet:"st_x,optional"`
	StartY *int32 `parquet:"st_y,optional"`
	EndX   *int32 `parquet:"end_x,optional"`
	EndY   *int32 `parquet:"end_y,optional"`
	TryX   *int32 `parquet:"try_x,optional"`
	TryY   *int32 `parquet:"try_y,optional"`

	WasDrag   bool     `parquet:"was_drag"`
	Cancelled bool     `parquet:"cancelled"`
	GotPellet bool     `parquet:"got_pellet"`
	Feedback  *float64 `parquet:"feedback,optional"`

	StartTimeMs int64  `parquet:"st_time_ms"`
	EndTimeMs   *int64 `parquet:"end_time_ms,optional"`

	StartState []byte `parquet:"start_state,optional,zstd"`
	CurState   []byte `parquet:"cur_state,optional,zstd"`
}

// WriteParquet writes every trajectory in the log to outPath, tagging
// each row with session
func (l *Log) WriteParquet(outPath, session string) error {
	trajs := l.All()
	rows := make([]Row, 0, len(trajs))
	for _, t := range trajs {
		row, err := toRow(t, session)
		if err != nil {
			return fmt.Errorf("writeParquet: %w", err)
		}
		rows = append(rows, row)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Write to a temp file and rename atomically.
	tmpPath := outPath + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, rows,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "trajectory_v1"),
	); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// ReadParquet reads the trajectories written by WriteParquet
func ReadParquet(path string) ([]*trajectory.Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("readParquet: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("readParquet: %w", err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("readParquet: %w", err)
	}

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	rows := make([]Row, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("readParquet: %w", err)
	}

	trajs := make([]*trajectory.Trajectory, 0, n)
	for _, row := range rows[:n] {
		t, err := fromRow(row)
		if err != nil {
			return nil, fmt.Errorf("readParquet: %w", err)
		}
		trajs = append(trajs, t)
	}
	return trajs, nil
}

// Load adds trajectories to the log in order
func (l *Log) Load(trajs []*trajectory.Trajectory) error {
	for _, t := range trajs {
		if err := l.Add(t); err != nil {
			return fmt.Errorf("load: %w", err)
		}
	}
	return nil
}

func toRow(t *trajectory.Trajectory, session string) (Row, error) {
	row := Row{
		ID:          t.ID.String(),
		Session:     session,
		AgentID:     int32(t.AgentID),
		Kind:        t.Kind().String(),
		WasDrag:     t.WasDrag,
		Cancelled:   t.Cancelled,
		GotPellet:   t.GotPellet,
		Feedback:    t.Feedback,
		StartTimeMs: t.StartTime.UnixMilli(),
	}
	row.StartX, row.StartY = coords(t.Start)
	row.EndX, row.EndY = coords(t.End)
	row.TryX, row.TryY = coords(t.Try)
	if t.EndTime != nil {
		row.EndTimeMs = trajectory.Ptr(t.EndTime.UnixMilli())
	}

	var err error
	if row.StartState, err = encodeState(t.StartState); err != nil {
		return Row{}, err
	}
	if row.CurState, err = encodeState(t.CurState); err != nil {
		return Row{}, err
	}
	return row, nil
}

func fromRow(row Row) (*trajectory.Trajectory, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return nil, fmt.Errorf("row id: %w", err)
	}

	t := &trajectory.Trajectory{
		ID:        id,
		AgentID:   int(row.AgentID),
		Start:     position(row.StartX, row.StartY),
		End:       position(row.EndX, row.EndY),
		Try:       position(row.TryX, row.TryY),
		WasDrag:   row.WasDrag,
		Cancelled: row.Cancelled,
		GotPellet: row.GotPellet,
		Feedback:  row.Feedback,
		StartTime: time.UnixMilli(row.StartTimeMs).UTC(),
	}
	if row.EndTimeMs != nil {
		t.EndTime = trajectory.Ptr(time.UnixMilli(*row.EndTimeMs).UTC())
	}

	if t.StartState, err = decodeState(row.StartState); err != nil {
		return nil, err
	}
	if t.CurState, err = decodeState(row.CurState); err != nil {
		return nil, err
	}
	return t, nil
}

func coords(p *environment.Position) (x, y *int32) {
	if p == nil {
		return nil, nil
	}
	return trajectory.Ptr(int32(p.X)), trajectory.Ptr(int32(p.Y))
}

func position(x, y *int32) *environment.Position {
	if x == nil || y == nil {
		return nil
	}
	return &environment.Position{X: int(*x), Y: int(*y)}
}

func encodeState(s *trajectory.GlobalState) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return b, nil
}

func decodeState(b []byte) (*trajectory.GlobalState, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var s trajectory.GlobalState
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &s, nil
}
