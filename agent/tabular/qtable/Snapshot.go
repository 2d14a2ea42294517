package qtable

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/intdogs/roombarl/environment"
)

// snapshot is the exchange format of a table. Each entry of OgMap is a
// [key, value] pair where key is the JSON encoding of an Index. Keys
// lists one Index per written position.
type snapshot struct {
	OgMap []entry `json:"_ogMap"`
	Keys  []Index `json:"_keys"`
}

type entry struct {
	Key   string
	Value float64
}

// MarshalJSON encodes the entry as a two element array. Non-finite
// values are encoded as null.
func (e entry) MarshalJSON() ([]byte, error) {
	var v any
	if !math.IsNaN(e.Value) && !math.IsInf(e.Value, 0) {
		v = e.Value
	}
	return json.Marshal([]any{e.Key, v})
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (e *entry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("entry: expected [key, value], got %d elements",
			len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.Key); err != nil {
		return fmt.Errorf("entry: key: %w", err)
	}

	var v *float64
	if err := json.Unmarshal(raw[1], &v); err != nil {
		return fmt.Errorf("entry: value: %w", err)
	}
	e.Value = math.NaN()
	if v != nil {
		e.Value = *v
	}
	return nil
}

// Key returns the string form of an Index used in snapshots
func (i Index) Key() string {
	b, _ := json.Marshal(i)
	return string(b)
}

// MarshalJSON implements the json.Marshaler interface
func (q *QTable) MarshalJSON() ([]byte, error) {
	s := snapshot{
		OgMap: make([]entry, len(q.order)),
		Keys:  append([]Index{}, q.keys...),
	}
	for n, i := range q.order {
		idx := q.unpack(i)
		v, _ := q.Get(idx.Pos, idx.Action)
		s.OgMap[n] = entry{idx.Key(), v}
	}
	return json.Marshal(s)
}

// UnmarshalJSON implements the json.Unmarshaler interface. The table
// must have been created with New so that its grid is known. Any
// existing entries are discarded; pairs missing from the snapshot are
// left unwritten.
func (q *QTable) UnmarshalJSON(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshalJSON: %w", err)
	}
	if q.spec.NumCells() == 0 {
		return fmt.Errorf("unmarshalJSON: table has no grid")
	}

	fresh := New(q.spec)
	for _, e := range s.OgMap {
		var idx Index
		if err := json.Unmarshal([]byte(e.Key), &idx); err != nil {
			return fmt.Errorf("unmarshalJSON: key %q: %w", e.Key, err)
		}
		if err := fresh.Set(idx.Pos, idx.Action, e.Value); err != nil {
			return fmt.Errorf("unmarshalJSON: %w", err)
		}
	}
	fresh.orderKeys(s.Keys)

	*q = *fresh
	return nil
}

// orderKeys reorders the position index to follow keys. Positions not
// named in keys keep their relative order after those that are.
func (q *QTable) orderKeys(keys []Index) {
	if len(keys) == 0 {
		return
	}

	ordered := make([]Index, 0, len(q.keys))
	seen := make(map[environment.Position]bool, len(q.keys))
	for _, k := range keys {
		i, ok := q.keyIndex[k.Pos]
		if !ok || seen[k.Pos] {
			continue
		}
		seen[k.Pos] = true
		ordered = append(ordered, q.keys[i])
	}
	for _, k := range q.keys {
		if !seen[k.Pos] {
			ordered = append(ordered, k)
		}
	}

	q.keys = ordered
	for i, k := range q.keys {
		q.keyIndex[k.Pos] = i
	}
}

// gobTable is the gob wire form of a QTable
type gobTable struct {
	Spec     environment.Spec
	Snapshot []byte
}

// GobEncode implements the gob.GobEncoder interface
func (q *QTable) GobEncode() ([]byte, error) {
	snap, err := q.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("gobEncode: %w", err)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobTable{q.spec, snap}); err != nil {
		return nil, fmt.Errorf("gobEncode: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (q *QTable) GobDecode(data []byte) error {
	var t gobTable
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&t); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	*q = *New(t.Spec)
	return q.UnmarshalJSON(t.Snapshot)
}

// Save writes the table to filename, as JSON if the file has a .json
// extension and as gob otherwise
func (q *QTable) Save(filename string) error {
	var (
		data []byte
		err  error
	)
	if filepath.Ext(filename) == ".json" {
		data, err = json.Marshal(q)
	} else {
		data, err = q.GobEncode()
	}
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

// Load reads a table written by Save. JSON snapshots do not record the
// grid, so spec gives the grid they are loaded onto.
func Load(filename string, spec environment.Spec) (*QTable, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	q := New(spec)
	if filepath.Ext(filename) == ".json" {
		err = q.UnmarshalJSON(data)
	} else {
		err = q.GobDecode(data)
	}
	if err != nil {
		return nil, fmt.Errorf("load %v: %w", filename, err)
	}
	return q, nil
}
