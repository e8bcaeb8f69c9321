package grid

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the serialisable form of a Grid. In JSON absent cells are written as null.
type Snapshot struct {
	Data [][]float64
}

type snapshotJSON struct {
	Data [][]*float64 `json:"data"`
}

// MarshalJSON encodes the snapshot as {"data": [[...], ...]}.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{Data: make([][]*float64, len(s.Data))}
	for i, row := range s.Data {
		out.Data[i] = make([]*float64, len(row))
		for j, v := range row {
			if IsAbsent(v) {
				continue
			}
			v := v
			out.Data[i][j] = &v
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the format written by MarshalJSON.
func (s *Snapshot) UnmarshalJSON(b []byte) error {
	var in snapshotJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	s.Data = make([][]float64, len(in.Data))
	for i, row := range in.Data {
		s.Data[i] = make([]float64, len(row))
		for j, v := range row {
			if v == nil {
				s.Data[i][j] = Absent
				continue
			}
			s.Data[i][j] = *v
		}
	}
	return nil
}

// Equal reports whether both snapshots hold the same cells. Absent equals absent.
func (s Snapshot) Equal(other Snapshot) bool {
	a, errA := FromSnapshot(s)
	b, errB := FromSnapshot(other)
	if errA != nil || errB != nil {
		return false
	}
	return a.Equal(b)
}

// Snapshot returns a copy of the grid contents.
func (g *Grid) Snapshot() Snapshot {
	data := make([][]float64, g.rows)
	for i := range data {
		data[i], _ = g.Row(i)
	}
	return Snapshot{Data: data}
}

// FromSnapshot rebuilds a grid from its snapshot.
func FromSnapshot(s Snapshot) (*Grid, error) {
	g, err := FromRows(s.Data)
	if err != nil {
		return nil, fmt.Errorf("restore grid: %w", err)
	}
	return g, nil
}
