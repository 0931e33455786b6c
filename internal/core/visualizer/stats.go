package visualizer

import "sort"

// Stats are running counters since construction. Tracked and Primitives are
// current values.
type Stats struct {
	Frames           uint64 `json:"frames"`
	Tracked          int    `json:"tracked"`
	Primitives       int    `json:"primitives"`
	Created          uint64 `json:"created"`
	Destroyed        uint64 `json:"destroyed"`
	AttributeWrites  uint64 `json:"attribute_writes"`
	SuppressedWrites uint64 `json:"suppressed_writes"`
	Errors           uint64 `json:"errors"`
	FactoryErrors    uint64 `json:"factory_errors"`
}

// EntityState is the inspector view of one tracked entity.
type EntityState struct {
	ID           string `json:"id"`
	Materialized bool   `json:"materialized"`
	Show         bool   `json:"show"`
	ActiveIndex  int    `json:"active_index"`
	Levels       int    `json:"levels"`
}

func (v *Visualizer) Stats() Stats {
	s := v.stats
	s.Tracked = len(v.tracked)
	s.Primitives = 0
	for _, e := range v.tracked {
		if e.primitive != nil {
			s.Primitives++
		}
	}
	return s
}

// Snapshot lists every tracked entity ordered by id.
func (v *Visualizer) Snapshot() []EntityState {
	out := make([]EntityState, 0, len(v.tracked))
	for id, e := range v.tracked {
		st := EntityState{ID: string(id), ActiveIndex: -1}
		if p := e.primitive; p != nil {
			st.Materialized = true
			st.Show = p.Show()
			st.ActiveIndex = p.ActiveIndex()
			st.Levels = p.Len()
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
