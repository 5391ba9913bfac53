package model

import (
	"encoding/json"
	"time"
)

// Snapshot is the full persisted dataset. Its JSON shape is shared by the
// local slot and the downloadable backup file.
type Snapshot struct {
	Cases       []Case    `json:"processos"`
	Crimes      []RefItem `json:"crimes"`
	Units       []RefItem `json:"diaps"`
	Measures    []RefItem `json:"medidas"`
	Prosecutors []Person  `json:"procuradores"`
	Defendants  []Person  `json:"arguidos"`
	Judges      []Person  `json:"juizes"`
	LastUpdate  int64     `json:"lastUpdate"` // epoch milliseconds
}

// Normalize replaces absent collections with empty ones.
func (s *Snapshot) Normalize() {
	if s.Cases == nil {
		s.Cases = []Case{}
	}
	if s.Crimes == nil {
		s.Crimes = []RefItem{}
	}
	if s.Units == nil {
		s.Units = []RefItem{}
	}
	if s.Measures == nil {
		s.Measures = []RefItem{}
	}
	if s.Prosecutors == nil {
		s.Prosecutors = []Person{}
	}
	if s.Defendants == nil {
		s.Defendants = []Person{}
	}
	if s.Judges == nil {
		s.Judges = []Person{}
	}
}

// DecodeSnapshot parses and normalizes a snapshot document.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, err
	}
	s.Normalize()
	return s, nil
}

// Encode writes the snapshot as compact JSON.
func (s Snapshot) Encode() ([]byte, error) {
	s.Normalize()
	return json.Marshal(s)
}

// EncodeIndent writes the snapshot with human-readable indentation.
func (s Snapshot) EncodeIndent() ([]byte, error) {
	s.Normalize()
	return json.MarshalIndent(s, "", "  ")
}

// Updated returns LastUpdate as a time, zero when never set.
func (s Snapshot) Updated() time.Time {
	if s.LastUpdate == 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.LastUpdate)
}
