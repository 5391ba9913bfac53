package model

import (
	"fmt"
	"strings"
)

// Kind names one reference collection.
type Kind string

const (
	KindCrimes      Kind = "crimes"
	KindUnits       Kind = "diaps"
	KindMeasures    Kind = "medidas"
	KindProsecutors Kind = "procuradores"
	KindJudges      Kind = "juizes"
	KindDefendants  Kind = "arguidos"
)

// Kinds lists every reference collection in display order.
var Kinds = []Kind{KindCrimes, KindUnits, KindMeasures, KindProsecutors, KindJudges, KindDefendants}

// ParseKind resolves a collection name, accepting singular forms.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "crimes", "crime":
		return KindCrimes, nil
	case "diaps", "diap", "units", "unit":
		return KindUnits, nil
	case "medidas", "medida", "measures", "measure":
		return KindMeasures, nil
	case "procuradores", "procurador", "prosecutors", "prosecutor":
		return KindProsecutors, nil
	case "juizes", "juiz", "judges", "judge":
		return KindJudges, nil
	case "arguidos", "arguido", "defendants", "defendant":
		return KindDefendants, nil
	}
	return "", fmt.Errorf("unknown reference kind %q", s)
}

// IsPerson reports whether entries of this kind are people (nome + contacts)
// rather than plain labelled items (valor).
func (k Kind) IsPerson() bool {
	return k == KindProsecutors || k == KindJudges || k == KindDefendants
}

// Entry is the common view over reference entities. Cases reference entries
// by label, never by id.
type Entry interface {
	EntryID() string
	Label() string
	Secondary() string
}

// RefItem is a labelled lookup value: crimes, measures and units.
type RefItem struct {
	ID    string `json:"id"`
	Value string `json:"valor"`
	Phone string `json:"telefone,omitempty"`
}

func (r RefItem) EntryID() string   { return r.ID }
func (r RefItem) Label() string     { return r.Value }
func (r RefItem) Secondary() string { return r.Phone }

// Person is a prosecutor, judge or defendant.
type Person struct {
	ID    string `json:"id"`
	Name  string `json:"nome"`
	Phone string `json:"telefone,omitempty"`
	Email string `json:"email,omitempty"`
	TaxID string `json:"nif,omitempty"`
}

func (p Person) EntryID() string { return p.ID }
func (p Person) Label() string   { return p.Name }

// Secondary joins the contact fields that are set.
func (p Person) Secondary() string {
	var parts []string
	for _, v := range []string{p.Email, p.Phone, p.TaxID} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " | ")
}

// EntryFields carries the editable fields of any reference entity.
type EntryFields struct {
	Label string
	Phone string
	Email string
	TaxID string
}
