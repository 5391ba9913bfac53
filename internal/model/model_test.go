package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListDecoding(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want StringList
	}{
		{"array", `["a","b"]`, StringList{"a", "b"}},
		{"bare string", `"Roubo"`, StringList{"Roubo"}},
		{"empty string", `""`, StringList{}},
		{"null", `null`, StringList{}},
		{"null elements", `["a",null,"b"]`, StringList{"a", "b"}},
		{"empty array", `[]`, StringList{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got StringList
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}

	var bad StringList
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestStringListOps(t *testing.T) {
	l := StringList{"a", "b"}

	assert.Equal(t, StringList{"a"}, l.Toggle("b"))
	assert.Equal(t, StringList{"a", "b", "c"}, l.Toggle("c"))
	assert.Equal(t, StringList{"a", "b"}, l, "receiver is untouched")
	assert.Equal(t, StringList{"a", "b", "c"}, l.Union("b", "c", ""))

	out, err := json.Marshal(StringList(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))
}

func TestCaseLegacyShapes(t *testing.T) {
	raw := `{
		"id": "1",
		"numeroProcesso": "12/24.0",
		"crime": "Roubo",
		"arguidos": ["Ana Silva", null],
		"diap": "",
		"prazoRevisao": "2025-03-01",
		"prazoMaximo": "2025-06-01",
		"status": "arquivado",
		"createdAt": 1700000000000
	}`
	var c Case
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	assert.Equal(t, StringList{"Roubo"}, c.Crimes)
	assert.Equal(t, StringList{"Ana Silva"}, c.Defendants)
	assert.Equal(t, StringList{}, c.Units)
	assert.Nil(t, c.Documents)
	assert.Equal(t, StatusPending, c.Status)

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"documentosRelacionados":[]`)
	assert.Contains(t, string(out), `"crime":["Roubo"]`)
}

func TestMinDeadline(t *testing.T) {
	c := Case{ReviewDeadline: "2025-03-10", MaxDeadline: "2025-03-05"}
	d, ok := c.MinDeadline()
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC), d)

	c = Case{ReviewDeadline: "garbage", MaxDeadline: "2025-03-05"}
	d, ok = c.MinDeadline()
	require.True(t, ok)
	assert.Equal(t, 5, d.Day())

	_, ok = Case{}.MinDeadline()
	assert.False(t, ok)
}

func TestParseDate(t *testing.T) {
	d, ok := ParseDate("2025-01-31T10:00:00.000Z")
	require.True(t, ok)
	assert.Equal(t, 31, d.Day())

	_, ok = ParseDate("31/01/2025")
	assert.False(t, ok)

	assert.Equal(t, "31/01/2025", FormatDate("2025-01-31"))
	assert.Equal(t, "n/a", FormatDate("n/a"))
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("findos")
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, s)
	assert.Equal(t, StatusPending, s.Toggled())

	_, err = ParseStatus("archived")
	assert.Error(t, err)
}

func TestCloneIsDeep(t *testing.T) {
	c := Case{Crimes: StringList{"a"}, Documents: StringList{"x.pdf"}}
	cp := c.Clone()
	cp.Crimes[0] = "b"
	cp.Documents[0] = "y.pdf"
	assert.Equal(t, "a", c.Crimes[0])
	assert.Equal(t, "x.pdf", c.Documents[0])
}

func TestSnapshotNormalize(t *testing.T) {
	s, err := DecodeSnapshot([]byte(`{"processos":[{"id":"1","crime":"Furto"}]}`))
	require.NoError(t, err)
	require.Len(t, s.Cases, 1)
	assert.NotNil(t, s.Crimes)
	assert.NotNil(t, s.Judges)
	assert.True(t, s.Updated().IsZero())

	out, err := s.EncodeIndent()
	require.NoError(t, err)
	assert.Contains(t, string(out), "\n  \"processos\": [")
	assert.Contains(t, string(out), `"juizes": []`)

	_, err = DecodeSnapshot([]byte(`{"processos": 3}`))
	assert.Error(t, err)
}

func TestCaseDraftValidation(t *testing.T) {
	d := CaseDraft{Number: "1/24", ReviewDeadline: "2025-01-01", MaxDeadline: "2025-06-01"}
	require.NoError(t, d.Validate())

	d.Number = ""
	assert.Error(t, d.Validate())

	d.Number = "1/24"
	d.MaxDeadline = "01/06/2025"
	assert.Error(t, d.Validate())
}

func TestDraftRoundTrip(t *testing.T) {
	orig := Case{ID: "x", Number: "1", Crimes: StringList{"a"}, Status: StatusClosed, CreatedAt: 5}
	d := DraftOf(orig)
	d.Number = "2"
	d.Crimes = append(d.Crimes, "b")

	out := d.ApplyTo(orig)
	assert.Equal(t, "x", out.ID)
	assert.Equal(t, StatusClosed, out.Status)
	assert.Equal(t, int64(5), out.CreatedAt)
	assert.Equal(t, "2", out.Number)
	assert.Equal(t, StringList{"a", "b"}, out.Crimes)
	assert.Equal(t, StringList{"a"}, orig.Crimes)
}

func TestDraftOfLegacyTimestamps(t *testing.T) {
	c := Case{Number: "1", ReviewDeadline: "2025-01-01T00:00:00.000Z", MaxDeadline: "2025-06-01T00:00:00Z"}
	d := DraftOf(c)
	assert.Equal(t, "2025-01-01", d.ReviewDeadline)
	assert.Equal(t, "2025-06-01", d.MaxDeadline)
	require.NoError(t, d.Validate())

	d = DraftOf(Case{Number: "1", ReviewDeadline: "ontem", MaxDeadline: "2025-06-01"})
	assert.Equal(t, "ontem", d.ReviewDeadline)
	assert.Error(t, d.Validate())
}

func TestPersonSecondary(t *testing.T) {
	p := Person{Name: "Dr. A", Email: "a@mp.pt", Phone: "21"}
	assert.Equal(t, "a@mp.pt | 21", p.Secondary())
	assert.True(t, KindJudges.IsPerson())
	assert.False(t, KindUnits.IsPerson())

	k, err := ParseKind("juiz")
	require.NoError(t, err)
	assert.Equal(t, KindJudges, k)
}
