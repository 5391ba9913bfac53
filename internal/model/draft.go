package model

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// CaseDraft holds the user-editable fields of a case; id, status and
// creation time are owned by the store.
type CaseDraft struct {
	Number          string     `validate:"required"`
	Crimes          StringList `validate:"-"`
	Measures        StringList `validate:"-"`
	ReviewDeadline  string     `validate:"required,datetime=2006-01-02"`
	MaxDeadline     string     `validate:"required,datetime=2006-01-02"`
	Defendants      StringList `validate:"-"`
	Comments        string     `validate:"-"`
	Units           StringList `validate:"-"`
	Prosecutors     StringList `validate:"-"`
	Judges          StringList `validate:"-"`
	ProsecutorPhone string     `validate:"-"`
	Documents       StringList `validate:"-"`
}

// Validate checks required fields and date layout.
func (d CaseDraft) Validate() error {
	return validate.Struct(d)
}

// DraftOf extracts the editable fields of an existing case. Deadlines stored
// as full timestamps are reduced to their calendar date.
func DraftOf(c Case) CaseDraft {
	c = c.Clone()
	return CaseDraft{
		Number:          c.Number,
		Crimes:          c.Crimes,
		Measures:        c.Measures,
		ReviewDeadline:  calendarDate(c.ReviewDeadline),
		MaxDeadline:     calendarDate(c.MaxDeadline),
		Defendants:      c.Defendants,
		Comments:        c.Comments,
		Units:           c.Units,
		Prosecutors:     c.Prosecutors,
		Judges:          c.Judges,
		ProsecutorPhone: c.ProsecutorPhone,
		Documents:       c.Documents,
	}
}

// ApplyTo copies the draft onto c, keeping identity, status and creation time.
func (d CaseDraft) ApplyTo(c Case) Case {
	c.Number = d.Number
	c.Crimes = d.Crimes.Clone()
	c.Measures = d.Measures.Clone()
	c.ReviewDeadline = d.ReviewDeadline
	c.MaxDeadline = d.MaxDeadline
	c.Defendants = d.Defendants.Clone()
	c.Comments = d.Comments
	c.Units = d.Units.Clone()
	c.Prosecutors = d.Prosecutors.Clone()
	c.Judges = d.Judges.Clone()
	c.ProsecutorPhone = d.ProsecutorPhone
	c.Documents = d.Documents.Clone()
	return c
}

func calendarDate(s string) string {
	if t, ok := ParseDate(s); ok {
		return t.Format(DateLayout)
	}
	return s
}
