// Package model defines the document model and typed entity views.
//
// Storage actors hold schemaless documents; merge-on-put keeps unspecified
// fields intact. The typed views exist for the pieces of each entity the
// coordinator and aggregator actually reason about.
package model

import (
	"time"
)

// Kind identifies an entity family.
type Kind string

// Entity kinds.
const (
	KindTrail        Kind = "trails"
	KindRegistration Kind = "registrations"
	KindTemplate     Kind = "templates"
)

// Document field names shared across entity kinds.
const (
	FieldID        = "id"
	FieldCreatedAt = "createdAt"
)

// Document is a schemaless entity document.
type Document map[string]any

// Merge returns a copy of d with every field from partial overwriting the
// corresponding field in d. Fields absent from partial are retained.
func (d Document) Merge(partial Document) Document {
	out := d.Clone()
	for k, v := range partial {
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy of the document. Nested values are shared;
// callers must not mutate them in place.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Str reads a string field, returning "" when absent or mistyped.
func (d Document) Str(key string) string {
	s, _ := d[key].(string)
	return s
}

// Num reads a numeric field. JSON decoding produces float64; direct writes
// may store int, so both are accepted.
func (d Document) Num(key string) float64 {
	switch v := d[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Bool reads a boolean field, returning false when absent or mistyped.
func (d Document) Bool(key string) bool {
	b, _ := d[key].(bool)
	return b
}

// CreatedAt parses the creation timestamp, returning the zero time when
// the document has never been written.
func (d Document) CreatedAt() time.Time {
	t, err := time.Parse(time.RFC3339, d.Str(FieldCreatedAt))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Trail is the typed view of a trail document.
type Trail struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Location   string    `json:"location,omitempty"`
	DistanceKM float64   `json:"distanceKm,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TrailFromDocument builds the typed view from a stored document.
func TrailFromDocument(doc Document) Trail {
	return Trail{
		ID:         doc.Str(FieldID),
		Name:       doc.Str("name"),
		Location:   doc.Str("location"),
		DistanceKM: doc.Num("distanceKm"),
		Active:     doc.Bool("active"),
		CreatedAt:  doc.CreatedAt(),
	}
}

// Registration is the typed view of a registration document.
type Registration struct {
	ID         string    `json:"id"`
	TrailID    string    `json:"trailId"`
	RiderName  string    `json:"riderName"`
	Email      string    `json:"email,omitempty"`
	HorseCount int       `json:"horseCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RegistrationFromDocument builds the typed view from a stored document.
func RegistrationFromDocument(doc Document) Registration {
	return Registration{
		ID:         doc.Str(FieldID),
		TrailID:    doc.Str("trailId"),
		RiderName:  doc.Str("riderName"),
		Email:      doc.Str("email"),
		HorseCount: int(doc.Num("horseCount")),
		CreatedAt:  doc.CreatedAt(),
	}
}

// Template is the typed view of a notification template document.
type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TemplateFromDocument builds the typed view from a stored document.
func TemplateFromDocument(doc Document) Template {
	return Template{
		ID:        doc.Str(FieldID),
		Name:      doc.Str("name"),
		Subject:   doc.Str("subject"),
		Body:      doc.Str("body"),
		CreatedAt: doc.CreatedAt(),
	}
}
