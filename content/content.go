// Package content defines the portfolio record types (posts, photos,
// publications) and the Store interface every storage backend implements.
package content

import (
	"strings"
	"time"
)

// Collection names shared by every backend. They match the document store
// layout the site has always used, so existing data keeps working.
const (
	PostsCollection        = "posts"
	PhotosCollection       = "photos"
	PublicationsCollection = "publications"
)

// DateLayout is the layout of Post.Date.
const DateLayout = "2006-01-02"

// Post is a blog entry. Body is markdown.
type Post struct {
	ID        string    `firestore:"-" bson:"-" yaml:"id"`
	Title     string    `firestore:"title" bson:"title" yaml:"title"`
	Date      string    `firestore:"date" bson:"date" yaml:"date"`
	Excerpt   string    `firestore:"excerpt" bson:"excerpt" yaml:"excerpt"`
	Markdown  string    `firestore:"markdownContent" bson:"markdownContent" yaml:"markdown"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp" bson:"createdAt" yaml:"-"`
}

// Validate reports the required fields that are empty.
func (p Post) Validate() error {
	v := &ValidationError{Kind: "post"}
	v.require("title", p.Title)
	v.require("date", p.Date)
	v.require("excerpt", p.Excerpt)
	v.require("markdown", p.Markdown)
	// Dates are stored and sorted as written, so surrounding spaces are
	// malformed too.
	if strings.TrimSpace(p.Date) != "" {
		if _, err := time.Parse(DateLayout, p.Date); err != nil {
			v.Invalid = append(v.Invalid, "date")
		}
	}
	return v.err()
}

// Photo is a gallery entry. Src is either a remote URL or a data URI.
type Photo struct {
	ID           string    `firestore:"-" bson:"-" yaml:"id"`
	Src          string    `firestore:"src" bson:"src" yaml:"src"`
	Description  string    `firestore:"description" bson:"description" yaml:"description"`
	OriginalName string    `firestore:"originalName,omitempty" bson:"originalName,omitempty" yaml:"originalName,omitempty"`
	CreatedAt    time.Time `firestore:"createdAt,serverTimestamp" bson:"createdAt" yaml:"-"`
}

// Validate reports the required fields that are empty.
func (p Photo) Validate() error {
	v := &ValidationError{Kind: "photo"}
	v.require("src", p.Src)
	v.require("description", p.Description)
	return v.err()
}

// Publication is an entry in the publications listing.
type Publication struct {
	ID        string    `firestore:"-" bson:"-" yaml:"id"`
	Title     string    `firestore:"title" bson:"title" yaml:"title"`
	Authors   string    `firestore:"authors" bson:"authors" yaml:"authors"`
	Venue     string    `firestore:"venue" bson:"venue" yaml:"venue"`
	Year      int       `firestore:"year" bson:"year" yaml:"year"`
	Abstract  string    `firestore:"abstract,omitempty" bson:"abstract,omitempty" yaml:"abstract,omitempty"`
	PDFURL    string    `firestore:"pdfUrl,omitempty" bson:"pdfUrl,omitempty" yaml:"pdfUrl,omitempty"`
	DOIURL    string    `firestore:"doiUrl,omitempty" bson:"doiUrl,omitempty" yaml:"doiUrl,omitempty"`
	CodeURL   string    `firestore:"codeUrl,omitempty" bson:"codeUrl,omitempty" yaml:"codeUrl,omitempty"`
	CreatedAt time.Time `firestore:"createdAt,serverTimestamp" bson:"createdAt" yaml:"-"`
}

// Validate reports the required fields that are empty.
func (p Publication) Validate() error {
	v := &ValidationError{Kind: "publication"}
	v.require("title", p.Title)
	v.require("authors", p.Authors)
	v.require("venue", p.Venue)
	if p.Year <= 0 {
		v.Missing = append(v.Missing, "year")
	}
	return v.err()
}

// HasLinks reports whether any of the optional links are set.
func (p Publication) HasLinks() bool {
	return p.PDFURL != "" || p.DOIURL != "" || p.CodeURL != ""
}

// ValidationError lists the fields of a record that failed validation.
type ValidationError struct {
	Kind    string
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid ")
	b.WriteString(e.Kind)
	if len(e.Missing) > 0 {
		b.WriteString(": missing ")
		b.WriteString(strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		b.WriteString(": malformed ")
		b.WriteString(strings.Join(e.Invalid, ", "))
	}
	return b.String()
}

func (e *ValidationError) require(field, value string) {
	if strings.TrimSpace(value) == "" {
		e.Missing = append(e.Missing, field)
	}
}

func (e *ValidationError) err() error {
	if len(e.Missing) == 0 && len(e.Invalid) == 0 {
		return nil
	}
	return e
}
