package storefront

import (
	"strings"

	"github.com/go-faster/errors"
)

// TestimonialKey is the fixed snapshot key for customer testimonials, named
// after the key the original site used in localStorage.
const TestimonialKey = "temoignages"

// MaxTestimonialLen caps the message length, in characters.
const MaxTestimonialLen = 100

// Testimonial validation errors.
var (
	ErrMissingFields  = errors.New("veuillez remplir tous les champs")
	ErrMessageTooLong = errors.New("commentaire trop long")
)

// Testimonial is one customer comment. Entries are append-only; there is no
// removal operation.
type Testimonial struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Snapshots persists whole snapshots under fixed keys. It matches the
// cart package's interface so one store serves both.
type Snapshots interface {
	Load(key string, v any) (found bool, err error)
	Save(key string, v any) error
}

// TestimonialBook holds the testimonial list and persists it after every
// addition.
type TestimonialBook struct {
	entries   []Testimonial
	snapshots Snapshots
}

// NewTestimonialBook restores the book from its snapshot, starting empty when
// none exists.
func NewTestimonialBook(snapshots Snapshots) (*TestimonialBook, error) {
	b := &TestimonialBook{snapshots: snapshots}
	if _, err := snapshots.Load(TestimonialKey, &b.entries); err != nil {
		return nil, errors.Wrap(err, "restore testimonials")
	}
	return b, nil
}

// Add appends a testimonial. Both fields are trimmed and required, and the
// message is capped at MaxTestimonialLen characters (counted as runes, as a
// text input would).
func (b *TestimonialBook) Add(name, message string) error {
	name = strings.TrimSpace(name)
	message = strings.TrimSpace(message)
	if name == "" || message == "" {
		return ErrMissingFields
	}
	if len([]rune(message)) > MaxTestimonialLen {
		return errors.Wrapf(ErrMessageTooLong, "max %d caractères", MaxTestimonialLen)
	}

	b.entries = append(b.entries, Testimonial{Name: name, Message: message})
	if err := b.snapshots.Save(TestimonialKey, b.entries); err != nil {
		return errors.Wrap(err, "persist testimonials")
	}
	return nil
}

// Entries returns a copy of all testimonials in insertion order.
func (b *TestimonialBook) Entries() []Testimonial {
	out := make([]Testimonial, len(b.entries))
	copy(out, b.entries)
	return out
}
