package domain

import "slices"

// Document is the aggregate root: the complete users and parts collections,
// loaded and persisted as a single value.
type Document struct {
	Users []User `json:"users" bson:"users"`
	Parts []Part `json:"parts" bson:"parts"`
}

// EmptyDocument returns a document with non-nil, empty collections.
func EmptyDocument() *Document {
	return &Document{Users: []User{}, Parts: []Part{}}
}

// Normalize replaces nil collections with empty ones so the document always
// serialises as {"users":[],"parts":[]}.
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Parts == nil {
		d.Parts = []Part{}
	}
}

// Clone returns a deep copy so callers can mutate it without touching the source.
func (d *Document) Clone() *Document {
	out := &Document{
		Users: append([]User{}, d.Users...),
		Parts: make([]Part, len(d.Parts)),
	}
	for i, p := range d.Parts {
		out.Parts[i] = p.clone()
	}
	return out
}

func (p Part) clone() Part {
	c := p
	if p.Socket != nil {
		s := *p.Socket
		c.Socket = &s
	}
	if p.Thumbnail != nil {
		t := *p.Thumbnail
		c.Thumbnail = &t
	}
	if p.UpdatedAt != nil {
		u := *p.UpdatedAt
		c.UpdatedAt = &u
	}
	c.Hashtags = slices.Clone(p.Hashtags)
	c.Previews = slices.Clone(p.Previews)
	c.ExtraDetails = slices.Clone(p.ExtraDetails)
	return c
}

// FindUser returns the user with the given id.
func (d *Document) FindUser(id string) (*User, bool) {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i], true
		}
	}
	return nil, false
}

// FindUserByCredentials returns the first user whose name and birthdate match exactly.
func (d *Document) FindUserByCredentials(name, birthdate string) (*User, bool) {
	for i := range d.Users {
		if d.Users[i].MatchesCredentials(name, birthdate) {
			return &d.Users[i], true
		}
	}
	return nil, false
}

// PartIndex returns the position of the part with the given id, or -1.
func (d *Document) PartIndex(id string) int {
	for i := range d.Parts {
		if d.Parts[i].ID == id {
			return i
		}
	}
	return -1
}

// OwnerName returns the display name of the user with the given id, or
// "Unknown" when no such user exists.
func (d *Document) OwnerName(userID string) string {
	if u, ok := d.FindUser(userID); ok {
		return u.Name
	}
	return UnknownOwner
}

// UnknownOwner is shown for parts whose owner record is missing.
const UnknownOwner = "Unknown"
