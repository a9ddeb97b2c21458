package domain

// Document is the entire persisted application state: three independent
// top-level collections serialized as one JSON blob under a single storage
// key. There is no foreign-key integrity between collections; relations are
// by identifier string embedded in a record.
type Document struct {
	Users         []User         `json:"users"`
	Announcements []Announcement `json:"announcements"`
	// No omitempty: an explicitly emptied journal list must round-trip as
	// empty, not reseed on the next load.
	Journals []Journal `json:"journals"`
}

// Normalize lazily materializes absent sub-collections so callers never see
// a nil slice. The journals collection is seeded with the default list the
// first time it is missing; an explicitly emptied list stays empty.
func (d *Document) Normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Announcements == nil {
		d.Announcements = []Announcement{}
	}
	if d.Journals == nil {
		d.Journals = SeedJournals()
	}
}

// FindUser returns a pointer into the Users slice for in-place mutation, or
// nil when no record carries the id.
func (d *Document) FindUser(id string) *User {
	for i := range d.Users {
		if d.Users[i].ID == id {
			return &d.Users[i]
		}
	}
	return nil
}
