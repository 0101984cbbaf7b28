package models

import (
	"errors"
	"strings"
)

var ErrIncompleteRecord = errors.New("website, username and value are required")

// PasswordRecord is one stored credential. Value is the secret and travels
// in plaintext, as the API stores and returns it.
type PasswordRecord struct {
	ID          ID     `json:"id,omitempty"`
	Website     string `json:"website"`
	Username    string `json:"username"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Validate checks the fields the record service rejects when missing.
func (r PasswordRecord) Validate() error {
	if strings.TrimSpace(r.Website) == "" || strings.TrimSpace(r.Username) == "" || r.Value == "" {
		return ErrIncompleteRecord
	}
	return nil
}

// RecordPatch carries a partial update; nil fields keep their current value.
type RecordPatch struct {
	Website     *string
	Username    *string
	Value       *string
	Description *string
}

// Empty reports whether the patch changes nothing.
func (p RecordPatch) Empty() bool {
	return p.Website == nil && p.Username == nil && p.Value == nil && p.Description == nil
}

// Apply returns r with the patch's non-nil fields applied.
func (p RecordPatch) Apply(r PasswordRecord) PasswordRecord {
	if p.Website != nil {
		r.Website = *p.Website
	}
	if p.Username != nil {
		r.Username = *p.Username
	}
	if p.Value != nil {
		r.Value = *p.Value
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	return r
}

// Records is an ordered list of records as shown to the user. Mutations
// return the authoritative record, which Upsert/Remove fold into the list
// without a re-fetch.
type Records []PasswordRecord

// Find returns the record with the given id.
func (rs Records) Find(id ID) (PasswordRecord, bool) {
	for _, r := range rs {
		if r.ID == id {
			return r, true
		}
	}
	return PasswordRecord{}, false
}

// Upsert replaces the record with the same id or appends it.
func (rs Records) Upsert(rec PasswordRecord) Records {
	for i := range rs {
		if rs[i].ID == rec.ID {
			out := make(Records, len(rs))
			copy(out, rs)
			out[i] = rec
			return out
		}
	}
	out := make(Records, len(rs), len(rs)+1)
	copy(out, rs)
	return append(out, rec)
}

// Remove drops every record with the given id.
func (rs Records) Remove(id ID) Records {
	out := make(Records, 0, len(rs))
	for _, r := range rs {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

// Filter keeps records whose website or username contains term,
// case-insensitively. An empty term keeps everything.
func (rs Records) Filter(term string) Records {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return rs
	}
	out := make(Records, 0, len(rs))
	for _, r := range rs {
		if strings.Contains(strings.ToLower(r.Website), term) || strings.Contains(strings.ToLower(r.Username), term) {
			out = append(out, r)
		}
	}
	return out
}
