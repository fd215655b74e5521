// Package models defines the records exchanged with the admin API and kept
// in the local session.
package models

import (
	"encoding/json"
)

// User is both the session identity and a row of the users list.
type User struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `json:"role,omitempty"`
}

// UnmarshalJSON accepts both "_id" and "id" as the identifier. Fields the
// client does not model (password hashes included) are dropped.
func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	var aux struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*u = User(aux.plain)
	if u.ID == "" {
		u.ID = aux.AltID
	}
	return nil
}

// Clone returns a copy, or nil for a nil receiver.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func (u User) String() string {
	if u.Email == "" {
		return u.Name
	}
	return u.Name + " <" + u.Email + ">"
}

type Pagination struct {
	TotalPages int `json:"totalPages"`
	Page       int `json:"page,omitempty"`
	Limit      int `json:"limit,omitempty"`
	Total      int `json:"total,omitempty"`
}

// UserPage is one page of the users list.
type UserPage struct {
	Data       []User      `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// TotalPages reports the page count, never less than 1.
func (p UserPage) TotalPages() int {
	if p.Pagination == nil || p.Pagination.TotalPages < 1 {
		return 1
	}
	return p.Pagination.TotalPages
}

// ListQuery drives one request of the users list.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
}
