package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
)

// The API is not consistent about nesting: a payload may sit at the top
// level, under "data", or under "data.data". These helpers peel one wrapper
// at a time.

type wrapped struct {
	Data    json.RawMessage `json:"data"`
	User    json.RawMessage `json:"user"`
	Token   string          `json:"token"`
	Message string          `json:"message"`
}

func present(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && !bytes.Equal(t, []byte("null"))
}

func isObject(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '{'
}

// decodeUser finds a user record in body. It returns nil without error when
// the body carries none.
func decodeUser(body []byte) (*models.User, error) {
	for depth := 0; depth < 3 && isObject(body); depth++ {
		var w wrapped
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		if present(w.User) {
			return decodeUser(w.User)
		}
		if present(w.Data) {
			body = w.Data
			continue
		}

		var u models.User
		if err := json.Unmarshal(body, &u); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		if u.ID == "" && u.Name == "" && u.Email == "" {
			return nil, nil
		}
		return &u, nil
	}
	if isObject(body) {
		var u models.User
		if err := json.Unmarshal(body, &u); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		return &u, nil
	}
	return nil, nil
}

// decodeMessage returns the first "message" found on the way down.
func decodeMessage(body []byte) string {
	for depth := 0; depth < 3 && isObject(body); depth++ {
		var w wrapped
		if err := json.Unmarshal(body, &w); err != nil {
			return ""
		}
		if w.Message != "" {
			return w.Message
		}
		if !present(w.Data) {
			return ""
		}
		body = w.Data
	}
	return ""
}

func decodeLogin(body []byte) (*LoginResult, error) {
	res := &LoginResult{Message: decodeMessage(body)}

	for depth := 0; depth < 3 && isObject(body); depth++ {
		var w wrapped
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, fmt.Errorf("decode login: %w", err)
		}
		if w.Token != "" || present(w.User) {
			res.Token = w.Token
			if present(w.User) {
				u, err := decodeUser(w.User)
				if err != nil {
					return nil, err
				}
				res.User = u
			}
			return res, nil
		}
		if !present(w.Data) {
			break
		}
		body = w.Data
	}
	return res, nil
}

type pageBody struct {
	Data       json.RawMessage    `json:"data"`
	Pagination *models.Pagination `json:"pagination"`
}

func decodePage(body []byte) (*models.UserPage, error) {
	for depth := 0; depth < 3; depth++ {
		var p pageBody
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("decode users page: %w", err)
		}

		t := bytes.TrimSpace(p.Data)
		switch {
		case len(t) > 0 && t[0] == '[':
			page := &models.UserPage{Pagination: p.Pagination}
			if err := json.Unmarshal(t, &page.Data); err != nil {
				return nil, fmt.Errorf("decode users page: %w", err)
			}
			return page, nil
		case len(t) > 0 && t[0] == '{':
			body = t
		default:
			// no data at all is an empty page
			return &models.UserPage{Data: []models.User{}, Pagination: p.Pagination}, nil
		}
	}
	return nil, fmt.Errorf("decode users page: payload nested too deep")
}
