package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
)

type LoginResult struct {
	User    *models.User
	Token   string
	Message string
}

type ProfileResult struct {
	User    *models.User
	Message string
}

func (h *HTTPClient) Register(ctx context.Context, r models.Registration) (string, error) {
	body, err := h.do(ctx, request{
		endpoint: "register",
		method:   http.MethodPost,
		path:     "/users/register",
		body:     r,
	})
	if err != nil {
		return "", err
	}
	return decodeMessage(body), nil
}

func (h *HTTPClient) Login(ctx context.Context, c models.Credentials) (*LoginResult, error) {
	body, err := h.do(ctx, request{
		endpoint: "login",
		method:   http.MethodPost,
		path:     "/users/login",
		body:     c,
	})
	if err != nil {
		return nil, err
	}
	return decodeLogin(body)
}

func (h *HTTPClient) Profile(ctx context.Context) (*models.User, error) {
	body, err := h.do(ctx, request{
		endpoint: "profile",
		method:   http.MethodGet,
		path:     "/users/profile",
		signed:   true,
	})
	if err != nil {
		return nil, err
	}
	return decodeUser(body)
}

// UpdateProfile sends name, email and, when ImagePath is set, the image as
// the profileImage part of a multipart form.
func (h *HTTPClient) UpdateProfile(ctx context.Context, p models.ProfileUpdate) (*ProfileResult, error) {
	form, err := profileForm(p)
	if err != nil {
		return nil, err
	}

	body, err := h.do(ctx, request{
		endpoint: "update_profile",
		method:   http.MethodPut,
		path:     "/users/updateProfile",
		form:     form,
		signed:   true,
	})
	if err != nil {
		return nil, err
	}

	u, err := decodeUser(body)
	if err != nil {
		return nil, err
	}
	msg := decodeMessage(body)
	if msg == "" {
		msg = "Profile updated"
	}
	return &ProfileResult{User: u, Message: msg}, nil
}

func profileForm(p models.ProfileUpdate) (*formPayload, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("name", p.Name); err != nil {
		return nil, err
	}
	if err := w.WriteField("email", p.Email); err != nil {
		return nil, err
	}

	if p.ImagePath != "" {
		f, err := os.Open(p.ImagePath)
		if err != nil {
			return nil, fmt.Errorf("open profile image: %w", err)
		}
		defer f.Close()

		ct := mime.TypeByExtension(filepath.Ext(p.ImagePath))
		if ct == "" {
			ct = "application/octet-stream"
		}
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="profileImage"; filename=%q`, filepath.Base(p.ImagePath)))
		hdr.Set("Content-Type", ct)

		part, err := w.CreatePart(hdr)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, f); err != nil {
			return nil, fmt.Errorf("read profile image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return &formPayload{contentType: w.FormDataContentType(), data: buf.Bytes()}, nil
}

func (h *HTTPClient) DeleteAccount(ctx context.Context) (string, error) {
	body, err := h.do(ctx, request{
		endpoint: "delete_account",
		method:   http.MethodDelete,
		path:     "/users/delete",
		signed:   true,
	})
	if err != nil {
		return "", err
	}
	return decodeMessage(body), nil
}

func (h *HTTPClient) ChangePassword(ctx context.Context, p models.PasswordChange) (string, error) {
	body, err := h.do(ctx, request{
		endpoint: "change_password",
		method:   http.MethodPut,
		path:     "/users/changePassword",
		body:     p,
		signed:   true,
	})
	if err != nil {
		return "", err
	}
	return decodeMessage(body), nil
}

func (h *HTTPClient) ListUsers(ctx context.Context, q models.ListQuery) (*models.UserPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("limit", strconv.Itoa(q.PageSize))
	query.Set("search", q.Search)

	body, err := h.do(ctx, request{
		endpoint: "list_users",
		method:   http.MethodGet,
		path:     "/users/usersList",
		query:    query,
		signed:   true,
	})
	if err != nil {
		return nil, err
	}
	return decodePage(body)
}

func (h *HTTPClient) DeleteUser(ctx context.Context, id string) error {
	_, err := h.do(ctx, request{
		endpoint: "delete_user",
		method:   http.MethodDelete,
		path:     "/users/deleteUser/" + url.PathEscape(id),
		signed:   true,
	})
	return err
}

func (h *HTTPClient) CreateUser(ctx context.Context, f models.UserFields) (*models.User, error) {
	body, err := h.do(ctx, request{
		endpoint: "create_user",
		method:   http.MethodPost,
		path:     "/users/createUser",
		body:     f,
		signed:   true,
	})
	if err != nil {
		return nil, err
	}
	return decodeUser(body)
}

func (h *HTTPClient) UpdateUser(ctx context.Context, id string, f models.UserFields) (*models.User, error) {
	body, err := h.do(ctx, request{
		endpoint: "update_user",
		method:   http.MethodPut,
		path:     "/users/updateUser/" + url.PathEscape(id),
		body:     f,
		signed:   true,
	})
	if err != nil {
		return nil, err
	}
	return decodeUser(body)
}
