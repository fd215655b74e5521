package gatewaytest

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/useradmin/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// normalize mimics server-side cleanup the client must not guess.
func normalize(f models.UserFields) models.UserFields {
	f.Name = strings.Join(strings.Fields(f.Name), " ")
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Phone = strings.TrimSpace(f.Phone)
	return f
}

// caller must hold s.mu
func (s *Server) find(id string) (int, *account) {
	for i, a := range s.accounts {
		if a.user.ID == id {
			return i, a
		}
	}
	return -1, nil
}

// caller must hold s.mu
func (s *Server) findByEmail(email string) *account {
	for _, a := range s.accounts {
		if strings.EqualFold(a.user.Email, email) {
			return a
		}
	}
	return nil
}

func (s *Server) register(w http.ResponseWriter, r *http.Request, _ string) {
	var reg models.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request")
		return
	}
	if err := reg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "All fields are required")
		return
	}
	f := normalize(models.UserFields{Name: reg.Name, Email: reg.Email, Phone: reg.Phone})

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByEmail(f.Email) != nil {
		writeError(w, http.StatusConflict, "User already exists")
		return
	}
	a := &account{user: models.User{ID: uuid.NewString(), Name: f.Name, Email: f.Email, Phone: f.Phone}, password: reg.Password}
	s.accounts = append(s.accounts, a)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": "User registered successfully", "data": a.user})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, _ string) {
	var c models.Credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request")
		return
	}

	s.mu.Lock()
	a := s.findByEmail(c.Email)
	s.mu.Unlock()
	if a == nil || a.password != c.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// the real API leaks the password hash into the user object
	user := map[string]any{
		"_id":      a.user.ID,
		"name":     a.user.Name,
		"email":    a.user.Email,
		"phone":    a.user.Phone,
		"avatar":   a.user.Avatar,
		"password": "$2b$10$hash",
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"user":    user,
			"token":   s.IssueToken(a.user.ID, s.tokenTTL),
			"message": "Login successful",
		},
	})
}

func (s *Server) profile(w http.ResponseWriter, _ *http.Request, userID string) {
	s.mu.Lock()
	_, a := s.find(userID)
	s.mu.Unlock()
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": a.user})
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request, userID string) {
	if err := r.ParseMultipartForm(5 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Expected multipart form")
		return
	}

	avatar := ""
	if file, hdr, err := r.FormFile("profileImage"); err == nil {
		file.Close()
		avatar = "/uploads/" + filepath.Base(hdr.Filename)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, a := s.find(userID)
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	f := normalize(models.UserFields{Name: r.FormValue("name"), Email: r.FormValue("email")})
	if f.Name != "" {
		a.user.Name = f.Name
	}
	if f.Email != "" {
		a.user.Email = f.Email
	}
	if avatar != "" {
		a.user.Avatar = avatar
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": a.user, "message": "Profile updated successfully"})
}

func (s *Server) deleteAccount(w http.ResponseWriter, _ *http.Request, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, a := s.find(userID)
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	s.accounts = slices.Delete(s.accounts, i, i+1)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Account deleted"})
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request, userID string) {
	var p models.PasswordChange
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request")
		return
	}
	if p.NewPassword != p.ConfirmPassword {
		writeError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, a := s.find(userID)
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if a.password != p.CurrentPassword {
		writeError(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	a.password = p.NewPassword
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Password updated successfully"})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request, _ string) {
	page := positive(r.URL.Query().Get("page"), 1)
	limit := positive(r.URL.Query().Get("limit"), 10)
	search := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("search")))

	s.mu.Lock()
	matched := make([]models.User, 0, len(s.accounts))
	for _, a := range s.accounts {
		if search == "" ||
			strings.Contains(strings.ToLower(a.user.Name), search) ||
			strings.Contains(strings.ToLower(a.user.Email), search) {
			matched = append(matched, a.user)
		}
	}
	s.mu.Unlock()

	totalPages := (len(matched) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}
	from := min((page-1)*limit, len(matched))
	to := min(from+limit, len(matched))

	writeJSON(w, http.StatusOK, map[string]any{
		"data": matched[from:to],
		"pagination": models.Pagination{
			TotalPages: totalPages,
			Page:       page,
			Limit:      limit,
			Total:      len(matched),
		},
	})
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request, _ string) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	i, a := s.find(id)
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	s.accounts = slices.Delete(s.accounts, i, i+1)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "User deleted successfully"})
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request, _ string) {
	var f models.UserFields
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request")
		return
	}
	f = normalize(f)
	if err := f.ValidateCreate(); err != nil {
		writeError(w, http.StatusBadRequest, "Name and email are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByEmail(f.Email) != nil {
		writeError(w, http.StatusConflict, "User already exists")
		return
	}
	a := &account{user: models.User{ID: uuid.NewString(), Name: f.Name, Email: f.Email, Phone: f.Phone}, password: f.Password}
	s.accounts = append(s.accounts, a)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": a.user})
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request, _ string) {
	id := chi.URLParam(r, "id")
	var f models.UserFields
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request")
		return
	}
	f = normalize(f)

	s.mu.Lock()
	defer s.mu.Unlock()
	_, a := s.find(id)
	if a == nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if f.Name != "" {
		a.user.Name = f.Name
	}
	if f.Email != "" {
		a.user.Email = f.Email
	}
	if f.Phone != "" {
		a.user.Phone = f.Phone
	}
	if f.Password != "" {
		a.password = f.Password
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": a.user})
}

func positive(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return def
	}
	return n
}
