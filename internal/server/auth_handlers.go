package server

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"todoapp/internal/auth"
	"todoapp/internal/model"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if currentUser(r) != nil {
		http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
		return
	}
	s.render(w, "index.html", map[string]any{})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	user, err := s.userRepo.FindByUsername(r.Context(), username)
	if err != nil || !auth.CheckPassword(user.PasswordHash, password) {
		s.render(w, "index.html", map[string]any{
			"Error": "Invalid username or password.",
		})
		return
	}

	token, err := s.sessions.IssueToken(user.ID)
	if err != nil {
		s.logger.Error("issue session", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.setSessionCookie(w, token)
	http.Redirect(w, r, "/tasks/", http.StatusSeeOther)
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "register.html", map[string]any{})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.PostFormValue("username"))
	email := strings.TrimSpace(r.PostFormValue("email"))
	password1 := r.PostFormValue("password1")
	password2 := r.PostFormValue("password2")

	fail := func(msg string) {
		s.render(w, "register.html", map[string]any{
			"Error":    msg,
			"Username": username,
			"Email":    email,
		})
	}

	if username == "" || password1 == "" {
		fail("Username and password are required.")
		return
	}
	if password1 != password2 {
		fail("Passwords do not match.")
		return
	}
	if _, err := s.userRepo.FindByUsername(r.Context(), username); err == nil {
		fail("That username is taken.")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("lookup username", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	hash, err := auth.HashPassword(password1)
	if err != nil {
		s.logger.Error("hash password", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	user := model.User{Username: username, Email: email, PasswordHash: hash}
	if err := s.userRepo.Create(r.Context(), &user); err != nil {
		s.logger.Error("create user", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	token, err := s.sessions.IssueToken(user.ID)
	if err != nil {
		s.logger.Error("issue session", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleProfileSettings(w http.ResponseWriter, r *http.Request) {
	s.render(w, "profile_settings.html", map[string]any{
		"User": currentUser(r),
	})
}

func (s *Server) handleEditProfileForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "edit_profile.html", map[string]any{
		"User": currentUser(r),
	})
}

// handleEditProfile updates username, email and optionally the
// password of the signed-in user.
func (s *Server) handleEditProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	user := currentUser(r)

	if username := strings.TrimSpace(r.PostFormValue("username")); username != "" && username != user.Username {
		user.Username = username
	}
	if email := strings.TrimSpace(r.PostFormValue("email")); email != "" && email != user.Email {
		user.Email = email
	}
	// The form shows a placeholder of asterisks; only a real entry
	// changes the password.
	if password := r.PostFormValue("password"); password != "" && password != "************" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			s.logger.Error("hash password", "err", err)
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(r.Context(), user); err != nil {
		s.logger.Error("update profile", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/profile_settings/", http.StatusSeeOther)
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, "about.html", map[string]any{})
}
