package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mwalczyk/socialfeed/internal/domain"
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.accounts.Signup(r.Context(), req.Username, req.Email, req.Password); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User registered"})
}

// handleSignin resumes a session from an existing token cookie when one is
// present; otherwise it authenticates with username and password and sets
// the cookie. A request with neither yields 204.
func (s *Server) handleSignin(w http.ResponseWriter, r *http.Request) {
	if token := sessionToken(r); token != "" {
		profile, err := s.accounts.SigninWithToken(r.Context(), token)
		if err != nil {
			// a token whose account no longer resolves is as good as invalid
			if errors.Is(err, domain.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "Invalid token was provided")
				return
			}
			s.writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": profile, "message": "Signed in"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil || len(bytes.TrimSpace(body)) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" && req.Password == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	profile, token, err := s.accounts.Signin(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{"user": profile, "message": "Signed in"})
}

func (s *Server) handleSignout(w http.ResponseWriter, _ *http.Request) {
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	profile, err := s.accounts.GetProfile(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": profile})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  string `json:"userId"`
		Updates struct {
			Username        *string             `json:"username"`
			ProfilePicture  *string             `json:"profilePicture"`
			BackgroundImage *string             `json:"backgroundImage"`
			Bio             *string             `json:"bio"`
			Info            *domain.AccountInfo `json:"info"`
		} `json:"updates"`
	}

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid fields for update")
		return
	}

	update := domain.AccountUpdate{
		Username:        req.Updates.Username,
		ProfilePicture:  req.Updates.ProfilePicture,
		BackgroundImage: req.Updates.BackgroundImage,
		Bio:             req.Updates.Bio,
		Info:            req.Updates.Info,
	}
	profile, err := s.accounts.UpdateAccount(r.Context(), sessionToken(r), req.UserID, update)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": profile, "message": "User has been updated"})
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	kind := domain.ImageKind(r.URL.Query().Get("image"))
	if kind != domain.ImageProfile && kind != domain.ImageBackground {
		writeError(w, http.StatusBadRequest, "Specified invalid image type")
		return
	}

	image, err := s.accounts.GetImage(r.Context(), r.URL.Query().Get("userId"), kind)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"image": image})
}
