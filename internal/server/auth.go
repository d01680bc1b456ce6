package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"notesbuzz/internal/apperr"
	"notesbuzz/internal/metrics"
	"notesbuzz/internal/users"
)

const maxAuthBodyBytes = 1 << 20

type signupReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type validationResp struct {
	Errors users.ValidationErrors `json:"errors"`
}

// handleSignup handles POST /auth/signup.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)

	var req signupReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.users.Create(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		status := apperr.HTTPStatus(err)
		var verrs users.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			writeJSON(w, status, validationResp{Errors: verrs})
		case errors.Is(err, apperr.ErrConflict):
			writeError(w, status, "Username or email already exists")
		default:
			log.Error("signup failed", "op", "signup", "err", err)
			writeError(w, status, "Internal server error")
		}
		return
	}

	s.metrics.RecordSignup()
	log.Info("user created", "user_id", user.ID, "username", user.Username)
	writeMessage(w, http.StatusCreated, "User created successfully")
}

// handleLogin handles POST /auth/login. It only checks credentials; no
// session is issued.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)

	var req loginReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.users.Authenticate(r.Context(), req.Username, req.Password); err != nil {
		status := apperr.HTTPStatus(err)
		if status == http.StatusUnauthorized {
			s.metrics.RecordLogin(metrics.LoginFailure)
			writeMessage(w, status, "Invalid credentials")
			return
		}
		s.metrics.RecordLogin(metrics.LoginError)
		log.Error("login failed", "op", "login", "err", err)
		writeError(w, status, "Internal server error")
		return
	}

	s.metrics.RecordLogin(metrics.LoginSuccess)
	writeMessage(w, http.StatusOK, "Login successful")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxAuthBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
