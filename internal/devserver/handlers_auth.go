package devserver

import (
	"net/http"

	"github.com/ordersync/ordersync/pkg/auth"
	"github.com/ordersync/ordersync/pkg/bind"
	"github.com/ordersync/ordersync/pkg/logger"
	"github.com/ordersync/ordersync/pkg/response"
)

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=120"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	errs, err := bind.JSON(r, &req)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := s.users.FindByEmail(req.Email)
	if err != nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		response.Error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		logger.Error("issue token", "error", err)
		response.Error(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user.Public(),
	})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	errs, err := bind.JSON(r, &req)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if _, err := s.users.FindByEmail(req.Email); err == nil {
		response.Error(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not hash password")
		return
	}

	user := &User{Name: req.Name, Email: req.Email, PasswordHash: hash, Role: "admin"}
	if err := s.users.Create(user); err != nil {
		logger.Error("create user", "error", err)
		response.Error(w, http.StatusInternalServerError, "could not create user")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  user.Public(),
	})
}
