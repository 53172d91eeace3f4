package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/AchilleasB/sangria/donor-service/internal/adapters/middleware"
	"github.com/AchilleasB/sangria/donor-service/internal/core/ports"
	"github.com/AchilleasB/sangria/donor-service/internal/core/services"
)

type AuthHandler struct {
	authService ports.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(auth ports.AuthService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{authService: auth, logger: logger}
}

type RegisterRequest struct {
	FullName        string `json:"full_name"`
	CPF             string `json:"cpf"`
	BirthDate       string `json:"birth_date_user"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type RegisterResponse struct {
	Message  string `json:"message"`
	ID       string `json:"id"`
	Username string `json:"username"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.authService.Register(r.Context(), ports.RegisterUserInput{
		FullName:        req.FullName,
		CPF:             req.CPF,
		BirthDate:       req.BirthDate,
		Username:        req.Username,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	switch {
	case errors.Is(err, services.ErrMissingField):
		writeError(w, h.logger, http.StatusBadRequest, "Todos os campos são obrigatórios!")
		return
	case errors.Is(err, services.ErrPasswordMismatch):
		writeError(w, h.logger, http.StatusBadRequest, "As senhas não coincidem!")
		return
	case errors.Is(err, services.ErrPasswordTooShort):
		writeError(w, h.logger, http.StatusBadRequest, "A senha deve ter no mínimo 6 caracteres.")
		return
	case errors.Is(err, services.ErrUsernameTaken):
		writeError(w, h.logger, http.StatusConflict, "Este nome de usuário já existe. Escolha outro.")
		return
	case errors.Is(err, services.ErrCPFTaken):
		writeError(w, h.logger, http.StatusConflict, "Este CPF já está cadastrado.")
		return
	case err != nil:
		h.logger.Error("registration failed", zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "Ocorreu um erro inesperado ao tentar realizar o cadastro.")
		return
	}

	writeJSON(w, h.logger, http.StatusCreated, RegisterResponse{
		Message:  "Cadastro realizado com sucesso! Faça o login.",
		ID:       user.ID,
		Username: user.Username,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Usuário e senha são obrigatórios!")
		return
	}

	token, err := h.authService.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		writeError(w, h.logger, http.StatusUnauthorized, "Usuário ou senha inválidos.")
		return
	}
	if err != nil {
		h.logger.Error("login failed", zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, LoginResponse{
		Message: "Login successful",
		Token:   token,
	})
}

// Logout revokes the token that authenticated the request.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.authService.Logout(r.Context(), middleware.Token(r.Context()))
	if errors.Is(err, services.ErrInvalidToken) {
		writeError(w, h.logger, http.StatusUnauthorized, "invalid token")
		return
	}
	if err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		writeError(w, h.logger, http.StatusServiceUnavailable, "logout temporarily unavailable")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, MessageResponse{Message: "Você saiu da sua conta."})
}
