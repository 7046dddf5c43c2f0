package account

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"doacoes/internal/domain"
	apperror "doacoes/internal/errors"
	"doacoes/internal/pkg/logger"
	"doacoes/internal/pkg/middleware"
	"doacoes/internal/service/accountservice"
)

// AccountService define o contrato que o Handler espera da camada de Serviço.
type AccountService interface {
	Register(ctx context.Context, reg domain.UserRegistration) (domain.User, error)
	Login(ctx context.Context, email, password string) (accountservice.LoginResult, error)
	LookupByEmail(ctx context.Context, email string) (domain.User, error)
	Update(ctx context.Context, callerID string, callerRole domain.UserRole, user domain.User) (domain.User, error)
	Delete(ctx context.Context, callerID, targetID string) error
}

// LoginRequest representa o payload de entrada para o login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Handler agrupa todos os métodos de Handler de contas.
type Handler struct {
	Service AccountService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc AccountService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// LoginHandler lida com a requisição POST /login.
// @Summary Autentica um usuário
// @Description Recebe email/senha, compara literalmente e emite um JWT com a role explícita.
// @Tags accounts
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Credenciais do usuário (email e senha)"
// @Success 200 {object} accountservice.LoginResult "Token e usuário autenticado"
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Router /login [post]
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var loginReq LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
		return
	}

	result, err := h.Service.Login(ctx, loginReq.Email, loginReq.Password)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, result, nil, http.StatusOK)
}

// RegisterHandler lida com POST /users (e o alias legado POST /cadastrate).
// @Summary Cadastra um novo usuário
// @Description Valida os campos obrigatórios e cria o usuário; e-mail duplicado retorna 409.
// @Tags accounts
// @Accept json
// @Produce json
// @Param registration body domain.UserRegistration true "Dados de cadastro"
// @Success 201 {object} domain.User "Usuário criado com sucesso"
// @Failure 400 {object} domain.ErrorResponse "Campos obrigatórios ausentes"
// @Failure 409 {object} domain.ErrorResponse "E-mail já cadastrado"
// @Router /users [post]
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var reg domain.UserRegistration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusCreated)
		return
	}

	newUser, err := h.Service.Register(ctx, reg)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	h.handleServiceResponse(w, r, newUser, nil, http.StatusCreated)
}

// LookupHandler lida com GET /users?email=...
// @Summary Busca um usuário por e-mail
// @Tags accounts
// @Produce json
// @Param email query string true "E-mail do usuário (comparação sem distinção de caixa)"
// @Success 200 {object} domain.User
// @Failure 404 {object} domain.ErrorResponse "Usuário não encontrado"
// @Router /users [get]
func (h *Handler) LookupHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.LookupByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, user, nil, http.StatusOK)
}

// UserByIDHandler lida com PUT e DELETE em /users/{id}.
// PUT substitui o cadastro inteiro (nunca um patch); DELETE exclui com
// cascata das causas do usuário e rejeita autoexclusão.
func (h *Handler) UserByIDHandler(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/users/")
	if id == "" || strings.Contains(id, "/") {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Id de usuário inválido na URL."), http.StatusOK)
		return
	}

	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Autorização necessária."), http.StatusOK)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var user domain.User
		if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
			h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusOK)
			return
		}
		user.ID = id

		updated, err := h.Service.Update(r.Context(), claims.UserID, claims.Role, user)
		h.handleServiceResponse(w, r, updated, err, http.StatusOK)

	case http.MethodDelete:
		err := h.Service.Delete(r.Context(), claims.UserID, id)
		if err != nil {
			h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}
