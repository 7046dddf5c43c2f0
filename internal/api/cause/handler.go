package cause

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
)

// CauseService define o contrato que o Handler espera da camada de Serviço.
type CauseService interface {
	Create(ctx context.Context, cause domain.Cause) (domain.Cause, error)
	List(ctx context.Context) ([]domain.Cause, error)
	Delete(ctx context.Context, callerID string, callerRole domain.UserRole, causeID string) error
}

// Handler agrupa todos os métodos de Handler de causas.
type Handler struct {
	Service CauseService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CauseService, log logger.Logger) *Handler {
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

// ListHandler lida com GET /causes.
// @Summary Lista as causas publicadas
// @Tags causes
// @Produce json
// @Success 200 {array} domain.Cause
// @Router /causes [get]
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	causes, err := h.Service.List(r.Context())
	h.handleServiceResponse(w, r, causes, err, http.StatusOK)
}

// CreateHandler lida com POST /causes.
// O receptor é o usuário autenticado no token; o payload não pode publicar
// em nome de terceiros.
// @Summary Publica uma nova causa
// @Tags causes
// @Accept json
// @Produce json
// @Param cause body domain.Cause true "Causa a publicar (receptor_id vem do token)"
// @Success 201 {object} domain.Cause
// @Failure 400 {object} domain.ErrorResponse "Título ausente, valor negativo ou receptor inválido"
// @Router /causes [post]
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Autorização necessária."), http.StatusCreated)
		return
	}

	var cause domain.Cause
	if err := json.NewDecoder(r.Body).Decode(&cause); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusCreated)
		return
	}
	cause.ReceptorID = claims.UserID

	created, err := h.Service.Create(r.Context(), cause)
	h.handleServiceResponse(w, r, created, err, http.StatusCreated)
}

// DeleteHandler lida com DELETE /causes/{id}.
// @Summary Exclui uma causa
// @Tags causes
// @Param id path string true "Id da causa"
// @Success 204 "Causa excluída"
// @Failure 404 {object} domain.ErrorResponse "Causa não encontrada"
// @Router /causes/{id} [delete]
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/causes/")
	if id == "" || strings.Contains(id, "/") {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Id de causa inválido na URL."), http.StatusOK)
		return
	}

	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Autorização necessária."), http.StatusOK)
		return
	}

	if err := h.Service.Delete(r.Context(), claims.UserID, claims.Role, id); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
