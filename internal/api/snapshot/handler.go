package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"doacoes/internal/domain"
	apperror "doacoes/internal/errors"
	"doacoes/internal/pkg/logger"
)

// SnapshotService define o contrato que o Handler espera da camada de Serviço.
type SnapshotService interface {
	Get(ctx context.Context) (domain.Snapshot, error)
	Replace(ctx context.Context, snap domain.Snapshot) error
}

// Handler agrupa os métodos de Handler do snapshot completo.
type Handler struct {
	Service SnapshotService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc SnapshotService, log logger.Logger) *Handler {
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

// GetHandler lida com GET /data: o documento completo {users, causes}.
// @Summary Lê o snapshot completo
// @Tags snapshot
// @Produce json
// @Success 200 {object} domain.Snapshot
// @Router /data [get]
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Service.Get(r.Context())
	h.handleServiceResponse(w, r, snap, err, http.StatusOK)
}

// ReplaceHandler lida com PUT /data: substituição por atacado, sem merge.
// Último gravador vence.
// @Summary Substitui o snapshot completo
// @Tags snapshot
// @Accept json
// @Param snapshot body domain.Snapshot true "Documento completo {users, causes}"
// @Success 204 "Snapshot substituído"
// @Router /data [put]
func (h *Handler) ReplaceHandler(w http.ResponseWriter, r *http.Request) {
	var snap domain.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), http.StatusNoContent)
		return
	}

	if err := h.Service.Replace(r.Context(), snap); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusNoContent)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
