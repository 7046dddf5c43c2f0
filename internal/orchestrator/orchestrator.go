package orchestrator

import (
	"context"
	"encoding/json"
	"errors"

	"doacoes/internal/domain"
	apperror "doacoes/internal/errors"
	"doacoes/internal/pkg/logger"
)

// RemoteClient é o contrato mínimo que o orquestrador precisa do acessador remoto.
type RemoteClient interface {
	Get(ctx context.Context, path string, token string) (json.RawMessage, error)
	Put(ctx context.Context, path string, token string, body interface{}) (json.RawMessage, error)
}

// LocalStore é o contrato do snapshot local durável.
type LocalStore interface {
	Load() (domain.Snapshot, error)
	Save(snap domain.Snapshot) error
}

// Orchestrator decide, por operação, entre o serviço remoto e o store local.
// A política é "tenta remoto, senão local", sem merge: quando as duas fontes
// divergem, vale integralmente a que respondeu. É o único componente que
// conhece os dois lados; RemoteClient e LocalStore nunca se falam.
type Orchestrator struct {
	remote RemoteClient
	local  LocalStore
	logger logger.Logger
}

// New cria o orquestrador de dados.
func New(remote RemoteClient, local LocalStore, log logger.Logger) *Orchestrator {
	return &Orchestrator{remote: remote, local: local, logger: log}
}

// Load obtém o snapshot completo: GET /data no remoto; se ausente, o arquivo local.
func (o *Orchestrator) Load(ctx context.Context) (domain.Snapshot, error) {
	raw, err := o.remote.Get(ctx, "/data", "")
	if err == nil {
		var snap domain.Snapshot
		if jsonErr := json.Unmarshal(raw, &snap); jsonErr == nil {
			return snap, nil
		}
		// Resposta remota ilegível conta como ausência, não como erro fatal.
		o.logger.Debug("Snapshot remoto ilegível, caindo para o store local.", nil)
	} else if !isUnavailable(err) {
		return domain.Snapshot{}, err
	}

	return o.local.Load()
}

// Save persiste o snapshot completo: PUT /data no remoto; se ausente, o arquivo local.
// O salvamento local é assumido como bem-sucedido salvo falha de I/O.
func (o *Orchestrator) Save(ctx context.Context, token string, snap domain.Snapshot) error {
	if _, err := o.remote.Put(ctx, "/data", token, snap); err == nil {
		return nil
	} else if !isUnavailable(err) {
		return err
	}

	o.logger.Debug("Remoto ausente no Save, persistindo no store local.", nil)
	return o.local.Save(snap)
}

// isUnavailable reconhece o marcador de remoto ausente.
func isUnavailable(err error) bool {
	var unavailable *apperror.UnavailableError
	return errors.As(err, &unavailable)
}
