package store

import (
	"encoding/json"
	"os"

	"doacoes/internal/domain"
	apperror "doacoes/internal/errors"
	"doacoes/internal/pkg/logger"
)

// Credenciais fixas do administrador semeado no primeiro uso.
const (
	AdminID       = "admin"
	AdminName     = "Administrador"
	AdminEmail    = "admin@local"
	AdminPassword = "admin"
)

// Store é o snapshot local durável: um único documento JSON com todos os
// usuários e causas. Save substitui o arquivo inteiro — não é incremental
// nem transacional; um crash no meio da escrita pode corromper o arquivo
// (risco aceito do comportamento vigente).
type Store struct {
	path   string
	logger logger.Logger
}

// NewStore cria o store apontando para o arquivo de snapshot.
func NewStore(path string, log logger.Logger) *Store {
	return &Store{path: path, logger: log}
}

// Load carrega o snapshot do disco. No primeiro uso (arquivo inexistente),
// inicializa o documento com o registro do administrador padrão e o
// persiste imediatamente antes de devolvê-lo.
func (s *Store) Load() (domain.Snapshot, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return domain.Snapshot{}, apperror.NewInternalError("Falha ao ler o snapshot local.", err)
		}

		snap := seedSnapshot()
		if err := s.Save(snap); err != nil {
			return domain.Snapshot{}, err
		}
		s.logger.Info("Snapshot local inicializado com o administrador padrão.", map[string]interface{}{
			"file": s.path,
		})
		return snap, nil
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return domain.Snapshot{}, apperror.NewInternalError("Snapshot local corrompido.", err)
	}
	return snap, nil
}

// Save substitui o arquivo de snapshot pelo documento informado.
func (s *Store) Save(snap domain.Snapshot) error {
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return apperror.NewInternalError("Falha ao serializar o snapshot local.", err)
	}

	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return apperror.NewInternalError("Falha ao gravar o snapshot local.", err)
	}
	return nil
}

// seedSnapshot monta o documento inicial com o administrador padrão.
func seedSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Users: []domain.User{
			{
				ID:       AdminID,
				Role:     domain.RoleAdmin,
				Name:     AdminName,
				Email:    AdminEmail,
				Password: AdminPassword,
			},
		},
		Causes: []domain.Cause{},
	}
}
