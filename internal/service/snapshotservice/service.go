package snapshotservice

import (
	"context"

	"doacoes/internal/domain"
	"doacoes/internal/pkg/logger"
)

// SnapshotService monta e substitui o documento completo que os clientes
// leem em GET /data e gravam em PUT /data. Não há merge: a substituição é
// por atacado, tabela a tabela — último gravador vence.
type SnapshotService struct {
	UserRepo  domain.UserRepository
	CauseRepo domain.CauseRepository
	logger    logger.Logger
}

// NewService cria uma nova instância do SnapshotService.
func NewService(userRepo domain.UserRepository, causeRepo domain.CauseRepository, log logger.Logger) *SnapshotService {
	return &SnapshotService{
		UserRepo:  userRepo,
		CauseRepo: causeRepo,
		logger:    log,
	}
}

// Get monta o snapshot completo a partir das duas tabelas.
func (s *SnapshotService) Get(ctx context.Context) (domain.Snapshot, error) {
	users, err := s.UserRepo.FindAll(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	causes, err := s.CauseRepo.FindAll(ctx)
	if err != nil {
		return domain.Snapshot{}, err
	}

	return domain.Snapshot{Users: users, Causes: causes}, nil
}

// Replace substitui as duas tabelas pelo conteúdo do snapshot recebido.
func (s *SnapshotService) Replace(ctx context.Context, snap domain.Snapshot) error {
	if err := s.UserRepo.ReplaceAll(ctx, snap.Users); err != nil {
		return err
	}

	if err := s.CauseRepo.ReplaceAll(ctx, snap.Causes); err != nil {
		return err
	}

	s.logger.Info("Snapshot substituído por atacado.", map[string]interface{}{
		"users":  len(snap.Users),
		"causes": len(snap.Causes),
	})
	return nil
}
