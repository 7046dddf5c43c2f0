package causeservice

import (
	"context"
	"strings"

	"doacoes/internal/domain"
	apperror "doacoes/internal/errors"
	"doacoes/internal/pkg/logger"
)

// CauseService concentra a lógica de causas do backend: criação com
// validação do receptor, listagem e exclusão.
type CauseService struct {
	CauseRepo domain.CauseRepository
	UserRepo  domain.UserRepository
	logger    logger.Logger
}

// NewService cria uma nova instância do CauseService, injetando os repositórios.
func NewService(causeRepo domain.CauseRepository, userRepo domain.UserRepository, log logger.Logger) *CauseService {
	return &CauseService{
		CauseRepo: causeRepo,
		UserRepo:  userRepo,
		logger:    log,
	}
}

// Create publica uma nova causa. O receptor_id precisa referenciar um
// usuário existente com role recipient no momento da criação; depois disso
// nenhuma integridade referencial é garantida (a cascata de DeleteUser é a
// única limpeza).
func (s *CauseService) Create(ctx context.Context, cause domain.Cause) (domain.Cause, error) {
	// 1. Validação Básica
	if strings.TrimSpace(cause.Title) == "" {
		return domain.Cause{}, apperror.NewValidationError("O título da causa é obrigatório.")
	}
	if cause.Value < 0 {
		return domain.Cause{}, apperror.NewValidationError("O valor da causa não pode ser negativo.")
	}

	// 2. Receptor existente e com a role correta
	receptor, err := s.UserRepo.FindByID(ctx, cause.ReceptorID)
	if err != nil {
		return domain.Cause{}, apperror.NewValidationError("Receptor da causa não encontrado.")
	}
	if receptor.Role != domain.RoleRecipient {
		return domain.Cause{}, apperror.NewValidationError("Somente receptores podem publicar causas.")
	}

	// 3. Persistência
	return s.CauseRepo.Save(ctx, cause)
}

// List retorna todas as causas publicadas.
func (s *CauseService) List(ctx context.Context) ([]domain.Cause, error) {
	return s.CauseRepo.FindAll(ctx)
}

// Delete exclui uma causa. Somente o receptor dono ou um administrador.
// Favoritos que apontavam para a causa não são limpos (órfão aceito).
func (s *CauseService) Delete(ctx context.Context, callerID string, callerRole domain.UserRole, causeID string) error {
	cause, err := s.CauseRepo.FindByID(ctx, causeID)
	if err != nil {
		return err
	}

	if callerRole != domain.RoleAdmin && cause.ReceptorID != callerID {
		return apperror.NewUnauthorizedError("Somente o receptor da causa ou um administrador pode excluí-la.")
	}

	return s.CauseRepo.Delete(ctx, causeID)
}
