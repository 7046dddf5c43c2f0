package accountservice

import (
	"context"
	"errors"
	"strings"

	"doacoes/internal/domain"
	apperror "doacoes/internal/errors"
	"doacoes/internal/pkg/logger"
)

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(userID string, userRole string) (string, error)
}

// LoginResult é a resposta de um login bem-sucedido: o token e o registro
// completo do usuário, com a role explícita — o cliente não precisa (nem
// deve) inferir o papel sondando endpoints.
type LoginResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// AccountService concentra a lógica de contas do backend: cadastro, login,
// atualização e exclusão (com cascata de causas).
type AccountService struct {
	UserRepo  domain.UserRepository
	CauseRepo domain.CauseRepository
	TokenSvc  TokenService
	logger    logger.Logger
}

// NewService cria uma nova instância do AccountService, injetando os repositórios.
func NewService(userRepo domain.UserRepository, causeRepo domain.CauseRepository, tokenSvc TokenService, log logger.Logger) *AccountService {
	return &AccountService{
		UserRepo:  userRepo,
		CauseRepo: causeRepo,
		TokenSvc:  tokenSvc,
		logger:    log,
	}
}

// Register cadastra um novo usuário no sistema.
// A unicidade de e-mail é verificada sem distinção de caixa; duplicata vira
// conflito (409) para o cliente exibir "já cadastrado".
func (s *AccountService) Register(ctx context.Context, reg domain.UserRegistration) (domain.User, error) {
	// 1. Validação Básica
	if strings.TrimSpace(reg.Name) == "" || strings.TrimSpace(reg.Email) == "" || reg.Password == "" {
		return domain.User{}, apperror.NewValidationError("Nome, e-mail e senha são obrigatórios.")
	}

	role := reg.Role
	if role == "" {
		role = domain.RoleDonor
	}

	// 2. Unicidade de e-mail (case-insensitive)
	if _, err := s.UserRepo.FindByEmail(ctx, reg.Email); err == nil {
		return domain.User{}, apperror.NewConflictError("E-mail já cadastrado.")
	} else if !isNotFound(err) {
		return domain.User{}, err
	}

	// 3. Persistência
	newUser := domain.User{
		Role:        role,
		Name:        reg.Name,
		Email:       reg.Email,
		Password:    reg.Password,
		Document:    reg.Document,
		PostalCode:  reg.PostalCode,
		Description: reg.Description,
		PixKey:      reg.PixKey,
	}

	user, err := s.UserRepo.Save(ctx, newUser)
	if err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// Login autentica um usuário e emite um JWT com a role na claim.
// E-mail inexistente e senha incorreta produzem a mesma resposta opaca.
func (s *AccountService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	// 1. Validação Básica
	if email == "" || password == "" {
		return LoginResult{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	// 2. Buscar Usuário pelo Email
	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return LoginResult{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return LoginResult{}, err
	}

	// 3. Comparação literal de senha — comportamento vigente do sistema,
	// coerente com o snapshot que trafega a senha em texto puro.
	if user.Password != password {
		return LoginResult{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	// 4. Gerar JWT
	tokenString, err := s.TokenSvc.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return LoginResult{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	return LoginResult{Token: tokenString, User: user}, nil
}

// LookupByEmail atende GET /users?email=...
func (s *AccountService) LookupByEmail(ctx context.Context, email string) (domain.User, error) {
	if strings.TrimSpace(email) == "" {
		return domain.User{}, apperror.NewValidationError("O parâmetro 'email' é obrigatório.")
	}
	return s.UserRepo.FindByEmail(ctx, email)
}

// Update substitui o registro completo do usuário. Somente o próprio
// usuário ou um administrador podem fazê-lo.
func (s *AccountService) Update(ctx context.Context, callerID string, callerRole domain.UserRole, user domain.User) (domain.User, error) {
	if callerID != user.ID && callerRole != domain.RoleAdmin {
		return domain.User{}, apperror.NewUnauthorizedError("Somente o próprio usuário ou um administrador pode alterar este cadastro.")
	}

	return s.UserRepo.Update(ctx, user)
}

// Delete exclui um usuário e cascateia as causas dele.
// Autoexclusão é rejeitada antes de tocar no banco.
func (s *AccountService) Delete(ctx context.Context, callerID, targetID string) error {
	// 1. Autoproteção
	if callerID == targetID {
		return apperror.NewValidationError("Não é permitido excluir o próprio usuário.")
	}

	// 2. O alvo precisa existir
	if _, err := s.UserRepo.FindByID(ctx, targetID); err != nil {
		return err
	}

	// 3. Cascata: primeiro as causas do receptor, depois o usuário.
	// Favoritos de doadores apontando para essas causas não são limpos.
	if err := s.CauseRepo.DeleteByReceptor(ctx, targetID); err != nil {
		return err
	}

	if err := s.UserRepo.Delete(ctx, targetID); err != nil {
		return err
	}

	s.logger.Info("Usuário excluído com cascata de causas.", map[string]interface{}{"user_id": targetID})
	return nil
}

// isNotFound reconhece o erro tipado de recurso ausente.
func isNotFound(err error) bool {
	var notFound *apperror.NotFoundError
	return errors.As(err, &notFound)
}
