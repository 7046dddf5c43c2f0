package donationservice

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"doacoes/internal/domain"
	apperror "doacoes/internal/errors"
	"doacoes/internal/pkg/logger"
)

// RemoteClient é o contrato que o serviço espera do acessador remoto.
type RemoteClient interface {
	Get(ctx context.Context, path string, token string) (json.RawMessage, error)
	Post(ctx context.Context, path string, token string, body interface{}) (json.RawMessage, error)
	Put(ctx context.Context, path string, token string, body interface{}) (json.RawMessage, error)
	Delete(ctx context.Context, path string, token string) (json.RawMessage, error)
}

// Orchestrator é o contrato da camada que decide entre remoto e local.
type Orchestrator interface {
	Load(ctx context.Context) (domain.Snapshot, error)
}

// LocalStore é o contrato do snapshot local durável.
type LocalStore interface {
	Load() (domain.Snapshot, error)
	Save(snap domain.Snapshot) error
}

// Service expõe as operações de domínio consumidas pela camada de UI:
// autenticar, cadastrar, criar/excluir causa, atualizar/excluir usuário e
// favoritar. Toda operação segue o padrão uniforme: tenta o endpoint remoto
// equivalente; em caso de sucesso recarrega o snapshot completo do remoto
// para ressincronizar a cópia local; se o remoto está ausente, aplica a
// mutação direto no snapshot local e persiste via LocalStore.
type Service struct {
	remote RemoteClient
	orch   Orchestrator
	local  LocalStore
	logger logger.Logger
}

// NewService cria o serviço de doações, injetando o acessador remoto,
// o orquestrador e o store local.
func NewService(remote RemoteClient, orch Orchestrator, local LocalStore, log logger.Logger) *Service {
	return &Service{
		remote: remote,
		orch:   orch,
		local:  local,
		logger: log,
	}
}

// loginRequest é o payload de POST /login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse é a resposta do backend para POST /login.
type loginResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// LoadSnapshot devolve a visão completa de usuários e causas para as telas
// de listagem (feed do doador, painel do administrador). Remoto primeiro,
// local na ausência — política do orquestrador.
func (s *Service) LoadSnapshot(ctx context.Context) (domain.Snapshot, error) {
	return s.orch.Load(ctx)
}

// Authenticate autentica por e-mail e senha.
// Remoto primeiro: POST /login devolve token e usuário com role explícita.
// Se a resposta vier sem o usuário, busca o registro por e-mail e mescla.
// Com o remoto inalcançável, cai para a busca local: e-mail comparado sem
// distinção de caixa, senha comparada literalmente. Qualquer divergência
// vira um único sinal opaco de falha — não revelamos se o e-mail existe.
func (s *Service) Authenticate(ctx context.Context, email, password string) (domain.Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return domain.Session{}, apperror.NewUnauthorizedError("E-mail ou senha incorretos.")
	}

	// 1. Tentativa remota
	raw, err := s.remote.Post(ctx, "/login", "", loginRequest{Email: email, Password: password})
	if err == nil {
		var resp loginResponse
		if jsonErr := json.Unmarshal(raw, &resp); jsonErr != nil {
			return domain.Session{}, apperror.NewUnauthorizedError("E-mail ou senha incorretos.")
		}

		user := resp.User
		if user == nil {
			// Login aceito, mas sem o registro do usuário: busca por e-mail e mescla.
			user = s.fetchUserByEmail(ctx, email, resp.Token)
		}
		if user == nil {
			return domain.Session{}, apperror.NewUnauthorizedError("E-mail ou senha incorretos.")
		}

		s.logger.Info("Autenticação remota bem-sucedida.", map[string]interface{}{"user_id": user.ID})
		return domain.Session{
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
			Role:   user.Role,
			Token:  resp.Token,
		}, nil
	}

	if !isUnavailable(err) && !isConflict(err) {
		return domain.Session{}, err
	}

	// 2. Fallback local
	snap, loadErr := s.local.Load()
	if loadErr != nil {
		return domain.Session{}, loadErr
	}

	for i := range snap.Users {
		u := &snap.Users[i]
		if strings.EqualFold(u.Email, email) && u.Password == password {
			s.logger.Info("Autenticação pelo store local.", map[string]interface{}{"user_id": u.ID})
			return domain.Session{
				UserID: u.ID,
				Name:   u.Name,
				Email:  u.Email,
				Role:   u.Role,
			}, nil
		}
	}

	return domain.Session{}, apperror.NewUnauthorizedError("E-mail ou senha incorretos.")
}

// Register cadastra um novo usuário.
// Validação antes de qualquer persistência; no fallback local a unicidade
// de e-mail é verificada aqui mesmo (no caminho remoto o servidor a garante,
// sinalizando 409 que o chamador vê como "já cadastrado").
func (s *Service) Register(ctx context.Context, reg domain.UserRegistration) (domain.User, error) {
	// 1. Validação (bloqueia remoto e local)
	if strings.TrimSpace(reg.Name) == "" || strings.TrimSpace(reg.Email) == "" || reg.Password == "" {
		return domain.User{}, apperror.NewValidationError("Nome, e-mail e senha são obrigatórios.")
	}

	role := reg.Role
	if role == "" {
		role = domain.RoleDonor
	}

	user := domain.User{
		Role:        role,
		Name:        reg.Name,
		Email:       reg.Email,
		Password:    reg.Password,
		Document:    reg.Document,
		PostalCode:  reg.PostalCode,
		Description: reg.Description,
		PixKey:      reg.PixKey,
	}

	// 2. Tentativa remota
	raw, err := s.remote.Post(ctx, "/users", "", user)
	if err == nil {
		var created domain.User
		if jsonErr := json.Unmarshal(raw, &created); jsonErr == nil && created.ID != "" {
			user = created
		}
		s.resync(ctx, "")
		return user, nil
	}
	if isConflict(err) {
		// Servidor detectou e-mail duplicado.
		return domain.User{}, apperror.NewConflictError("E-mail já cadastrado.")
	}
	if !isUnavailable(err) {
		return domain.User{}, err
	}

	// 3. Fallback local
	snap, loadErr := s.local.Load()
	if loadErr != nil {
		return domain.User{}, loadErr
	}

	for i := range snap.Users {
		if strings.EqualFold(snap.Users[i].Email, user.Email) {
			return domain.User{}, apperror.NewConflictError("E-mail já cadastrado.")
		}
	}

	user.ID = uuid.NewString()
	snap.Users = append(snap.Users, user)
	if err := s.local.Save(snap); err != nil {
		return domain.User{}, err
	}

	s.logger.Info("Usuário cadastrado no store local.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// ListCauses lista as causas publicadas: GET /causes no remoto, senão o
// snapshot local.
func (s *Service) ListCauses(ctx context.Context) ([]domain.Cause, error) {
	raw, err := s.remote.Get(ctx, "/causes", "")
	if err == nil {
		var causes []domain.Cause
		if jsonErr := json.Unmarshal(raw, &causes); jsonErr == nil {
			return causes, nil
		}
	} else if !isUnavailable(err) {
		return nil, err
	}

	snap, loadErr := s.local.Load()
	if loadErr != nil {
		return nil, loadErr
	}
	return snap.Causes, nil
}

// CreateCause publica uma causa em nome do receptor autenticado.
// O valor monetário chega como texto e aceita vírgula como separador
// decimal; a normalização e o parse acontecem antes de tocar em qualquer
// store — entrada não numérica é erro de validação e nada é gravado.
func (s *Service) CreateCause(ctx context.Context, sess domain.Session, title, description, rawValue string) (domain.Cause, error) {
	// 1. Validação
	if strings.TrimSpace(title) == "" {
		return domain.Cause{}, apperror.NewValidationError("O título da causa é obrigatório.")
	}
	value, err := ParseValue(rawValue)
	if err != nil {
		return domain.Cause{}, err
	}

	cause := domain.Cause{
		ReceptorID:  sess.UserID,
		Title:       title,
		Description: description,
		Value:       value,
	}

	// 2. Tentativa remota (a existência e a role do receptor são checadas no servidor)
	raw, remoteErr := s.remote.Post(ctx, "/causes", sess.Token, cause)
	if remoteErr == nil {
		var created domain.Cause
		if jsonErr := json.Unmarshal(raw, &created); jsonErr == nil && created.ID != "" {
			cause = created
		}
		s.resync(ctx, sess.Token)
		return cause, nil
	}
	if !isUnavailable(remoteErr) && !isConflict(remoteErr) {
		return domain.Cause{}, remoteErr
	}

	// 3. Fallback local
	snap, loadErr := s.local.Load()
	if loadErr != nil {
		return domain.Cause{}, loadErr
	}

	idx := snap.FindUserByID(sess.UserID)
	if idx < 0 || snap.Users[idx].Role != domain.RoleRecipient {
		return domain.Cause{}, apperror.NewValidationError("Somente receptores cadastrados podem publicar causas.")
	}

	cause.ID = uuid.NewString()
	snap.Causes = append(snap.Causes, cause)
	if err := s.local.Save(snap); err != nil {
		return domain.Cause{}, err
	}

	s.logger.Info("Causa criada no store local.", map[string]interface{}{"cause_id": cause.ID})
	return cause, nil
}

// DeleteCause exclui uma causa pelo id. Lista de favoritos de ninguém é
// limpa — referências órfãs são toleradas.
func (s *Service) DeleteCause(ctx context.Context, sess domain.Session, causeID string) error {
	// 1. Tentativa remota
	_, err := s.remote.Delete(ctx, "/causes/"+causeID, sess.Token)
	if err == nil {
		s.resync(ctx, sess.Token)
		return nil
	}
	if !isUnavailable(err) && !isConflict(err) {
		return err
	}

	// 2. Fallback local
	snap, loadErr := s.local.Load()
	if loadErr != nil {
		return loadErr
	}

	idx := snap.FindCauseByID(causeID)
	if idx < 0 {
		return apperror.NewNotFoundError("Causa não encontrada.")
	}
	if sess.Role != domain.RoleAdmin && snap.Causes[idx].ReceptorID != sess.UserID {
		return apperror.NewUnauthorizedError("Somente o receptor da causa ou um administrador pode excluí-la.")
	}

	snap.Causes = append(snap.Causes[:idx], snap.Causes[idx+1:]...)
	return s.local.Save(snap)
}

// UpdateUser envia sempre o objeto completo do usuário, nunca um patch
// parcial (alteração de chave pix, descrição ou favoritos incluída).
func (s *Service) UpdateUser(ctx context.Context, sess domain.Session, user domain.User) (domain.User, error) {
	// 1. Tentativa remota
	_, err := s.remote.Put(ctx, "/users/"+user.ID, sess.Token, user)
	if err == nil {
		s.resync(ctx, sess.Token)
		return user, nil
	}
	if !isUnavailable(err) && !isConflict(err) {
		return domain.User{}, err
	}

	// 2. Fallback local
	snap, loadErr := s.local.Load()
	if loadErr != nil {
		return domain.User{}, loadErr
	}

	idx := snap.FindUserByID(user.ID)
	if idx < 0 {
		return domain.User{}, apperror.NewNotFoundError("Usuário não encontrado.")
	}

	snap.Users[idx] = user
	if err := s.local.Save(snap); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// DeleteUser exclui um usuário. Autoexclusão é rejeitada antes de qualquer
// tentativa de persistência. A exclusão cascateia: toda causa cujo
// receptor_id é o usuário excluído também é removida.
func (s *Service) DeleteUser(ctx context.Context, sess domain.Session, targetID string) error {
	// 1. Autoproteção (bloqueia remoto e local)
	if targetID == sess.UserID {
		return apperror.NewValidationError("Não é permitido excluir o próprio usuário.")
	}

	// 2. Tentativa remota (a cascata é aplicada pelo servidor)
	_, err := s.remote.Delete(ctx, "/users/"+targetID, sess.Token)
	if err == nil {
		s.resync(ctx, sess.Token)
		return nil
	}
	if !isUnavailable(err) && !isConflict(err) {
		return err
	}

	// 3. Fallback local com cascata
	snap, loadErr := s.local.Load()
	if loadErr != nil {
		return loadErr
	}

	idx := snap.FindUserByID(targetID)
	if idx < 0 {
		return apperror.NewNotFoundError("Usuário não encontrado.")
	}

	snap.Users = append(snap.Users[:idx], snap.Users[idx+1:]...)

	remaining := snap.Causes[:0]
	for _, c := range snap.Causes {
		if c.ReceptorID != targetID {
			remaining = append(remaining, c)
		}
	}
	snap.Causes = remaining

	return s.local.Save(snap)
}

// ToggleFavorite alterna a presença da causa nos favoritos do doador e
// empurra o usuário completo via UpdateUser. Repetir a chamada devolve a
// lista ao estado original; duplicatas nunca são armazenadas.
func (s *Service) ToggleFavorite(ctx context.Context, sess domain.Session, user domain.User, causeID string) (domain.User, error) {
	if user.HasFavorite(causeID) {
		favorites := make([]string, 0, len(user.Favorites)-1)
		for _, id := range user.Favorites {
			if id != causeID {
				favorites = append(favorites, id)
			}
		}
		user.Favorites = favorites
	} else {
		user.Favorites = append(user.Favorites, causeID)
	}

	return s.UpdateUser(ctx, sess, user)
}

// ParseValue normaliza e interpreta o valor monetário digitado: vírgula
// decimal vira ponto antes do parse; valor negativo ou não numérico é
// erro de validação.
func ParseValue(raw string) (float64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, apperror.NewValidationError("O valor informado não é um número válido.")
	}
	if value < 0 {
		return 0, apperror.NewValidationError("O valor da causa não pode ser negativo.")
	}
	return value, nil
}

// fetchUserByEmail busca o registro do usuário por e-mail no remoto.
// Melhor esforço: qualquer falha devolve nil.
func (s *Service) fetchUserByEmail(ctx context.Context, email, token string) *domain.User {
	raw, err := s.remote.Get(ctx, "/users?email="+url.QueryEscape(email), token)
	if err != nil {
		return nil
	}

	var user domain.User
	if jsonErr := json.Unmarshal(raw, &user); jsonErr != nil || user.ID == "" {
		return nil
	}
	return &user
}

// resync recarrega o snapshot completo do remoto e sobrescreve a cópia
// local. Chamado após toda mutação remota bem-sucedida para conter o drift
// entre as duas fontes; é melhor esforço — se o GET /data falhar logo após
// a escrita, a cópia local fica para trás até a próxima sincronização.
func (s *Service) resync(ctx context.Context, token string) {
	raw, err := s.remote.Get(ctx, "/data", token)
	if err != nil {
		s.logger.Debug("Ressincronização pós-escrita indisponível.", nil)
		return
	}

	var snap domain.Snapshot
	if jsonErr := json.Unmarshal(raw, &snap); jsonErr != nil {
		s.logger.Debug("Ressincronização pós-escrita com snapshot ilegível.", nil)
		return
	}

	if err := s.local.Save(snap); err != nil {
		s.logger.Error("Falha ao sobrescrever o snapshot local na ressincronização.", err)
	}
}

// isUnavailable reconhece o marcador de remoto ausente.
func isUnavailable(err error) bool {
	var unavailable *apperror.UnavailableError
	return errors.As(err, &unavailable)
}

// isConflict reconhece o marcador de conflito (409) do transporte.
func isConflict(err error) bool {
	var conflict *apperror.ConflictError
	return errors.As(err, &conflict)
}
