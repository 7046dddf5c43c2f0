package donationservice_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"doacoes/internal/domain"
	apperror "doacoes/internal/errors"
	"doacoes/internal/orchestrator"
	"doacoes/internal/pkg/logger"
	"doacoes/internal/service/donationservice"
	"doacoes/internal/store"
)

// unavailableRemote simula o serviço remoto fora do ar: toda chamada
// colapsa no marcador de ausência, forçando o fallback local.
type unavailableRemote struct{}

func (unavailableRemote) Get(ctx context.Context, path, token string) (json.RawMessage, error) {
	return nil, apperror.NewUnavailableError(path, nil)
}

func (unavailableRemote) Post(ctx context.Context, path, token string, body interface{}) (json.RawMessage, error) {
	return nil, apperror.NewUnavailableError(path, nil)
}

func (unavailableRemote) Put(ctx context.Context, path, token string, body interface{}) (json.RawMessage, error) {
	return nil, apperror.NewUnavailableError(path, nil)
}

func (unavailableRemote) Delete(ctx context.Context, path, token string) (json.RawMessage, error) {
	return nil, apperror.NewUnavailableError(path, nil)
}

// MockRemote é o acessador remoto simulado para os caminhos de sucesso.
type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) Get(ctx context.Context, path, token string) (json.RawMessage, error) {
	args := m.Called(ctx, path, token)
	var raw json.RawMessage
	if v := args.Get(0); v != nil {
		raw = v.(json.RawMessage)
	}
	return raw, args.Error(1)
}

func (m *MockRemote) Post(ctx context.Context, path, token string, body interface{}) (json.RawMessage, error) {
	args := m.Called(ctx, path, token, body)
	var raw json.RawMessage
	if v := args.Get(0); v != nil {
		raw = v.(json.RawMessage)
	}
	return raw, args.Error(1)
}

func (m *MockRemote) Put(ctx context.Context, path, token string, body interface{}) (json.RawMessage, error) {
	args := m.Called(ctx, path, token, body)
	var raw json.RawMessage
	if v := args.Get(0); v != nil {
		raw = v.(json.RawMessage)
	}
	return raw, args.Error(1)
}

func (m *MockRemote) Delete(ctx context.Context, path, token string) (json.RawMessage, error) {
	args := m.Called(ctx, path, token)
	var raw json.RawMessage
	if v := args.Get(0); v != nil {
		raw = v.(json.RawMessage)
	}
	return raw, args.Error(1)
}

// newLocalService monta o serviço com o remoto fora do ar e um store real
// em arquivo temporário: o cenário de fallback puro.
func newLocalService(t *testing.T) (*donationservice.Service, *store.Store) {
	t.Helper()

	log := logger.NewLogger("error")
	localStore := store.NewStore(filepath.Join(t.TempDir(), "data.json"), log)
	remote := unavailableRemote{}
	orch := orchestrator.New(remote, localStore, log)

	return donationservice.NewService(remote, orch, localStore, log), localStore
}

func registerDonor(t *testing.T, svc *donationservice.Service, email, password string) domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), domain.UserRegistration{
		Role: domain.RoleDonor, Name: "Doador", Email: email, Password: password,
	})
	require.NoError(t, err)
	return user
}

func registerRecipient(t *testing.T, svc *donationservice.Service, email string) domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), domain.UserRegistration{
		Role:     domain.RoleRecipient,
		Name:     "Receptor",
		Email:    email,
		Password: "pw",
		Document: "123.456.789-00",
		PixKey:   "chave-pix",
	})
	require.NoError(t, err)
	return user
}

// TestAuthenticate_Local_CaseInsensitiveEmail verifica que o e-mail
// cadastrado com uma caixa autentica com outra, com a senha exata.
func TestAuthenticate_Local_CaseInsensitiveEmail(t *testing.T) {
	svc, _ := newLocalService(t)
	ctx := context.Background()

	registerDonor(t, svc, "A@x.com", "pw123")

	sess, err := svc.Authenticate(ctx, "a@X.COM", "pw123")

	assert.NoError(t, err)
	assert.Equal(t, domain.RoleDonor, sess.Role)
	assert.Empty(t, sess.Token, "fallback local não emite token")
}

// TestAuthenticate_Local_OpaqueFailure verifica que e-mail inexistente e
// senha incorreta produzem a mesma falha, sem revelar qual dos dois foi.
func TestAuthenticate_Local_OpaqueFailure(t *testing.T) {
	svc, _ := newLocalService(t)
	ctx := context.Background()

	registerDonor(t, svc, "maria@x.com", "pw123")

	_, errWrongPassword := svc.Authenticate(ctx, "maria@x.com", "errada")
	_, errUnknownEmail := svc.Authenticate(ctx, "ninguem@x.com", "pw123")

	var authErr1, authErr2 *apperror.UnauthorizedError
	require.ErrorAs(t, errWrongPassword, &authErr1)
	require.ErrorAs(t, errUnknownEmail, &authErr2)
	assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
}

// TestRegister_Validation verifica que campos obrigatórios vazios barram a
// operação antes de qualquer persistência.
func TestRegister_Validation(t *testing.T) {
	svc, _ := newLocalService(t)

	_, err := svc.Register(context.Background(), domain.UserRegistration{
		Name: "", Email: "x@x.com", Password: "pw",
	})

	var validationErr *apperror.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

// TestRegister_Local_DuplicateEmail verifica a unicidade (sem distinção de
// caixa) aplicada no caminho de fallback.
func TestRegister_Local_DuplicateEmail(t *testing.T) {
	svc, _ := newLocalService(t)

	registerDonor(t, svc, "maria@x.com", "pw123")
	_, err := svc.Register(context.Background(), domain.UserRegistration{
		Role: domain.RoleDonor, Name: "Outra Maria", Email: "MARIA@X.COM", Password: "pw456",
	})

	var conflictErr *apperror.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

// TestToggleFavorite_Idempotent verifica que dois toggles seguidos devolvem
// a lista de favoritos ao estado original, sem duplicatas no meio.
func TestToggleFavorite_Idempotent(t *testing.T) {
	svc, localStore := newLocalService(t)
	ctx := context.Background()

	donor := registerDonor(t, svc, "maria@x.com", "pw123")
	sess := domain.Session{UserID: donor.ID, Role: domain.RoleDonor}

	after1, err := svc.ToggleFavorite(ctx, sess, donor, "cause-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"cause-1"}, after1.Favorites)

	after2, err := svc.ToggleFavorite(ctx, sess, after1, "cause-1")
	require.NoError(t, err)
	assert.Empty(t, after2.Favorites)

	snap, err := localStore.Load()
	require.NoError(t, err)
	idx := snap.FindUserByID(donor.ID)
	require.GreaterOrEqual(t, idx, 0)
	assert.Empty(t, snap.Users[idx].Favorites)
}

// TestCreateCause_ValueNormalization verifica a vírgula decimal normalizada
// e a rejeição de valor não numérico antes de qualquer escrita.
func TestCreateCause_ValueNormalization(t *testing.T) {
	svc, localStore := newLocalService(t)
	ctx := context.Background()

	recipient := registerRecipient(t, svc, "abrigo@x.com")
	sess := domain.Session{UserID: recipient.ID, Role: domain.RoleRecipient}

	cause, err := svc.CreateCause(ctx, sess, "Cobertores", "Inverno no Sul", "50,00")
	require.NoError(t, err)
	assert.Equal(t, 50.00, cause.Value)

	_, err = svc.CreateCause(ctx, sess, "Inválida", "", "abc")
	var validationErr *apperror.ValidationError
	require.ErrorAs(t, err, &validationErr)

	snap, err := localStore.Load()
	require.NoError(t, err)
	assert.Len(t, snap.Causes, 1, "a causa inválida não pode ter sido gravada")
}

// TestCreateCause_RequiresRecipient verifica que o fallback local também
// exige um receptor existente com a role certa.
func TestCreateCause_RequiresRecipient(t *testing.T) {
	svc, _ := newLocalService(t)
	ctx := context.Background()

	donor := registerDonor(t, svc, "maria@x.com", "pw123")
	sess := domain.Session{UserID: donor.ID, Role: domain.RoleDonor}

	_, err := svc.CreateCause(ctx, sess, "Cobertores", "", "10")

	var validationErr *apperror.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

// TestDeleteUser_SelfRejected verifica a autoproteção: nenhuma mutação em
// nenhum store quando o alvo é o próprio chamador.
func TestDeleteUser_SelfRejected(t *testing.T) {
	svc, localStore := newLocalService(t)
	ctx := context.Background()

	sess := domain.Session{UserID: store.AdminID, Role: domain.RoleAdmin}
	before, err := localStore.Load()
	require.NoError(t, err)

	err = svc.DeleteUser(ctx, sess, store.AdminID)

	var validationErr *apperror.ValidationError
	require.ErrorAs(t, err, &validationErr)

	after, err := localStore.Load()
	require.NoError(t, err)
	assert.Equal(t, before, after, "o snapshot não pode ter sido alterado")
}

// TestDeleteUser_CascadesCauses verifica a cascata: só as causas do usuário
// excluído somem.
func TestDeleteUser_CascadesCauses(t *testing.T) {
	svc, localStore := newLocalService(t)
	ctx := context.Background()

	r1 := registerRecipient(t, svc, "abrigo1@x.com")
	r2 := registerRecipient(t, svc, "abrigo2@x.com")
	sess1 := domain.Session{UserID: r1.ID, Role: domain.RoleRecipient}
	sess2 := domain.Session{UserID: r2.ID, Role: domain.RoleRecipient}

	_, err := svc.CreateCause(ctx, sess1, "Cobertores", "", "25,50")
	require.NoError(t, err)
	kept, err := svc.CreateCause(ctx, sess2, "Alimentos", "", "100")
	require.NoError(t, err)

	admin := domain.Session{UserID: store.AdminID, Role: domain.RoleAdmin}
	require.NoError(t, svc.DeleteUser(ctx, admin, r1.ID))

	snap, err := localStore.Load()
	require.NoError(t, err)
	assert.Less(t, snap.FindUserByID(r1.ID), 0)
	require.Len(t, snap.Causes, 1)
	assert.Equal(t, kept.ID, snap.Causes[0].ID)
}

// TestFallback_MutationsReflectedOnce verifica que, com o remoto sempre
// ausente, cada operação persiste exatamente uma vez no snapshot recarregado.
func TestFallback_MutationsReflectedOnce(t *testing.T) {
	svc, localStore := newLocalService(t)
	ctx := context.Background()

	donor := registerDonor(t, svc, "maria@x.com", "pw123")
	recipient := registerRecipient(t, svc, "abrigo@x.com")
	recSess := domain.Session{UserID: recipient.ID, Role: domain.RoleRecipient}

	cause, err := svc.CreateCause(ctx, recSess, "Cobertores", "", "25,50")
	require.NoError(t, err)

	snap, err := localStore.Load()
	require.NoError(t, err)

	// admin semeado + doador + receptor, cada um uma vez
	assert.Len(t, snap.Users, 3)
	assert.Len(t, snap.Causes, 1)
	assert.GreaterOrEqual(t, snap.FindUserByID(donor.ID), 0)
	assert.GreaterOrEqual(t, snap.FindCauseByID(cause.ID), 0)
}

// TestEndToEnd_LocalScenario percorre o cenário completo: admin semeado,
// cadastro, autenticação, causa publicada, favorito e exclusão com cascata
// deixando o favorito órfão (limpeza não acontece, por contrato).
func TestEndToEnd_LocalScenario(t *testing.T) {
	svc, localStore := newLocalService(t)
	ctx := context.Background()

	// 1. Store recém-criado contém o administrador padrão
	snap, err := localStore.Load()
	require.NoError(t, err)
	require.Len(t, snap.Users, 1)
	assert.Equal(t, "admin@local", snap.Users[0].Email)

	// 2. Cadastro e autenticação do doador
	donor := registerDonor(t, svc, "maria@x.com", "pw123")
	donorSess, err := svc.Authenticate(ctx, "maria@x.com", "pw123")
	require.NoError(t, err)

	// 3. Receptor publica a causa "Blankets"
	recipient := registerRecipient(t, svc, "abrigo@x.com")
	recSess := domain.Session{UserID: recipient.ID, Role: domain.RoleRecipient}
	blankets, err := svc.CreateCause(ctx, recSess, "Blankets", "Cobertores para o inverno", "25,50")
	require.NoError(t, err)
	assert.Equal(t, 25.50, blankets.Value)

	// 4. Doador favorita a causa
	donorAfter, err := svc.ToggleFavorite(ctx, donorSess, donor, blankets.ID)
	require.NoError(t, err)
	require.Equal(t, []string{blankets.ID}, donorAfter.Favorites)

	// 5. Admin exclui o receptor: a causa some da listagem...
	adminSess := domain.Session{UserID: store.AdminID, Role: domain.RoleAdmin}
	require.NoError(t, svc.DeleteUser(ctx, adminSess, recipient.ID))

	causes, err := svc.ListCauses(ctx)
	require.NoError(t, err)
	assert.Empty(t, causes)

	// 6. ...mas o favorito do doador NÃO é limpo (órfão esperado)
	snap, err = localStore.Load()
	require.NoError(t, err)
	idx := snap.FindUserByID(donor.ID)
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, []string{blankets.ID}, snap.Users[idx].Favorites)
}

// TestAuthenticate_RemoteSuccess verifica o caminho remoto: POST /login
// devolve token e usuário com a role explícita.
func TestAuthenticate_RemoteSuccess(t *testing.T) {
	log := logger.NewLogger("error")
	localStore := store.NewStore(filepath.Join(t.TempDir(), "data.json"), log)
	mockRemote := new(MockRemote)
	orch := orchestrator.New(mockRemote, localStore, log)
	svc := donationservice.NewService(mockRemote, orch, localStore, log)

	response := json.RawMessage(`{"token":"jwt-abc","user":{"id":"u1","role":"recipient","name":"Abrigo","email":"abrigo@x.com","password":"pw"}}`)
	mockRemote.On("Post", mock.Anything, "/login", "", mock.Anything).Return(response, nil)

	sess, err := svc.Authenticate(context.Background(), "abrigo@x.com", "pw")

	assert.NoError(t, err)
	assert.Equal(t, "u1", sess.UserID)
	assert.Equal(t, domain.RoleRecipient, sess.Role)
	assert.Equal(t, "jwt-abc", sess.Token)
	mockRemote.AssertExpectations(t)
}

// TestRegister_RemoteConflict verifica que o 409 do servidor atravessa como
// conflito ("já cadastrado") em vez de cair para o store local.
func TestRegister_RemoteConflict(t *testing.T) {
	log := logger.NewLogger("error")
	localStore := store.NewStore(filepath.Join(t.TempDir(), "data.json"), log)
	mockRemote := new(MockRemote)
	orch := orchestrator.New(mockRemote, localStore, log)
	svc := donationservice.NewService(mockRemote, orch, localStore, log)

	mockRemote.On("Post", mock.Anything, "/users", "", mock.Anything).
		Return(nil, apperror.NewConflictError("POST /users retornou 409"))

	_, err := svc.Register(context.Background(), domain.UserRegistration{
		Role: domain.RoleDonor, Name: "Maria", Email: "maria@x.com", Password: "pw123",
	})

	var conflictErr *apperror.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
	mockRemote.AssertExpectations(t)
}

// TestCreateCause_RemoteResync verifica que a mutação remota bem-sucedida é
// seguida da recarga do snapshot completo e da sobrescrita da cópia local.
func TestCreateCause_RemoteResync(t *testing.T) {
	log := logger.NewLogger("error")
	localStore := store.NewStore(filepath.Join(t.TempDir(), "data.json"), log)
	mockRemote := new(MockRemote)
	orch := orchestrator.New(mockRemote, localStore, log)
	svc := donationservice.NewService(mockRemote, orch, localStore, log)

	created := json.RawMessage(`{"id":"c1","receptor_id":"u1","title":"Cobertores","value":50}`)
	remoteSnap := json.RawMessage(`{"users":[{"id":"u1","role":"recipient","name":"Abrigo","email":"abrigo@x.com","password":"pw"}],"causes":[{"id":"c1","receptor_id":"u1","title":"Cobertores","value":50}]}`)

	mockRemote.On("Post", mock.Anything, "/causes", "jwt-abc", mock.Anything).Return(created, nil)
	mockRemote.On("Get", mock.Anything, "/data", "jwt-abc").Return(remoteSnap, nil)

	sess := domain.Session{UserID: "u1", Role: domain.RoleRecipient, Token: "jwt-abc"}
	cause, err := svc.CreateCause(context.Background(), sess, "Cobertores", "", "50,00")

	require.NoError(t, err)
	assert.Equal(t, "c1", cause.ID)

	// A cópia local foi sobrescrita com o snapshot remoto inteiro
	snap, err := localStore.Load()
	require.NoError(t, err)
	require.Len(t, snap.Causes, 1)
	assert.Equal(t, "c1", snap.Causes[0].ID)
	require.Len(t, snap.Users, 1)
	assert.Equal(t, "u1", snap.Users[0].ID)
	mockRemote.AssertExpectations(t)
}
