package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doacoes/internal/domain"
	"doacoes/internal/pkg/logger"
	"doacoes/internal/store"
)

// TestLoad_SeedsAdminOnFirstUse verifica que o primeiro Load cria o arquivo
// com o administrador padrão e o persiste imediatamente.
func TestLoad_SeedsAdminOnFirstUse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s := store.NewStore(path, logger.NewLogger("error"))

	snap, err := s.Load()

	require.NoError(t, err)
	require.Len(t, snap.Users, 1)
	admin := snap.Users[0]
	assert.Equal(t, store.AdminID, admin.ID)
	assert.Equal(t, store.AdminEmail, admin.Email)
	assert.Equal(t, store.AdminPassword, admin.Password)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Empty(t, snap.Causes)

	// O arquivo foi gravado na hora, não só devolvido em memória
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

// TestSaveLoad_RoundTrip verifica que Save substitui o documento inteiro e
// Load o devolve fielmente.
func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	s := store.NewStore(path, logger.NewLogger("error"))

	snap := domain.Snapshot{
		Users: []domain.User{
			{ID: "u1", Role: domain.RoleDonor, Name: "Maria", Email: "maria@x.com", Password: "pw123", Favorites: []string{"c1"}},
			{ID: "u2", Role: domain.RoleRecipient, Name: "Abrigo", Email: "abrigo@x.com", Password: "pw", PixKey: "chave"},
		},
		Causes: []domain.Cause{
			{ID: "c1", ReceptorID: "u2", Title: "Cobertores", Value: 25.5},
		},
	}

	require.NoError(t, s.Save(snap))

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, snap, loaded)
}

// TestLoad_CorruptedFile verifica que um snapshot ilegível vira erro, não pânico.
func TestLoad_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte("{nao-e-json"), 0o644))

	s := store.NewStore(path, logger.NewLogger("error"))
	_, err := s.Load()

	assert.Error(t, err)
}
