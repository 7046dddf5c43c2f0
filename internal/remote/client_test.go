package remote_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperror "doacoes/internal/errors"
	"doacoes/internal/pkg/logger"
	"doacoes/internal/remote"
)

func newClient(baseURL string) *remote.Client {
	return remote.NewClient(baseURL, 500*time.Millisecond, logger.NewLogger("error"))
}

// TestGet_Success verifica o contrato de sucesso: status 2xx devolve o corpo.
func TestGet_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/causes", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":"c1"}]`))
	}))
	defer server.Close()

	raw, err := newClient(server.URL).Get(context.Background(), "/causes", "")

	require.NoError(t, err)
	var causes []map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &causes))
	assert.Len(t, causes, 1)
}

// TestPost_SendsBodyAndBearer verifica a serialização do corpo e o header
// Authorization quando há token.
func TestPost_SendsBodyAndBearer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer jwt-abc", r.Header.Get("Authorization"))

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Cobertores", payload["title"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"c1"}`))
	}))
	defer server.Close()

	raw, err := newClient(server.URL).Post(context.Background(), "/causes", "jwt-abc",
		map[string]string{"title": "Cobertores"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"c1"}`, string(raw))
}

// TestConflict_IsDistinguishable verifica que 409 atravessa como marcador
// próprio de conflito, diferente da ausência genérica.
func TestConflict_IsDistinguishable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	_, err := newClient(server.URL).Post(context.Background(), "/users", "", map[string]string{})

	var conflictErr *apperror.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

// TestNonSuccessStatus_CollapsesToAbsent verifica que 404, 401 e 500 são
// indistinguíveis entre si: todos viram o marcador de ausência.
func TestNonSuccessStatus_CollapsesToAbsent(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusUnauthorized, http.StatusInternalServerError} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		_, err := newClient(server.URL).Get(context.Background(), "/data", "")
		server.Close()

		var unavailableErr *apperror.UnavailableError
		assert.ErrorAs(t, err, &unavailableErr, "status %d deve colapsar em ausência", status)
	}
}

// TestTransportFailure_CollapsesToAbsent verifica conexão recusada.
func TestTransportFailure_CollapsesToAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // derruba o servidor antes da chamada

	_, err := newClient(server.URL).Get(context.Background(), "/data", "")

	var unavailableErr *apperror.UnavailableError
	assert.ErrorAs(t, err, &unavailableErr)
}

// TestTimeout_CollapsesToAbsent verifica que o timeout curto vira ausência
// em vez de bloquear o chamador.
func TestTimeout_CollapsesToAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	start := time.Now()
	_, err := newClient(server.URL).Get(context.Background(), "/data", "")
	elapsed := time.Since(start)

	var unavailableErr *apperror.UnavailableError
	assert.ErrorAs(t, err, &unavailableErr)
	assert.Less(t, elapsed, 1500*time.Millisecond, "a chamada deve desistir no timeout curto")
}
