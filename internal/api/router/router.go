package router

import (
	"net/http"
	"time"

	"doacoes/internal/api/account"
	"doacoes/internal/api/cause"
	"doacoes/internal/api/snapshot"
	"doacoes/internal/domain"
	"doacoes/internal/pkg/cache"
	"doacoes/internal/pkg/middleware"
)

// NewRouter configura e retorna o roteador HTTP principal, expondo a
// superfície consumida pelo núcleo de sincronização dos clientes.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(
	accountHandler *account.Handler,
	causeHandler *cause.Handler,
	snapshotHandler *snapshot.Handler,
	tokenSvc middleware.TokenService,
	cacheClient cache.Client,
	rateLimitMax int,
	rateLimitPeriod time.Duration,
) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	mux := http.NewServeMux()

	auth := middleware.NewAuthMiddleware(tokenSvc)
	adminOnly := middleware.PermissionMiddleware(domain.RoleAdmin)

	// --- 1. Rota de Health Check ---
	mux.HandleFunc("/ping", PingHandler)

	// --- 2. Autenticação (rate limit por IP contra força bruta) ---
	limiter := middleware.RateLimiter(cacheClient, rateLimitMax, rateLimitPeriod)
	mux.Handle("/login", limiter(http.HandlerFunc(accountHandler.LoginHandler)))

	// --- 3. Usuários ---
	// POST cadastra (aberto); GET busca por e-mail (aberto).
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			accountHandler.RegisterHandler(w, r)
		case http.MethodGet:
			accountHandler.LookupHandler(w, r)
		default:
			http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		}
	})

	// Alias legado de cadastro mantido para clientes antigos.
	mux.HandleFunc("/cadastrate", accountHandler.RegisterHandler)

	// PUT /users/{id} (token); DELETE /users/{id} (token + admin — a
	// autoexclusão é rejeitada no serviço, então excluir usuário é sempre
	// ato de administrador sobre terceiros).
	updateUser := auth(accountHandler.UserByIDHandler)
	deleteUser := auth(adminOnly(accountHandler.UserByIDHandler))
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			updateUser(w, r)
		case http.MethodDelete:
			deleteUser(w, r)
		default:
			http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		}
	})

	// --- 4. Causas ---
	createCause := auth(causeHandler.CreateHandler)
	mux.HandleFunc("/causes", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			causeHandler.ListHandler(w, r)
		case http.MethodPost:
			createCause(w, r)
		default:
			http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/causes/", auth(causeHandler.DeleteHandler))

	// --- 5. Snapshot completo ---
	replaceSnapshot := auth(snapshotHandler.ReplaceHandler)
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			snapshotHandler.GetHandler(w, r)
		case http.MethodPut:
			replaceSnapshot(w, r)
		default:
			http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		}
	})

	return mux
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
