package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config armazena todas as configurações do backend de doações.
// Os campos cobrem o servidor HTTP, o banco (PostgreSQL), o cache (Redis),
// a segurança (JWT) e o rate limiting do login.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// Banco de Dados (PostgreSQL)
	DatabaseURL string
	DBTimeout   time.Duration

	// Cache (Redis)
	RedisAddr string
	CacheTTL  time.Duration

	// Segurança (JWT)
	JWTSecretKey string
	TokenExpiry  time.Duration

	// Rate Limiting (aplicado ao /login)
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration
}

// ClientConfig armazena as configurações do núcleo de sincronização
// (RemoteClient + LocalStore). Nenhum campo é obrigatório: o cliente precisa
// funcionar mesmo sem ambiente configurado, caindo nos padrões.
type ClientConfig struct {
	// Endpoint base do serviço remoto (padrão: backend local na 8000).
	RemoteBaseURL string
	// Timeout curto e fixo das chamadas remotas. Deliberadamente pequeno
	// (centenas de ms) para que a UI nunca fique travada esperando um
	// serviço inalcançável.
	RemoteTimeout time.Duration
	// Arquivo do snapshot local.
	DataFile string

	LogLevel string
}

// LoadConfig carrega as configurações do servidor a partir das variáveis de ambiente.
func LoadConfig() *Config {
	cfg := &Config{
		// 1. Geral
		Port:        getEnv("PORT", "8000"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// 2. Banco de Dados (PostgreSQL)
		// mustGetEnv garante que o servidor não inicie sem credenciais de DB
		DatabaseURL: mustGetEnv("DATABASE_URL"),
		DBTimeout:   getDurationEnv("DB_TIMEOUT_SEC", 5) * time.Second,

		// 3. Cache (Redis)
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		CacheTTL:  getDurationEnv("CACHE_TTL_SEC", 30) * time.Second,

		// 4. Segurança (JWT)
		JWTSecretKey: mustGetEnv("JWT_SECRET_KEY"),
		TokenExpiry:  getDurationEnv("JWT_EXPIRY_MIN", 60) * time.Minute,

		// 5. Rate Limiting
		RateLimitMaxRequests: getIntEnv("RATE_LIMIT_MAX_REQUESTS", 30),
		RateLimitPeriod:      getDurationEnv("RATE_LIMIT_PERIOD_MIN", 1) * time.Minute,
	}

	return cfg
}

// LoadClientConfig carrega as configurações do cliente de sincronização.
// Diferente do servidor, nada aqui é fatal: todos os campos têm padrão.
func LoadClientConfig() *ClientConfig {
	return &ClientConfig{
		RemoteBaseURL: getEnv("REMOTE_BASE_URL", "http://localhost:8000"),
		RemoteTimeout: time.Duration(getIntEnv("REMOTE_TIMEOUT_MS", 800)) * time.Millisecond,
		DataFile:      getEnv("DATA_FILE", "data.json"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}
}

// Funções Helpers (Auxiliares)

// getEnv lê a variável de ambiente ou retorna um valor padrão.
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// mustGetEnv lê a variável de ambiente, fatal se não estiver presente.
func mustGetEnv(key string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Fatalf("❌ Erro de Configuração: A variável de ambiente %s deve ser definida.", key)
	return ""
}

// getDurationEnv lê uma variável de ambiente numérica e retorna-a como time.Duration.
func getDurationEnv(key string, defaultValue int) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return time.Duration(defaultValue)
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return time.Duration(defaultValue)
	}
	return time.Duration(value)
}

// getIntEnv lê uma variável de ambiente numérica e retorna-a como int.
func getIntEnv(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("⚠️ Aviso: Valor de %s ('%s') não é um número inteiro válido. Usando padrão (%d).", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
