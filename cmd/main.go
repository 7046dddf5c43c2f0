package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Infraestrutura e utilitários
	"doacoes/config"
	"doacoes/internal/pkg/cache"
	"doacoes/internal/pkg/database"
	"doacoes/internal/pkg/logger"
	"doacoes/internal/pkg/token"

	// Camadas para Injeção de Dependências
	"doacoes/internal/api/account"
	"doacoes/internal/api/cause"
	"doacoes/internal/api/router"
	"doacoes/internal/api/snapshot"
	"doacoes/internal/repository/causerepo"
	"doacoes/internal/repository/userrepo"
	"doacoes/internal/service/accountservice"
	"doacoes/internal/service/causeservice"
	"doacoes/internal/service/snapshotservice"
)

func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando o backend de doações...")

	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	if err := godotenv.Load(); err != nil {
		// Sem .env seguimos em frente: as variáveis essenciais podem
		// estar no ambiente do sistema (ex: Docker).
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	appLog := logger.NewLogger(cfg.LogLevel)
	appLog.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	appLog.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	appLog.Info("Cliente Redis inicializado.", nil)

	// C. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	appLog.Debug("Serviço de Tokens JWT inicializado.", nil)

	// 3. Injeção de Dependências (Repository -> Service -> Handler)

	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, appLog)
	causeRepo := causerepo.NewCauseRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, appLog)
	appLog.Debug("Repositórios inicializados.", nil)

	accountSvc := accountservice.NewService(userRepo, causeRepo, tokenSvc, appLog)
	causeSvc := causeservice.NewService(causeRepo, userRepo, appLog)
	snapshotSvc := snapshotservice.NewService(userRepo, causeRepo, appLog)
	appLog.Debug("Serviços inicializados.", nil)

	accountHandler := account.NewHandler(accountSvc, appLog)
	causeHandler := cause.NewHandler(causeSvc, appLog)
	snapshotHandler := snapshot.NewHandler(snapshotSvc, appLog)
	appLog.Debug("Handlers inicializados.", nil)

	// 4. Configuração e Início do Roteador/Servidor

	r := router.NewRouter(accountHandler, causeHandler, snapshotHandler, tokenSvc, cacheClient,
		cfg.RateLimitMaxRequests, cfg.RateLimitPeriod)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Backend de doações ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
}
