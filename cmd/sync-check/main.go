package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"doacoes/config"
	"doacoes/internal/orchestrator"
	"doacoes/internal/pkg/logger"
	"doacoes/internal/remote"
	"doacoes/internal/service/donationservice"
	"doacoes/internal/store"
)

// sync-check é um cliente de fumaça do núcleo de sincronização: autentica e
// lista as causas pelo mesmo caminho que a UI usa. Com o backend no ar, o
// resultado vem do remoto; com o backend fora, vem do snapshot local — útil
// para verificar o fallback sem subir tela nenhuma.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado. Usando padrões do cliente.")
	}

	var email, password string
	flag.StringVar(&email, "email", store.AdminEmail, "e-mail para autenticar")
	flag.StringVar(&password, "password", store.AdminPassword, "senha para autenticar")
	flag.Parse()

	cfg := config.LoadClientConfig()
	appLog := logger.NewLogger(cfg.LogLevel)

	remoteClient := remote.NewClient(cfg.RemoteBaseURL, cfg.RemoteTimeout, appLog)
	localStore := store.NewStore(cfg.DataFile, appLog)
	orch := orchestrator.New(remoteClient, localStore, appLog)
	svc := donationservice.NewService(remoteClient, orch, localStore, appLog)

	ctx := context.Background()

	sess, err := svc.Authenticate(ctx, email, password)
	if err != nil {
		appLog.Fatal("Autenticação falhou.", err)
	}

	source := "remoto"
	if sess.Token == "" {
		source = "local (fallback)"
	}
	fmt.Printf("Autenticado como %s (%s) via %s\n", sess.Name, sess.Role, source)

	causes, err := svc.ListCauses(ctx)
	if err != nil {
		appLog.Fatal("Falha ao listar causas.", err)
	}

	fmt.Printf("%d causa(s) publicada(s):\n", len(causes))
	for _, c := range causes {
		fmt.Printf("  - %s (R$ %.2f) [%s]\n", c.Title, c.Value, c.ID)
	}
}
