package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperror "doacoes/internal/errors"
	"doacoes/internal/pkg/logger"
)

// Client é o acessador HTTP do serviço remoto de doações. É stateless:
// cada chamada é requisição/resposta, sem retry, sem backoff e sem pool
// além do que o http.Client padrão já faz.
//
// O contrato de resultado é uniforme: corpo JSON em caso de sucesso
// (status 200–299); UnavailableError para qualquer falha de transporte ou
// status fora da faixa — para quem chama, "caiu a rede" e "não encontrado"
// são o mesmo sinal de ausência; ConflictError apenas para 409, que as
// operações de escrita precisam distinguir (e-mail já cadastrado).
type Client struct {
	baseURL string
	http    *http.Client
	logger  logger.Logger
}

// NewClient cria o acessador remoto. O timeout deve ser curto (centenas de
// milissegundos): a prioridade é liberar a UI para o fallback local rápido,
// não esperar um sucesso lento.
func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  log,
	}
}

// Get executa GET no caminho informado.
func (c *Client) Get(ctx context.Context, path string, token string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, token, nil)
}

// Post executa POST com o corpo serializado como JSON.
func (c *Client) Post(ctx context.Context, path string, token string, body interface{}) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, token, body)
}

// Put executa PUT com o corpo serializado como JSON.
func (c *Client) Put(ctx context.Context, path string, token string, body interface{}) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPut, path, token, body)
}

// Delete executa DELETE no caminho informado.
func (c *Client) Delete(ctx context.Context, path string, token string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, path, token, nil)
}

// do monta e executa a requisição, aplicando o contrato uniforme de resultado.
func (c *Client) do(ctx context.Context, method, path, token string, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, apperror.NewInternalError("Falha ao serializar o corpo da requisição.", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, apperror.NewInternalError("Falha ao montar a requisição remota.", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Conexão recusada, timeout, DNS: tudo colapsa em "ausente".
		c.logger.Debug("Chamada remota falhou no transporte.", map[string]interface{}{
			"method": method, "path": path,
		})
		return nil, apperror.NewUnavailableError(fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.NewUnavailableError(fmt.Sprintf("%s %s: leitura do corpo", method, path), err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return json.RawMessage(respBody), nil
	case resp.StatusCode == http.StatusConflict:
		// Único status de aplicação que atravessa como marcador próprio.
		return nil, apperror.NewConflictError(fmt.Sprintf("%s %s retornou 409", method, path))
	default:
		c.logger.Debug("Chamada remota retornou status fora da faixa de sucesso.", map[string]interface{}{
			"method": method, "path": path, "status": resp.StatusCode,
		})
		return nil, apperror.NewUnavailableError(
			fmt.Sprintf("%s %s retornou status %d", method, path, resp.StatusCode), nil)
	}
}
