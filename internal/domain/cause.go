package domain

import "context"

// Cause representa uma campanha de arrecadação publicada por um receptor.
// ReceptorID referencia um User com role recipient no momento da criação;
// causas órfãs de um receptor já excluído são toleradas apenas quando a
// exclusão acontece fora da cascata de DeleteUser.
type Cause struct {
	ID          string  `json:"id"`
	ReceptorID  string  `json:"receptor_id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Value       float64 `json:"value"`
}

// CauseRepository define o contrato de persistência do backend para a entidade Cause.
type CauseRepository interface {
	Save(ctx context.Context, cause Cause) (Cause, error)
	FindByID(ctx context.Context, id string) (Cause, error)
	FindAll(ctx context.Context) ([]Cause, error)
	Delete(ctx context.Context, id string) error
	DeleteByReceptor(ctx context.Context, receptorID string) error
	ReplaceAll(ctx context.Context, causes []Cause) error
}
