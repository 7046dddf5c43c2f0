package domain

import "context"

// User representa a entidade do usuário no sistema de doações.
// A senha trafega e persiste em texto puro, comparada literalmente — é o
// comportamento vigente do sistema, inclusive no snapshot completo que o
// endpoint /data devolve. Os campos Document, PostalCode, Description e
// PixKey só são preenchidos quando Role = recipient; Favorites só quando
// Role = donor.
type User struct {
	ID          string   `json:"id"`
	Role        UserRole `json:"role"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Document    string   `json:"document,omitempty"`
	PostalCode  string   `json:"postal_code,omitempty"`
	Description string   `json:"description,omitempty"`
	PixKey      string   `json:"pix_key,omitempty"`
	Favorites   []string `json:"favorites,omitempty"`
}

// UserRole é um tipo string para representar o papel do usuário no sistema.
type UserRole string

// Constantes para os papéis de usuário
const (
	RoleDonor     UserRole = "donor"
	RoleRecipient UserRole = "recipient"
	RoleAdmin     UserRole = "admin"
)

// UserRegistration representa o payload de entrada para o cadastro.
type UserRegistration struct {
	Role        UserRole `json:"role"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	Document    string   `json:"document,omitempty"`
	PostalCode  string   `json:"postal_code,omitempty"`
	Description string   `json:"description,omitempty"`
	PixKey      string   `json:"pix_key,omitempty"`
}

// HasFavorite verifica se o id de causa está na lista de favoritos.
func (u *User) HasFavorite(causeID string) bool {
	for _, id := range u.Favorites {
		if id == causeID {
			return true
		}
	}
	return false
}

// UserRepository define o contrato de persistência do backend para a entidade User.
type UserRepository interface {
	Save(ctx context.Context, user User) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindAll(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user User) (User, error)
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, users []User) error
}
