package userrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"doacoes/internal/domain"
	apperror "doacoes/internal/errors"
	"doacoes/internal/pkg/logger"
)

const userColumns = `id, role, name, email, password, document, postal_code, description, pix_key, favorites`

// UserRepository implementa a interface domain.UserRepository sobre o PostgreSQL.
// A senha é persistida literal e a lista de favoritos como jsonb, porque o
// registro inteiro precisa sobreviver à viagem de ida e volta pelo snapshot
// completo (GET/PUT /data) sem perda.
type UserRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sql.DB, dbTimeout time.Duration, log logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    log,
	}
}

// Save insere um novo usuário, gerando o id quando ausente.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	favorites, err := marshalFavorites(user.Favorites)
	if err != nil {
		return domain.User{}, err
	}

	const insertSQL = `INSERT INTO users (` + userColumns + `)
	                   VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`

	_, err = r.DB.ExecContext(ctxTimeout, insertSQL,
		user.ID,
		user.Role,
		user.Name,
		user.Email,
		user.Password,
		user.Document,
		user.PostalCode,
		user.Description,
		user.PixKey,
		favorites,
	)
	if err != nil {
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("failed to insert user", err)
	}

	r.logger.Info("Usuário salvo no repositório.", map[string]interface{}{"user_id": user.ID})
	return user, nil
}

// FindByID busca um usuário pelo id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctxTimeout, query, id), fmt.Sprintf("Usuário '%s' não encontrado", id))
}

// FindByEmail busca um usuário pelo e-mail, sem distinção de caixa.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return r.scanOne(r.DB.QueryRowContext(ctxTimeout, query, email), fmt.Sprintf("Usuário com email '%s' não encontrado", email))
}

// FindAll retorna todos os usuários (metade do snapshot completo).
func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users ORDER BY name`
	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		return nil, apperror.NewDBError("failed to list users", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate users", err)
	}

	return users, nil
}

// Update substitui o registro inteiro do usuário (nunca um patch parcial).
func (r *UserRepository) Update(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	favorites, err := marshalFavorites(user.Favorites)
	if err != nil {
		return domain.User{}, err
	}

	const updateSQL = `UPDATE users
	                   SET role=$2, name=$3, email=$4, password=$5, document=$6,
	                       postal_code=$7, description=$8, pix_key=$9, favorites=$10
	                   WHERE id=$1`

	result, err := r.DB.ExecContext(ctxTimeout, updateSQL,
		user.ID,
		user.Role,
		user.Name,
		user.Email,
		user.Password,
		user.Document,
		user.PostalCode,
		user.Description,
		user.PixKey,
		favorites,
	)
	if err != nil {
		return domain.User{}, apperror.NewDBError("failed to update user", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário '%s' não encontrado", user.ID))
	}

	return user, nil
}

// Delete remove um usuário pelo id.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDBError("failed to delete user", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Usuário '%s' não encontrado", id))
	}

	r.logger.Info("Usuário removido do repositório.", map[string]interface{}{"user_id": id})
	return nil
}

// ReplaceAll troca a tabela inteira pelo conjunto informado, em uma
// transação. Suporta o PUT /data, que substitui o snapshot por atacado.
func (r *UserRepository) ReplaceAll(ctx context.Context, users []domain.User) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return apperror.NewDBError("failed to start tx", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctxTimeout, `DELETE FROM users`); err != nil {
		return apperror.NewDBError("failed to clear users", err)
	}

	const insertSQL = `INSERT INTO users (` + userColumns + `)
	                   VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`

	for _, user := range users {
		var favorites []byte
		favorites, err = marshalFavorites(user.Favorites)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctxTimeout, insertSQL,
			user.ID,
			user.Role,
			user.Name,
			user.Email,
			user.Password,
			user.Document,
			user.PostalCode,
			user.Description,
			user.PixKey,
			favorites,
		)
		if err != nil {
			return apperror.NewDBError("failed to insert user (replace)", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return apperror.NewDBError("failed to commit tx", err)
	}

	return nil
}

// rowScanner cobre *sql.Row e *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanOne mapeia uma linha única, traduzindo sql.ErrNoRows para 404.
func (r *UserRepository) scanOne(row *sql.Row, notFoundMsg string) (domain.User, error) {
	user, err := scanUser(row)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.User{}, apperror.NewNotFoundError(notFoundMsg)
		}
		return domain.User{}, err
	}
	return user, nil
}

// scanUser mapeia as colunas para a struct domain.User.
func scanUser(row rowScanner) (domain.User, error) {
	var user domain.User
	var favorites []byte

	err := row.Scan(
		&user.ID,
		&user.Role,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.Document,
		&user.PostalCode,
		&user.Description,
		&user.PixKey,
		&favorites,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, apperror.NewNotFoundError("usuário não encontrado")
		}
		return domain.User{}, apperror.NewDBError("failed to scan user", err)
	}

	if len(favorites) > 0 {
		if err := json.Unmarshal(favorites, &user.Favorites); err != nil {
			return domain.User{}, apperror.NewDBError("failed to decode favorites", err)
		}
	}

	return user, nil
}

// marshalFavorites serializa a lista de favoritos para a coluna jsonb.
func marshalFavorites(favorites []string) ([]byte, error) {
	if favorites == nil {
		favorites = []string{}
	}
	raw, err := json.Marshal(favorites)
	if err != nil {
		return nil, apperror.NewInternalError("Falha ao serializar favoritos.", err)
	}
	return raw, nil
}
