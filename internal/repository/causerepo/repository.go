package causerepo

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
	"doacoes/internal/pkg/cache"
	"doacoes/internal/pkg/logger"
)

// Chave de cache da listagem de causas (o feed do doador lê isso o tempo todo).
const causeListCacheKey = "causes:all"

// CauseRepository implementa a interface domain.CauseRepository sobre o
// PostgreSQL, com cache-aside no Redis para a listagem. Toda escrita
// invalida a lista cacheada.
type CauseRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewCauseRepository cria e retorna uma nova instância do Repositório,
// injetando as dependências de infraestrutura (DB e Cache).
func NewCauseRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, log logger.Logger) *CauseRepository {
	return &CauseRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    log,
	}
}

// Save persiste uma nova causa, gerando o id quando ausente.
func (r *CauseRepository) Save(ctx context.Context, cause domain.Cause) (domain.Cause, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if cause.ID == "" {
		cause.ID = uuid.NewString()
	}

	const insertSQL = `INSERT INTO causes (id, receptor_id, title, description, value)
	                   VALUES ($1,$2,$3,$4,$5)`

	_, err := r.DB.ExecContext(ctxTimeout, insertSQL,
		cause.ID,
		cause.ReceptorID,
		cause.Title,
		cause.Description,
		cause.Value,
	)
	if err != nil {
		return domain.Cause{}, apperror.NewDBError("failed to insert cause", err)
	}

	r.invalidateList(ctxTimeout)
	r.logger.Info("Causa salva no repositório.", map[string]interface{}{"cause_id": cause.ID})
	return cause, nil
}

// FindByID busca uma causa pelo id.
func (r *CauseRepository) FindByID(ctx context.Context, id string) (domain.Cause, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	const query = `SELECT id, receptor_id, title, description, value FROM causes WHERE id = $1`
	row := r.DB.QueryRowContext(ctxTimeout, query, id)

	var cause domain.Cause
	err := row.Scan(&cause.ID, &cause.ReceptorID, &cause.Title, &cause.Description, &cause.Value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cause{}, apperror.NewNotFoundError(fmt.Sprintf("Causa '%s' não encontrada", id))
		}
		return domain.Cause{}, apperror.NewDBError("failed to find cause", err)
	}

	return cause, nil
}

// FindAll lista todas as causas com estratégia Cache-Aside:
// tenta o Redis; no miss (ou falha de cache), vai ao DB e repovoa.
func (r *CauseRepository) FindAll(ctx context.Context) ([]domain.Cause, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	// 1. Tentar o cache
	var causes []domain.Cause
	cached, err := r.Cache.Get(ctxTimeout, causeListCacheKey)
	if err == nil {
		if json.Unmarshal([]byte(cached), &causes) == nil {
			return causes, nil
		}
		// Cache ilegível: segue para o DB e sobrescreve.
	} else if err != cache.ErrCacheMiss {
		// Falha real de cache (conexão perdida): não bloqueia a leitura.
		r.logger.Debug("Cache indisponível na listagem de causas.", nil)
	}

	// 2. Busca no Banco de Dados
	const query = `SELECT id, receptor_id, title, description, value FROM causes ORDER BY title`
	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		return nil, apperror.NewDBError("failed to list causes", err)
	}
	defer rows.Close()

	causes = []domain.Cause{}
	for rows.Next() {
		var cause domain.Cause
		if err := rows.Scan(&cause.ID, &cause.ReceptorID, &cause.Title, &cause.Description, &cause.Value); err != nil {
			return nil, apperror.NewDBError("failed to scan cause", err)
		}
		causes = append(causes, cause)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDBError("failed to iterate causes", err)
	}

	// 3. Repovoar o cache (melhor esforço)
	if raw, err := json.Marshal(causes); err == nil {
		r.Cache.Set(ctxTimeout, causeListCacheKey, string(raw), r.CacheTTL)
	}

	return causes, nil
}

// Delete remove uma causa pelo id.
func (r *CauseRepository) Delete(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	result, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM causes WHERE id = $1`, id)
	if err != nil {
		return apperror.NewDBError("failed to delete cause", err)
	}

	if affected, _ := result.RowsAffected(); affected == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Causa '%s' não encontrada", id))
	}

	r.invalidateList(ctxTimeout)
	return nil
}

// DeleteByReceptor remove todas as causas de um receptor — a cascata da
// exclusão de usuário.
func (r *CauseRepository) DeleteByReceptor(ctx context.Context, receptorID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	_, err := r.DB.ExecContext(ctxTimeout, `DELETE FROM causes WHERE receptor_id = $1`, receptorID)
	if err != nil {
		return apperror.NewDBError("failed to cascade causes", err)
	}

	r.invalidateList(ctxTimeout)
	return nil
}

// ReplaceAll troca a tabela inteira pelo conjunto informado, em uma transação.
func (r *CauseRepository) ReplaceAll(ctx context.Context, causes []domain.Cause) error {
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

	if _, err = tx.ExecContext(ctxTimeout, `DELETE FROM causes`); err != nil {
		return apperror.NewDBError("failed to clear causes", err)
	}

	const insertSQL = `INSERT INTO causes (id, receptor_id, title, description, value)
	                   VALUES ($1,$2,$3,$4,$5)`

	for _, cause := range causes {
		_, err = tx.ExecContext(ctxTimeout, insertSQL,
			cause.ID,
			cause.ReceptorID,
			cause.Title,
			cause.Description,
			cause.Value,
		)
		if err != nil {
			return apperror.NewDBError("failed to insert cause (replace)", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return apperror.NewDBError("failed to commit tx", err)
	}

	r.invalidateList(ctxTimeout)
	return nil
}

// invalidateList descarta a listagem cacheada após qualquer escrita.
func (r *CauseRepository) invalidateList(ctx context.Context) {
	if err := r.Cache.Delete(ctx, causeListCacheKey); err != nil && err != cache.ErrCacheMiss {
		r.logger.Debug("Falha ao invalidar o cache de causas.", nil)
	}
}
