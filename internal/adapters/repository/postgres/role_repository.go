package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/talent-guard/internal/core/compensation"
	"github.com/ogurasousui/talent-guard/internal/core/role"
	pgdb "github.com/ogurasousui/talent-guard/internal/platform/db/postgres"
)

const roleColumns = `id, name, level, created_at, updated_at`

// RoleRepository は roles テーブルを利用した職種カタログの実装です。
type RoleRepository struct {
	pool pgdb.Queryer
}

// NewRoleRepository は RoleRepository を生成します。
func NewRoleRepository(pool pgdb.Queryer) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// Create は職種を登録します。
func (r *RoleRepository) Create(ctx context.Context, in *role.Role) (*role.Role, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO roles (name, level, created_at, updated_at)
        VALUES ($1, $2, $3, $4)
        RETURNING `+roleColumns+`
    `, in.Name, string(in.Level), in.CreatedAt, in.UpdatedAt)

	created, err := scanRole(row)
	if err != nil {
		return nil, translateRolePgError(err)
	}
	return created, nil
}

// Update は職種名と等級を更新します。
func (r *RoleRepository) Update(ctx context.Context, in *role.Role) (*role.Role, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE roles
           SET name = $1,
               level = $2,
               updated_at = $3
         WHERE id = $4
        RETURNING `+roleColumns+`
    `, in.Name, string(in.Level), in.UpdatedAt, in.ID)

	updated, err := scanRole(row)
	if err != nil {
		return nil, translateRolePgError(err)
	}
	return updated, nil
}

// Delete は職種を削除します。
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return translateRolePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return role.ErrRoleNotFound
	}
	return nil
}

// FindByID は ID で職種を取得します。
func (r *RoleRepository) FindByID(ctx context.Context, id string) (*role.Role, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+roleColumns+`
          FROM roles
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanRole(row)
	if err != nil {
		return nil, translateRolePgError(err)
	}
	return found, nil
}

// FindByKey は職種名 (大文字小文字を区別しない) と等級で職種を取得します。
func (r *RoleRepository) FindByKey(ctx context.Context, key compensation.Role) (*role.Role, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+roleColumns+`
          FROM roles
         WHERE lower(name) = lower($1) AND level = $2
         LIMIT 1
    `, key.Name, string(key.Level))

	found, err := scanRole(row)
	if err != nil {
		return nil, translateRolePgError(err)
	}
	return found, nil
}

// List は職種の一覧を職種名・等級順に取得します。
func (r *RoleRepository) List(ctx context.Context, filter role.ListRolesFilter) ([]*role.Role, string, error) {
	if filter.Limit <= 0 {
		return nil, "", role.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", role.ErrInvalidPageToken
	}

	args := make([]any, 0, 3)
	whereClause := ""
	if filter.Level != nil {
		args = append(args, string(*filter.Level))
		whereClause = " WHERE level = $1"
	}

	args = append(args, filter.Limit+1)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	query := `
        SELECT ` + roleColumns + `
          FROM roles` + whereClause + `
         ORDER BY lower(name) ASC, level ASC, id ASC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateRolePgError(err)
	}
	defer rows.Close()

	roles := make([]*role.Role, 0, filter.Limit)
	for rows.Next() {
		found, err := scanRole(rows)
		if err != nil {
			return nil, "", translateRolePgError(err)
		}
		roles = append(roles, found)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateRolePgError(err)
	}

	var nextToken string
	if len(roles) > filter.Limit {
		roles = roles[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return roles, nextToken, nil
}

// InUse は社員またはベンチマークが職種を参照しているかを返します。
func (r *RoleRepository) InUse(ctx context.Context, key compensation.Role) (bool, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM employees WHERE lower(role_name) = lower($1) AND role_level = $2)
            OR EXISTS (SELECT 1 FROM benchmarks WHERE lower(role_name) = lower($1) AND role_level = $2)
    `, key.Name, string(key.Level))

	var inUse bool
	if err := row.Scan(&inUse); err != nil {
		return false, translateRolePgError(err)
	}
	return inUse, nil
}

func scanRole(row pgx.Row) (*role.Role, error) {
	var (
		r     role.Role
		level string
	)
	if err := row.Scan(&r.ID, &r.Name, &level, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.Level = compensation.Level(level)
	return &r, nil
}

func translateRolePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return role.ErrRoleNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return role.ErrRoleAlreadyExists
		case invalidTextCode:
			return role.ErrInvalidID
		case checkViolationCode:
			return role.ErrInvalidRole
		}
	}

	return err
}
