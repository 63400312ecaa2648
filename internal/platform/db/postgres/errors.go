package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
)

// PostgreSQL の SQLSTATE のうちリポジトリで扱うもの。
const (
	UniqueViolationCode      = "23505"
	ForeignKeyViolationCode  = "23503"
	CheckViolationCode       = "23514"
	SerializationFailureCode = "40001"
	DeadlockDetectedCode     = "40P01"
	LockNotAvailableCode     = "55P03"
)

// TranslateConflict は直列化失敗・デッドロック・ロック待ちタイムアウトを shared.ErrConflict に変換します。それ以外はそのまま返します。
func TranslateConflict(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case SerializationFailureCode, DeadlockDetectedCode, LockNotAvailableCode:
			if errors.Is(err, shared.ErrConflict) {
				return err
			}
			return fmt.Errorf("%w: %w", shared.ErrConflict, err)
		}
	}
	return err
}

// PgErrorCode は err に含まれる SQLSTATE と制約名を返します。PgError でなければ ok=false です。
func PgErrorCode(err error) (code, constraint string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", "", false
	}
	return pgErr.Code, pgErr.ConstraintName, true
}
