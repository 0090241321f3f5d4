package pgdb

import (
	"database/sql"
	"encoding/json"
	"errors"

	"procurement-marketplace-api/internal/repo/repo_errors"

	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

// translateError maps driver-level failures onto the repo error sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repo_errors.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode {
		return repo_errors.ErrUniqueViolation
	}
	return err
}

// requireAffected turns a zero-row guarded update into ErrStaleState.
func requireAffected(res sql.Result, err error) error {
	if err != nil {
		return translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repo_errors.ErrStaleState
	}
	return nil
}

// jsonColumn marshals a value for a jsonb column; nil values become SQL NULL.
func jsonColumn(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// scanJSON unmarshals a nullable jsonb column into dst, leaving dst zeroed
// for NULL.
func scanJSON(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

// mustJSON marshals a list for a jsonb column, normalizing nil to [].
func mustJSON(v any) []byte {
	raw, err := json.Marshal(v)
	if err != nil || string(raw) == "null" {
		return []byte("[]")
	}
	return raw
}
