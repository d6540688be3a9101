package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AmenityService/pkg/dbmetrics"
)

// --- Фейки транзакций ---

type fakeTx struct {
	commitErr  error
	committed  int
	rolledBack int
}

func (t *fakeTx) QueryRowContext(context.Context, string, ...interface{}) *sql.Row { return nil }
func (t *fakeTx) QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (t *fakeTx) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (t *fakeTx) Commit() error   { t.committed++; return t.commitErr }
func (t *fakeTx) Rollback() error { t.rolledBack++; return nil }

type fakeBeginner struct {
	tx     *fakeTx
	begins int
}

func (b *fakeBeginner) BeginTx(context.Context, *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	b.begins++
	return b.tx, nil
}

func serializationErr() error {
	return &pq.Error{Code: "40001", Message: "could not serialize access"}
}

// --- Тесты ---

func TestDoSerializableCommits(t *testing.T) {
	beginner := &fakeBeginner{tx: &fakeTx{}}
	m := NewTransactionManager(beginner)

	calls := 0
	err := m.DoSerializable(context.Background(), func(ctx context.Context) error {
		calls++
		assert.True(t, dbmetrics.IsInTransaction(ctx))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, beginner.tx.committed)
}

func TestDoSerializableBusinessErrorRollsBackWithoutRetry(t *testing.T) {
	beginner := &fakeBeginner{tx: &fakeTx{}}
	m := NewTransactionManager(beginner)

	sentinel := errors.New("domain says no")
	calls := 0
	err := m.DoSerializable(context.Background(), func(context.Context) error {
		calls++
		return sentinel
	})

	require.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, beginner.tx.rolledBack)
	assert.Zero(t, beginner.tx.committed)
}

func TestDoSerializableRetriesQueryTimeConflict(t *testing.T) {
	beginner := &fakeBeginner{tx: &fakeTx{}}
	m := NewTransactionManager(beginner)

	// Репозитории заворачивают ошибку драйвера с сохранением цепочки,
	// конфликт на SELECT ... FOR UPDATE должен уходить в повтор
	calls := 0
	err := m.DoSerializable(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("%w: ListOccupyingInRange - execute query: %w",
				errors.New("storage: exec query"), serializationErr())
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, beginner.tx.committed)
}

func TestDoSerializableRetriesCommitTimeConflict(t *testing.T) {
	tx := &fakeTx{commitErr: serializationErr()}
	beginner := &fakeBeginner{tx: tx}
	m := NewTransactionManager(beginner)

	err := m.DoSerializable(context.Background(), func(context.Context) error { return nil })

	// Все попытки уперлись в конфликт: итог распознаваем как отказ
	// транзакционного слоя, а не как бизнес-ошибку
	require.ErrorIs(t, err, ErrTxFailed)
	assert.Equal(t, maxSerializableRetries, beginner.begins)
}

func TestDoSerializableExhaustedIsTxFailure(t *testing.T) {
	beginner := &fakeBeginner{tx: &fakeTx{}}
	m := NewTransactionManager(beginner)

	err := m.DoSerializable(context.Background(), func(context.Context) error {
		return fmt.Errorf("wrapped: %w", serializationErr())
	})

	require.ErrorIs(t, err, ErrTxFailed)
	assert.Equal(t, maxSerializableRetries, beginner.begins)
	assert.Equal(t, maxSerializableRetries, beginner.tx.rolledBack)
}
