package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
	"github.com/jackyeh168/member_rewards/src/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointAccountRepository_GetOrCreate_IsIdempotent(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	repo := NewPointAccountRepository(db)

	// Act
	first, err := repo.GetOrCreate(ctx, nil, 1001)
	require.NoError(t, err)
	second, err := repo.GetOrCreate(ctx, nil, 1001)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, first.ID(), second.ID())
	assert.True(t, second.AvailablePoints().IsZero())

	var count int64
	require.NoError(t, db.Model(&PointAccountModel{}).Where("member_id = ?", 1001).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPointAccountRepository_LockForUpdate_RequiresTransaction(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewPointAccountRepository(db).LockForUpdate(context.Background(), nil, 1001)

	assert.ErrorIs(t, err, points.ErrTransactionRequired)
}

func TestPointAccountRepository_Update_StaleVersion_ReturnsConflict(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	txManager := NewGORMTransactionManager(db)
	repo := NewPointAccountRepository(db)

	stale, err := repo.GetOrCreate(ctx, nil, 1001)
	require.NoError(t, err)

	require.NoError(t, txManager.InTransaction(ctx, func(tx shared.TransactionContext) error {
		earnInTx(t, ctx, repo, tx, 1001, 10)
		return nil
	}))

	// Act
	amount, _ := points.NewPositivePointsAmount(99)
	require.NoError(t, stale.AddPoints(amount, amount, time.Now()))
	err = txManager.InTransaction(ctx, func(tx shared.TransactionContext) error {
		return repo.Update(ctx, tx, stale)
	})

	// Assert
	assert.ErrorIs(t, err, points.ErrVersionConflict)
	current, err := repo.FindByMemberID(ctx, nil, 1001)
	require.NoError(t, err)
	assert.Equal(t, int64(10), current.AvailablePoints().Value())
}

func TestPointAccountRepository_Update_PersistsZeroBalances(t *testing.T) {
	// Arrange
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	txManager := NewGORMTransactionManager(db)
	repo := NewPointAccountRepository(db)

	require.NoError(t, txManager.InTransaction(ctx, func(tx shared.TransactionContext) error {
		earnInTx(t, ctx, repo, tx, 1001, 10)
		return nil
	}))

	// Act：全部使用後可用積分為 0，必須被寫入
	err := txManager.InTransaction(ctx, func(tx shared.TransactionContext) error {
		account, err := repo.LockForUpdate(ctx, tx, 1001)
		if err != nil {
			return err
		}
		amount, _ := points.NewPositivePointsAmount(10)
		if err := account.UsePoints(amount, time.Now()); err != nil {
			return err
		}
		return repo.Update(ctx, tx, account)
	})

	// Assert
	require.NoError(t, err)
	account, err := repo.FindByMemberID(ctx, nil, 1001)
	require.NoError(t, err)
	assert.True(t, account.AvailablePoints().IsZero())
	assert.Equal(t, int64(10), account.UsedPoints().Value())
	assert.Equal(t, int64(10), account.TotalPoints().Value())
}

func TestPointAccountRepository_CorruptedRow_ReturnsError(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	repo := NewPointAccountRepository(db)

	_, err := repo.GetOrCreate(ctx, nil, 1001)
	require.NoError(t, err)
	require.NoError(t, db.Exec("UPDATE member_point_accounts SET level_points = -1 WHERE member_id = 1001").Error)

	_, err = repo.FindByMemberID(ctx, nil, 1001)

	assert.ErrorIs(t, err, points.ErrCorruptedAccount)
}

func TestPointAccountRepository_CheckConstraint_RejectsNegativeAvailable(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	_, err := NewPointAccountRepository(db).GetOrCreate(context.Background(), nil, 1001)
	require.NoError(t, err)

	err = db.Exec("UPDATE member_point_accounts SET available_points = -1 WHERE member_id = 1001").Error

	assert.Error(t, err)
}
