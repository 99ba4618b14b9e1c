package points_test

import (
	"testing"

	"github.com/jackyeh168/member_rewards/src/internal/domain/points"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===== PointsAmount 測試 =====

func TestNewPointsAmount_NegativeValue_ReturnsError(t *testing.T) {
	// Act
	amount, err := points.NewPointsAmount(-10)

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, points.ErrNegativePointsAmount)
	assert.Equal(t, int64(0), amount.Value())
	assert.Contains(t, err.Error(), "value -10")
}

func TestNewPositivePointsAmount_RejectsZeroAndNegative(t *testing.T) {
	for _, v := range []int64{0, -1} {
		_, err := points.NewPositivePointsAmount(v)
		assert.ErrorIs(t, err, points.ErrInvalidPointsAmount, "value %d", v)
	}

	amount, err := points.NewPositivePointsAmount(5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), amount.Value())
}

func TestPointsAmount_Subtract_InsufficientBalance(t *testing.T) {
	// Arrange
	a, _ := points.NewPointsAmount(30)
	b, _ := points.NewPointsAmount(50)

	// Act
	_, err := a.Subtract(b)

	// Assert
	assert.ErrorIs(t, err, points.ErrInsufficientPoints)
}

func TestPointsAmount_AddAndSubtract(t *testing.T) {
	a, _ := points.NewPointsAmount(100)
	b, _ := points.NewPointsAmount(40)

	sum := a.Add(b)
	diff, err := a.Subtract(b)

	require.NoError(t, err)
	assert.Equal(t, int64(140), sum.Value())
	assert.Equal(t, int64(60), diff.Value())
	assert.True(t, b.LessThan(a))
}

// ===== 枚舉測試 =====

func TestChangeType_PersistedCodesAreStable(t *testing.T) {
	assert.Equal(t, points.ChangeType(1), points.ChangeTypeEarn)
	assert.Equal(t, points.ChangeType(2), points.ChangeTypeUse)
	assert.Equal(t, points.ChangeType(3), points.ChangeTypeFreeze)
	assert.Equal(t, points.ChangeType(4), points.ChangeTypeUnfreeze)
	assert.Equal(t, points.ChangeType(5), points.ChangeTypeExpire)
	assert.Equal(t, points.ChangeType(6), points.ChangeTypeAdjust)
	assert.False(t, points.ChangeType(7).IsValid())
	assert.Equal(t, "freeze", points.ChangeTypeFreeze.String())
}

func TestSourceType_PersistedCodesAreStable(t *testing.T) {
	assert.Equal(t, points.SourceType(1), points.SourceTypeTask)
	assert.Equal(t, points.SourceType(4), points.SourceTypeGift)
	assert.Equal(t, points.SourceType(7), points.SourceTypeActivity)
	assert.False(t, points.SourceType(0).IsValid())
	assert.Equal(t, "source_type(9)", points.SourceType(9).String())
}

// ===== MemberID 測試 =====

func TestNewMemberID(t *testing.T) {
	_, err := points.NewMemberID(0)
	assert.ErrorIs(t, err, points.ErrInvalidMemberID)

	id, err := points.NewMemberID(42)
	require.NoError(t, err)
	assert.Equal(t, "42", id.String())
	assert.False(t, id.IsEmpty())
}
