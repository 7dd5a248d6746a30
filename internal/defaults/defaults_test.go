package defaults

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/bloom/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Address{}, &models.Theme{}))
	return db
}

func createAddress(t *testing.T, db *gorm.DB, userID uuid.UUID, isDefault bool) models.Address {
	t.Helper()

	addr := models.Address{
		UserID:      userID,
		AddressLine: "12 MG Road",
		City:        "Bengaluru",
		IsDefault:   isDefault,
	}
	require.NoError(t, db.Create(&addr).Error)
	return addr
}

func flaggedAddresses(t *testing.T, db *gorm.DB, userID uuid.UUID) []models.Address {
	t.Helper()

	var flagged []models.Address
	require.NoError(t, db.Where("user_id = ? AND is_default = ?", userID, true).
		Find(&flagged).Error)
	return flagged
}

func TestSetDefaultLeavesExactlyOneFlagged(t *testing.T) {
	db := openTestDB(t)
	userID := uuid.New()

	a1 := createAddress(t, db, userID, true)
	a2 := createAddress(t, db, userID, false)
	a3 := createAddress(t, db, userID, false)

	require.NoError(t, SetDefault(db, models.Address{}, userID, a2.ID))

	flagged := flaggedAddresses(t, db, userID)
	require.Len(t, flagged, 1)
	assert.Equal(t, a2.ID, flagged[0].ID)

	// any further sequence still leaves exactly one
	require.NoError(t, SetDefault(db, models.Address{}, userID, a3.ID))
	require.NoError(t, SetDefault(db, models.Address{}, userID, a1.ID))

	flagged = flaggedAddresses(t, db, userID)
	require.Len(t, flagged, 1)
	assert.Equal(t, a1.ID, flagged[0].ID)
}

func TestSetDefaultMissingTargetKeepsCurrentDefault(t *testing.T) {
	db := openTestDB(t)
	userID := uuid.New()

	a1 := createAddress(t, db, userID, true)

	err := SetDefault(db, models.Address{}, userID, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	// the clear step must have been rolled back
	flagged := flaggedAddresses(t, db, userID)
	require.Len(t, flagged, 1)
	assert.Equal(t, a1.ID, flagged[0].ID)
}

func TestSetDefaultScopedToOneUser(t *testing.T) {
	db := openTestDB(t)
	alice := uuid.New()
	bob := uuid.New()

	createAddress(t, db, alice, true)
	a2 := createAddress(t, db, alice, false)
	b1 := createAddress(t, db, bob, true)

	require.NoError(t, SetDefault(db, models.Address{}, alice, a2.ID))

	// bob's default is untouched
	flagged := flaggedAddresses(t, db, bob)
	require.Len(t, flagged, 1)
	assert.Equal(t, b1.ID, flagged[0].ID)

	// alice cannot flag bob's address
	err := SetDefault(db, models.Address{}, alice, b1.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFirstInScope(t *testing.T) {
	db := openTestDB(t)
	userID := uuid.New()

	first, err := FirstInScope(db, models.Address{}, userID)
	require.NoError(t, err)
	assert.True(t, first)

	createAddress(t, db, userID, true)

	first, err = FirstInScope(db, models.Address{}, userID)
	require.NoError(t, err)
	assert.False(t, first)
}

func TestThemeGlobalScope(t *testing.T) {
	db := openTestDB(t)

	active := models.Theme{Name: "Daylight", IsActive: true}
	require.NoError(t, db.Create(&active).Error)
	other := models.Theme{Name: "Midnight"}
	require.NoError(t, db.Create(&other).Error)

	require.NoError(t, SetDefault(db, models.Theme{}, nil, other.ID))

	var flagged []models.Theme
	require.NoError(t, db.Where("is_active = ?", true).Find(&flagged).Error)
	require.Len(t, flagged, 1)
	assert.Equal(t, other.ID, flagged[0].ID)
}

func TestDeleteInactive(t *testing.T) {
	db := openTestDB(t)

	active := models.Theme{Name: "Daylight", IsActive: true}
	require.NoError(t, db.Create(&active).Error)
	other := models.Theme{Name: "Midnight"}
	require.NoError(t, db.Create(&other).Error)

	// the active row is protected and survives
	err := DeleteInactive(db, models.Theme{}, active.ID)
	assert.ErrorIs(t, err, ErrActiveRecord)

	var count int64
	require.NoError(t, db.Model(&models.Theme{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	// an inactive row goes away
	require.NoError(t, DeleteInactive(db, models.Theme{}, other.ID))
	require.NoError(t, db.Model(&models.Theme{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// a missing row is reported, not silently ignored
	err = DeleteInactive(db, models.Theme{}, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
