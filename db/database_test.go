package db

import (
	"testing"

	"trendmart/models"

	"github.com/stretchr/testify/require"
)

func TestConnectMigratesSchema(t *testing.T) {
	require.NoError(t, Connect("file:dbtest?mode=memory&cache=shared"))
	require.NotNil(t, DB)

	require.True(t, DB.Migrator().HasTable(&models.Product{}))
	require.True(t, DB.Migrator().HasTable(&models.ProductVariation{}))

	product := models.Product{Name: "x", Image: "/uploads/x.png"}
	require.NoError(t, DB.Create(&product).Error)
	require.NotEmpty(t, product.ID)

	Close()
}
