package seed

import (
	"context"
	"testing"

	"owl-crm/internal/repository"
	"owl-crm/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRun(t *testing.T) {
	svc := service.New(service.Deps{Store: repository.NewMemoryStore(), Logger: zap.NewNop()})
	ctx := context.Background()

	res, err := Run(ctx, svc, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, res.Customers, 3)
	require.Len(t, res.Products, 3)
	require.Len(t, res.Orders, 2)

	assert.Equal(t, "1029.98", res.Orders[0].TotalAmount.String())
	assert.Equal(t, "49.99", res.Orders[1].TotalAmount.String())
	assert.Nil(t, res.Customers[2].Phone)

	sum, err := svc.Reports.Summary(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, sum.Customers)
	assert.EqualValues(t, 2, sum.Orders)
	assert.Equal(t, "1079.97", sum.Revenue.String())

	_, err = Run(ctx, svc, zap.NewNop())
	assert.ErrorIs(t, err, ErrAlreadySeeded)
}
