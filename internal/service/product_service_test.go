package service

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_GetAll_ClampsPagination(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name           string
		limit, offset  int
		expectedLimit  int
		expectedOffset int
	}{
		{"defaults applied", 0, -5, 10, 0},
		{"limit capped", 500, 0, 100, 0},
		{"passed through", 25, 50, 25, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockProductRepository)
			svc := NewProductService(repo, zerolog.Nop())

			repo.On("GetAll", ctx, tt.expectedLimit, tt.expectedOffset).Return([]model.Product{}, nil)

			_, err := svc.GetAll(ctx, tt.limit, tt.offset)
			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestProductService_GetByID(t *testing.T) {
	ctx := context.Background()
	productID := uuid.New()

	t.Run("found", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo, zerolog.Nop())
		repo.On("GetByID", ctx, productID).Return(&model.Product{ID: productID, Title: "Widget"}, nil)

		product, err := svc.GetByID(ctx, productID)
		require.NoError(t, err)
		assert.Equal(t, "Widget", product.Title)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo, zerolog.Nop())
		repo.On("GetByID", ctx, productID).Return(nil, nil)

		product, err := svc.GetByID(ctx, productID)
		require.Error(t, err)
		assert.Nil(t, product)
		assert.True(t, model.IsNotFound(err))
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := NewProductService(repo, zerolog.Nop())
		repo.On("GetByID", ctx, productID).Return(nil, errors.New("connection refused"))

		_, err := svc.GetByID(ctx, productID)
		require.Error(t, err)
		assert.Equal(t, model.ErrorKind(""), model.KindOf(err))
	})
}
