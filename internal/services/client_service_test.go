package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	ierr "github.com/minidebet/backend/internal/errors"
	"github.com/minidebet/backend/internal/models"
)

func TestClientService(t *testing.T) {
	ctx := context.Background()

	t.Run("create applies the default country", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, "DE", nil)
		repo.On("Create", ctx, mock.MatchedBy(func(c *models.Client) bool {
			return c.AccountID == "acc-1" && c.Name == "Acme" && c.Country == "DE"
		})).Return(nil)

		client, err := svc.Create(ctx, "acc-1", ClientInput{Name: "  Acme "})
		require.NoError(t, err)
		assert.Equal(t, "DE", client.Country)
		repo.AssertExpectations(t)
	})

	t.Run("explicit country is upper-cased", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, "DE", nil)
		repo.On("Create", ctx, mock.Anything).Return(nil)

		client, err := svc.Create(ctx, "acc-1", ClientInput{Name: "Acme", Country: "at"})
		require.NoError(t, err)
		assert.Equal(t, "AT", client.Country)
	})

	t.Run("foreign client is hidden", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, "DE", nil)
		repo.On("Get", ctx, "cl-9").Return(&models.Client{ID: "cl-9", AccountID: "acc-2"}, nil)

		_, err := svc.Get(ctx, "acc-1", "cl-9")
		assert.True(t, ierr.IsNotFound(err))

		_, err = svc.Update(ctx, "acc-1", "cl-9", ClientInput{Name: "x"})
		assert.True(t, ierr.IsNotFound(err))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("delete passes conflicts through", func(t *testing.T) {
		repo := new(MockClientRepository)
		svc := NewClientService(repo, "DE", nil)
		repo.On("Delete", ctx, "acc-1", "cl-1").Return(ierr.NewError("in use").Mark(ierr.ErrConflict))

		assert.True(t, ierr.IsConflict(svc.Delete(ctx, "acc-1", "cl-1")))
	})
}
