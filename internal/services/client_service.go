package services

import (
	"context"
	"strings"

	ierr "github.com/minidebet/backend/internal/errors"
	"github.com/minidebet/backend/internal/logger"
	"github.com/minidebet/backend/internal/models"
)

// ClientInput carries the editable client fields.
type ClientInput struct {
	Name       string
	Email      *string
	Company    *string
	Street     *string
	City       *string
	PostalCode *string
	Country    string
	VATNumber  *string
}

type ClientService struct {
	clients        ClientRepository
	defaultCountry string
	logger         *logger.Logger
}

func NewClientService(clients ClientRepository, defaultCountry string, log *logger.Logger) *ClientService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ClientService{clients: clients, defaultCountry: defaultCountry, logger: log}
}

func (s *ClientService) Create(ctx context.Context, accountID string, in ClientInput) (*models.Client, error) {
	client := &models.Client{AccountID: accountID}
	s.apply(client, in)
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}
	s.logger.Infow("client created", "account_id", accountID, "client_id", client.ID)
	return client, nil
}

func (s *ClientService) List(ctx context.Context, accountID string) ([]models.Client, error) {
	return s.clients.ListByAccount(ctx, accountID)
}

// Get returns the client if it belongs to accountID. Clients of other
// accounts are reported as missing.
func (s *ClientService) Get(ctx context.Context, accountID, id string) (*models.Client, error) {
	client, err := s.clients.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if client.AccountID != accountID {
		return nil, ierr.NewError("client owned by another account").
			WithHint("Client not found").
			Mark(ierr.ErrNotFound)
	}
	return client, nil
}

func (s *ClientService) Update(ctx context.Context, accountID, id string, in ClientInput) (*models.Client, error) {
	client, err := s.Get(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	s.apply(client, in)
	if err := s.clients.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) Delete(ctx context.Context, accountID, id string) error {
	return s.clients.Delete(ctx, accountID, id)
}

func (s *ClientService) apply(client *models.Client, in ClientInput) {
	client.Name = strings.TrimSpace(in.Name)
	client.Email = in.Email
	client.Company = in.Company
	client.Street = in.Street
	client.City = in.City
	client.PostalCode = in.PostalCode
	client.VATNumber = in.VATNumber
	client.Country = strings.ToUpper(in.Country)
	if client.Country == "" {
		client.Country = s.defaultCountry
	}
}
