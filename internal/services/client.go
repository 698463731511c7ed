package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/epic-events/internal/apperr"
	"github.com/diewo77/epic-events/internal/models"
	"github.com/diewo77/epic-events/internal/policy"
	"github.com/diewo77/epic-events/internal/report"
	"github.com/diewo77/epic-events/internal/validation"
)

// ClientInput creates a client. SalesContactID defaults to the actor.
type ClientInput struct {
	FullName       string `json:"full_name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required"`
	CompanyName    string `json:"company_name" validate:"required"`
	SalesContactID uint   `json:"sales_contact_id"`
}

// ClientUpdate is a partial client update.
type ClientUpdate struct {
	FullName       Optional[string]
	Email          Optional[string]
	Phone          Optional[string]
	CompanyName    Optional[string]
	SalesContactID Optional[uint]
}

type ClientService struct {
	base
}

func NewClientService(d Deps) *ClientService {
	return &ClientService{base: newBase(d)}
}

func (s *ClientService) Create(ctx context.Context, actor *models.User, in ClientInput) (*models.Client, error) {
	op := policy.CreateClient.String()
	if err := s.authz.Authorize(ctx, actor, policy.CreateClient, nil); err != nil {
		return nil, err
	}
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in).Err(op); err != nil {
		return nil, err
	}

	client := models.Client{
		FullName:       strings.TrimSpace(in.FullName),
		Email:          in.Email,
		Phone:          strings.TrimSpace(in.Phone),
		CompanyName:    strings.TrimSpace(in.CompanyName),
		SalesContactID: actor.ID,
	}
	err := s.inTx(ctx, op, func(tx *gorm.DB) error {
		if in.SalesContactID != 0 {
			if _, err := salesContact(tx, op, actor, in.SalesContactID); err != nil {
				return err
			}
			client.SalesContactID = in.SalesContactID
		}
		taken, err := emailTaken(tx, &models.Client{}, client.Email, 0)
		if err != nil {
			return err
		}
		if taken {
			return duplicateEmail(op)
		}
		return tx.Create(&client).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, report.ClientCreated, "client created", map[string]any{
		"client_id": client.ID, "sales_contact_id": client.SalesContactID, "by": actor.ID,
	})
	return &client, nil
}

func (s *ClientService) Update(ctx context.Context, actor *models.User, id uint, upd ClientUpdate) (*models.Client, error) {
	op := policy.UpdateClient.String()
	if err := s.authz.Precheck(ctx, actor, policy.UpdateClient); err != nil {
		return nil, err
	}

	var client *models.Client
	err := s.inTx(ctx, op, func(tx *gorm.DB) error {
		var err error
		if client, err = load[models.Client](tx, op, "client", id); err != nil {
			return err
		}
		if err := s.authz.Authorize(ctx, actor, policy.UpdateClient, client); err != nil {
			return err
		}

		upd.FullName.applyTo(&client.FullName)
		upd.Email.applyTo(&client.Email)
		upd.Phone.applyTo(&client.Phone)
		upd.CompanyName.applyTo(&client.CompanyName)
		client.Email = strings.TrimSpace(client.Email)

		v := validation.Struct(ClientInput{
			FullName: client.FullName, Email: client.Email,
			Phone: client.Phone, CompanyName: client.CompanyName,
		})
		if err := v.Err(op); err != nil {
			return err
		}
		if contactID, ok := upd.SalesContactID.Get(); ok {
			if _, err := salesContact(tx, op, actor, contactID); err != nil {
				return err
			}
			client.SalesContactID = contactID
		}
		if upd.Email.Set {
			taken, err := emailTaken(tx, &models.Client{}, client.Email, client.ID)
			if err != nil {
				return err
			}
			if taken {
				return duplicateEmail(op)
			}
		}
		return tx.Save(client).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, report.ClientUpdated, "client updated", map[string]any{"client_id": client.ID, "by": actor.ID})
	return client, nil
}

// Delete removes the client with its contracts and their events in one
// transaction. Foreign keys cascade as well; the explicit deletes keep the
// behaviour identical on stores where they are not enforced.
func (s *ClientService) Delete(ctx context.Context, actor *models.User, id uint) error {
	op := policy.DeleteClient.String()
	if err := s.authz.Precheck(ctx, actor, policy.DeleteClient); err != nil {
		return err
	}

	var contracts, events int64
	err := s.inTx(ctx, op, func(tx *gorm.DB) error {
		client, err := load[models.Client](tx, op, "client", id)
		if err != nil {
			return err
		}
		if err := s.authz.Authorize(ctx, actor, policy.DeleteClient, client); err != nil {
			return err
		}

		contractIDs := tx.Model(&models.Contract{}).Select("id").Where("client_id = ?", client.ID)
		res := tx.Where("contract_id IN (?)", contractIDs).Delete(&models.Event{})
		if res.Error != nil {
			return res.Error
		}
		events = res.RowsAffected

		res = tx.Where("client_id = ?", client.ID).Delete(&models.Contract{})
		if res.Error != nil {
			return res.Error
		}
		contracts = res.RowsAffected

		return tx.Delete(client).Error
	})
	if err != nil {
		return err
	}

	s.notify(ctx, report.ClientDeleted, "client deleted", map[string]any{
		"client_id": id, "contracts": contracts, "events": events, "by": actor.ID,
	})
	return nil
}

func (s *ClientService) Get(ctx context.Context, actor *models.User, id uint) (*models.Client, error) {
	op := policy.ListClients.String()
	if err := s.authz.Authorize(ctx, actor, policy.ListClients, nil); err != nil {
		return nil, err
	}
	client, err := load[models.Client](s.db.WithContext(ctx), op, "client", id, "SalesContact")
	if err != nil && apperr.KindOf(err) != apperr.KindNotFound {
		return nil, s.storageFailure(ctx, op, err)
	}
	return client, err
}

// List returns every client with the caller's edit affordance.
func (s *ClientService) List(ctx context.Context, actor *models.User) ([]Row[models.Client], error) {
	op := policy.ListClients.String()
	if err := s.authz.Authorize(ctx, actor, policy.ListClients, nil); err != nil {
		return nil, err
	}
	var clients []models.Client
	if err := s.db.WithContext(ctx).Order("id").Find(&clients).Error; err != nil {
		return nil, s.storageFailure(ctx, op, err)
	}
	rows := make([]Row[models.Client], len(clients))
	for i := range clients {
		rows[i] = Row[models.Client]{
			Item:     clients[i],
			Editable: s.authz.CanEdit(ctx, actor, policy.UpdateClient, &clients[i]),
		}
	}
	return rows, nil
}

// salesContact loads a user that may own clients and contracts: a
// Commercial user, or the actor, who is also the default owner.
func salesContact(tx *gorm.DB, op string, actor *models.User, id uint) (*models.User, error) {
	if id == actor.ID {
		return actor, nil
	}
	user, err := load[models.User](tx, op, "user", id, "Role")
	if err != nil {
		return nil, err
	}
	if !user.HasRole(models.RoleCommercial) {
		return nil, apperr.InvalidInput(op, "sales contact must be a Commercial user",
			map[string]string{"sales_contact_id": "not_commercial"})
	}
	return user, nil
}
