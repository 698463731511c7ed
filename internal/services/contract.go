package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/diewo77/epic-events/internal/apperr"
	"github.com/diewo77/epic-events/internal/models"
	"github.com/diewo77/epic-events/internal/policy"
	"github.com/diewo77/epic-events/internal/report"
	"github.com/diewo77/epic-events/internal/validation"
)

// ContractInput creates a contract. SalesContactID defaults to the actor.
type ContractInput struct {
	ClientID       uint    `json:"client_id" validate:"required"`
	SalesContactID uint    `json:"sales_contact_id"`
	TotalAmount    float64 `json:"total_amount" validate:"gte=0"`
	AmountDue      float64 `json:"amount_due" validate:"gte=0"`
	Signed         bool    `json:"signed"`
}

// ContractUpdate is a partial contract update.
type ContractUpdate struct {
	TotalAmount    Optional[float64]
	AmountDue      Optional[float64]
	Signed         Optional[bool]
	SalesContactID Optional[uint]
}

type ContractService struct {
	base
}

func NewContractService(d Deps) *ContractService {
	return &ContractService{base: newBase(d)}
}

func amountViolations(c *models.Contract) validation.Violations {
	v := validation.Violations{}
	validation.NonNegativeFloat("total_amount", c.TotalAmount, v)
	validation.NonNegativeFloat("amount_due", c.AmountDue, v)
	if !c.AmountsValid() {
		v.Add("amount_due", "exceeds_total_amount")
	}
	return v
}

func (s *ContractService) Create(ctx context.Context, actor *models.User, in ContractInput) (*models.Contract, error) {
	op := policy.CreateContract.String()
	if err := s.authz.Authorize(ctx, actor, policy.CreateContract, nil); err != nil {
		return nil, err
	}
	if err := validation.Struct(in).Err(op); err != nil {
		return nil, err
	}

	contract := models.Contract{
		ClientID:       in.ClientID,
		SalesContactID: actor.ID,
		TotalAmount:    in.TotalAmount,
		AmountDue:      in.AmountDue,
		Signed:         in.Signed,
	}
	err := s.inTx(ctx, op, func(tx *gorm.DB) error {
		if _, err := load[models.Client](tx, op, "client", in.ClientID); err != nil {
			return err
		}
		if err := amountViolations(&contract).Err(op); err != nil {
			return err
		}
		if in.SalesContactID != 0 {
			if _, err := salesContact(tx, op, actor, in.SalesContactID); err != nil {
				return err
			}
			contract.SalesContactID = in.SalesContactID
		}
		return tx.Create(&contract).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, report.ContractCreated, "contract created", map[string]any{
		"contract_id": contract.ID, "client_id": contract.ClientID, "signed": contract.Signed, "by": actor.ID,
	})
	return &contract, nil
}

// Update merges upd into the contract. Setting Signed on an unsigned
// contract emits ContractSigned in addition to ContractUpdated; no other
// change of the flag does.
func (s *ContractService) Update(ctx context.Context, actor *models.User, id uint, upd ContractUpdate) (*models.Contract, error) {
	op := policy.UpdateContract.String()
	if err := s.authz.Precheck(ctx, actor, policy.UpdateContract); err != nil {
		return nil, err
	}

	var (
		contract  *models.Contract
		wasSigned bool
	)
	err := s.inTx(ctx, op, func(tx *gorm.DB) error {
		var err error
		if contract, err = load[models.Contract](tx, op, "contract", id); err != nil {
			return err
		}
		if err := s.authz.Authorize(ctx, actor, policy.UpdateContract, contract); err != nil {
			return err
		}
		wasSigned = contract.Signed

		upd.TotalAmount.applyTo(&contract.TotalAmount)
		upd.AmountDue.applyTo(&contract.AmountDue)
		upd.Signed.applyTo(&contract.Signed)
		if err := amountViolations(contract).Err(op); err != nil {
			return err
		}
		if contactID, ok := upd.SalesContactID.Get(); ok {
			if _, err := salesContact(tx, op, actor, contactID); err != nil {
				return err
			}
			contract.SalesContactID = contactID
		}
		return tx.Save(contract).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, report.ContractUpdated, "contract updated", map[string]any{
		"contract_id": contract.ID, "client_id": contract.ClientID, "by": actor.ID,
	})
	if !wasSigned && contract.Signed {
		s.notify(ctx, report.ContractSigned, "contract signed", map[string]any{
			"contract_id": contract.ID,
			"client_id":   contract.ClientID,
			"signed_by":   actor.ID,
			"signer_role": string(actor.RoleName()),
		})
	}
	return contract, nil
}

func (s *ContractService) Get(ctx context.Context, actor *models.User, id uint) (*models.Contract, error) {
	op := policy.ListContracts.String()
	if err := s.authz.Authorize(ctx, actor, policy.ListContracts, nil); err != nil {
		return nil, err
	}
	contract, err := load[models.Contract](s.db.WithContext(ctx), op, "contract", id)
	if err != nil && apperr.KindOf(err) != apperr.KindNotFound {
		return nil, s.storageFailure(ctx, op, err)
	}
	return contract, err
}

// List returns every contract with the caller's edit affordance.
func (s *ContractService) List(ctx context.Context, actor *models.User) ([]Row[models.Contract], error) {
	op := policy.ListContracts.String()
	if err := s.authz.Authorize(ctx, actor, policy.ListContracts, nil); err != nil {
		return nil, err
	}
	var contracts []models.Contract
	if err := s.db.WithContext(ctx).Order("id").Find(&contracts).Error; err != nil {
		return nil, s.storageFailure(ctx, op, err)
	}
	return s.rows(ctx, actor, contracts), nil
}

func (s *ContractService) rows(ctx context.Context, actor *models.User, contracts []models.Contract) []Row[models.Contract] {
	rows := make([]Row[models.Contract], len(contracts))
	for i := range contracts {
		rows[i] = Row[models.Contract]{
			Item:     contracts[i],
			Editable: s.authz.CanEdit(ctx, actor, policy.UpdateContract, &contracts[i]),
		}
	}
	return rows
}
