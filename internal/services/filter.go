package services

import (
	"context"
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/epic-events/internal/apperr"
	"github.com/diewo77/epic-events/internal/models"
	"github.com/diewo77/epic-events/internal/policy"
)

// Result set labels.
const (
	LabelAllEvents           = "All events"
	LabelUnassignedEvents    = "Unassigned events"
	LabelMyEvents            = "My events"
	LabelAllContracts        = "All contracts"
	LabelUnsignedContracts   = "Unsigned contracts"
	LabelMyUnsignedContracts = "My unsigned contracts"
)

// EventFilter narrows events. Every set field must match; ranges are
// inclusive and Location is a case-insensitive substring.
type EventFilter struct {
	ID             *uint
	ContractID     *uint
	SupportContact *string
	StartFrom      *time.Time
	EndUntil       *time.Time
	Location       string
	MinAttendees   *int
	MaxAttendees   *int
}

func (f EventFilter) apply(q *gorm.DB) *gorm.DB {
	if f.ID != nil {
		q = q.Where("id = ?", *f.ID)
	}
	if f.ContractID != nil {
		q = q.Where("contract_id = ?", *f.ContractID)
	}
	if f.SupportContact != nil {
		q = q.Where("support_contact = ?", *f.SupportContact)
	}
	if f.StartFrom != nil {
		q = q.Where("start_date >= ?", f.StartFrom.UTC())
	}
	if f.EndUntil != nil {
		q = q.Where("end_date <= ?", f.EndUntil.UTC())
	}
	if f.MinAttendees != nil {
		q = q.Where("attendees >= ?", *f.MinAttendees)
	}
	if f.MaxAttendees != nil {
		q = q.Where("attendees <= ?", *f.MaxAttendees)
	}
	return q
}

// matches applies the conditions evaluated after the query. Location is
// folded with Unicode case rules; SQLite's LOWER() only folds ASCII.
func (f EventFilter) matches(e *models.Event) bool {
	loc := strings.TrimSpace(f.Location)
	return loc == "" || strings.Contains(strings.ToLower(e.Location), strings.ToLower(loc))
}

func unassigned(q *gorm.DB) *gorm.DB {
	return q.Where("support_contact IS NULL OR support_contact = ''")
}

// Filter applies f, then narrows the matches to what the actor's role may
// see: Support its own events, Gestion unassigned events, Commercial every
// match. Admin receives two sets, unassigned events and all events.
func (s *EventService) Filter(ctx context.Context, actor *models.User, f EventFilter) ([]ResultSet[models.Event], error) {
	op := policy.FilterEvents.String()
	if err := s.authz.Authorize(ctx, actor, policy.FilterEvents, nil); err != nil {
		return nil, err
	}

	type scope struct {
		label  string
		narrow func(*gorm.DB) *gorm.DB
	}
	var scopes []scope
	switch actor.RoleName() {
	case models.RoleAdmin:
		scopes = []scope{
			{LabelUnassignedEvents, unassigned},
			{LabelAllEvents, nil},
		}
	case models.RoleSupport:
		scopes = []scope{{LabelMyEvents, func(q *gorm.DB) *gorm.DB {
			return q.Where("support_contact = ?", actor.FullName)
		}}}
	case models.RoleGestion:
		scopes = []scope{{LabelUnassignedEvents, unassigned}}
	case models.RoleCommercial:
		scopes = []scope{{LabelAllEvents, nil}}
	default:
		return nil, apperr.PermissionDenied(op, string(actor.RoleName()))
	}

	sets := make([]ResultSet[models.Event], 0, len(scopes))
	for _, sc := range scopes {
		q := f.apply(s.db.WithContext(ctx).Model(&models.Event{}))
		if sc.narrow != nil {
			q = sc.narrow(q)
		}
		var events []models.Event
		if err := q.Order("start_date, id").Find(&events).Error; err != nil {
			return nil, s.storageFailure(ctx, op, err)
		}
		events = slices.DeleteFunc(events, func(ev models.Event) bool { return !f.matches(&ev) })
		sets = append(sets, ResultSet[models.Event]{Label: sc.label, Rows: s.rows(ctx, actor, events)})
	}
	return sets, nil
}

// ContractFilter narrows contracts. Amount bounds are inclusive.
type ContractFilter struct {
	ID           *uint
	ClientID     *uint
	MinAmountDue *float64
	MaxAmountDue *float64
}

func (f ContractFilter) apply(q *gorm.DB) *gorm.DB {
	if f.ID != nil {
		q = q.Where("id = ?", *f.ID)
	}
	if f.ClientID != nil {
		q = q.Where("client_id = ?", *f.ClientID)
	}
	if f.MinAmountDue != nil {
		q = q.Where("amount_due >= ?", *f.MinAmountDue)
	}
	if f.MaxAmountDue != nil {
		q = q.Where("amount_due <= ?", *f.MaxAmountDue)
	}
	return q
}

// Filter applies f, then narrows: a Commercial sees only its own unsigned
// contracts, Admin receives unsigned contracts and all contracts. Other
// roles are denied.
func (s *ContractService) Filter(ctx context.Context, actor *models.User, f ContractFilter) ([]ResultSet[models.Contract], error) {
	op := policy.FilterContracts.String()
	if err := s.authz.Authorize(ctx, actor, policy.FilterContracts, nil); err != nil {
		return nil, err
	}

	type scope struct {
		label  string
		narrow func(*gorm.DB) *gorm.DB
	}
	unsigned := func(q *gorm.DB) *gorm.DB { return q.Where("signed = ?", false) }
	var scopes []scope
	switch actor.RoleName() {
	case models.RoleAdmin:
		scopes = []scope{
			{LabelUnsignedContracts, unsigned},
			{LabelAllContracts, nil},
		}
	case models.RoleCommercial:
		scopes = []scope{{LabelMyUnsignedContracts, func(q *gorm.DB) *gorm.DB {
			return unsigned(q).Where("sales_contact_id = ?", actor.ID)
		}}}
	default:
		return nil, apperr.PermissionDenied(op, string(actor.RoleName()))
	}

	sets := make([]ResultSet[models.Contract], 0, len(scopes))
	for _, sc := range scopes {
		q := f.apply(s.db.WithContext(ctx).Model(&models.Contract{}))
		if sc.narrow != nil {
			q = sc.narrow(q)
		}
		var contracts []models.Contract
		if err := q.Order("id").Find(&contracts).Error; err != nil {
			return nil, s.storageFailure(ctx, op, err)
		}
		sets = append(sets, ResultSet[models.Contract]{Label: sc.label, Rows: s.rows(ctx, actor, contracts)})
	}
	return sets, nil
}
