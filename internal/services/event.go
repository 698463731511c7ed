package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/epic-events/internal/apperr"
	"github.com/diewo77/epic-events/internal/models"
	"github.com/diewo77/epic-events/internal/policy"
	"github.com/diewo77/epic-events/internal/report"
	"github.com/diewo77/epic-events/internal/validation"
)

// EventInput creates an event. SupportContact and Notes may be nil.
type EventInput struct {
	ContractID     uint      `json:"contract_id"`
	SupportContact *string   `json:"support_contact"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Location       string    `json:"location"`
	Attendees      int       `json:"attendees"`
	Notes          *string   `json:"notes"`
}

// EventUpdate is a partial event update. An empty SupportContact or Notes
// clears the field.
type EventUpdate struct {
	SupportContact Optional[string]
	StartDate      Optional[time.Time]
	EndDate        Optional[time.Time]
	Location       Optional[string]
	Attendees      Optional[int]
	Notes          Optional[string]
}

type EventService struct {
	base
}

func NewEventService(d Deps) *EventService {
	return &EventService{base: newBase(d)}
}

func datesInvalid(op string) error {
	return apperr.InvalidInput(op, "start date must be before end date",
		map[string]string{"start_date": "not_before_end_date"})
}

func eventViolations(e *models.Event) validation.Violations {
	v := validation.Violations{}
	validation.Required("location", e.Location, v)
	validation.PositiveInt("attendees", e.Attendees, v)
	return v
}

// Create checks, in order: permission, contract existence, contract
// signed, date ordering, remaining fields. The first failure is returned.
func (s *EventService) Create(ctx context.Context, actor *models.User, in EventInput) (*models.Event, error) {
	op := policy.CreateEvent.String()
	if err := s.authz.Authorize(ctx, actor, policy.CreateEvent, nil); err != nil {
		return nil, err
	}

	event := models.Event{
		ContractID:     in.ContractID,
		SupportContact: trimmedOrNil(in.SupportContact),
		StartDate:      in.StartDate.UTC(),
		EndDate:        in.EndDate.UTC(),
		Location:       strings.TrimSpace(in.Location),
		Attendees:      in.Attendees,
		Notes:          in.Notes,
	}
	err := s.inTx(ctx, op, func(tx *gorm.DB) error {
		contract, err := load[models.Contract](tx, op, "contract", in.ContractID)
		if err != nil {
			return err
		}
		if !contract.Signed {
			return apperr.PreconditionFailed(op, "contract not signed")
		}
		if !event.DatesValid() {
			return datesInvalid(op)
		}
		if err := eventViolations(&event).Err(op); err != nil {
			return err
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, report.EventCreated, "event created", map[string]any{
		"event_id": event.ID, "contract_id": event.ContractID, "by": actor.ID,
	})
	return &event, nil
}

// Update authorizes against the support contact stored before the change,
// then merges only the supplied fields.
func (s *EventService) Update(ctx context.Context, actor *models.User, id uint, upd EventUpdate) (*models.Event, error) {
	op := policy.UpdateEvent.String()
	if err := s.authz.Precheck(ctx, actor, policy.UpdateEvent); err != nil {
		return nil, err
	}

	var event *models.Event
	err := s.inTx(ctx, op, func(tx *gorm.DB) error {
		var err error
		if event, err = load[models.Event](tx, op, "event", id); err != nil {
			return err
		}
		if err := s.authz.Authorize(ctx, actor, policy.UpdateEvent, event); err != nil {
			return err
		}

		if upd.SupportContact.Set {
			upd.SupportContact.Value = strings.TrimSpace(upd.SupportContact.Value)
		}
		applyPtr(upd.SupportContact, &event.SupportContact)
		applyPtr(upd.Notes, &event.Notes)
		if start, ok := upd.StartDate.Get(); ok {
			event.StartDate = start.UTC()
		}
		if end, ok := upd.EndDate.Get(); ok {
			event.EndDate = end.UTC()
		}
		upd.Location.applyTo(&event.Location)
		upd.Attendees.applyTo(&event.Attendees)
		event.Location = strings.TrimSpace(event.Location)

		if !event.DatesValid() {
			return datesInvalid(op)
		}
		if err := eventViolations(event).Err(op); err != nil {
			return err
		}
		return tx.Save(event).Error
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, report.EventUpdated, "event updated", map[string]any{
		"event_id": event.ID, "contract_id": event.ContractID, "by": actor.ID,
	})
	return event, nil
}

func (s *EventService) Get(ctx context.Context, actor *models.User, id uint) (*models.Event, error) {
	op := policy.ListEvents.String()
	if err := s.authz.Authorize(ctx, actor, policy.ListEvents, nil); err != nil {
		return nil, err
	}
	event, err := load[models.Event](s.db.WithContext(ctx), op, "event", id)
	if err != nil && apperr.KindOf(err) != apperr.KindNotFound {
		return nil, s.storageFailure(ctx, op, err)
	}
	return event, err
}

// List returns every event with the caller's edit affordance.
func (s *EventService) List(ctx context.Context, actor *models.User) ([]Row[models.Event], error) {
	op := policy.ListEvents.String()
	if err := s.authz.Authorize(ctx, actor, policy.ListEvents, nil); err != nil {
		return nil, err
	}
	var events []models.Event
	if err := s.db.WithContext(ctx).Order("id").Find(&events).Error; err != nil {
		return nil, s.storageFailure(ctx, op, err)
	}
	return s.rows(ctx, actor, events), nil
}

func (s *EventService) rows(ctx context.Context, actor *models.User, events []models.Event) []Row[models.Event] {
	rows := make([]Row[models.Event], len(events))
	for i := range events {
		rows[i] = Row[models.Event]{
			Item:     events[i],
			Editable: s.authz.CanEdit(ctx, actor, policy.UpdateEvent, &events[i]),
		}
	}
	return rows
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
