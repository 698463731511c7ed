package policy

import "github.com/diewo77/epic-events/internal/gate"

// Resource types known to the gate.
const (
	ResourceClient   = "client"
	ResourceContract = "contract"
	ResourceEvent    = "event"
	ResourceUser     = "user"
)

// Operation is a guarded entry point of the core.
type Operation int

const (
	CreateClient Operation = iota + 1
	UpdateClient
	DeleteClient
	ListClients
	CreateContract
	UpdateContract
	ListContracts
	FilterContracts
	CreateEvent
	UpdateEvent
	ListEvents
	FilterEvents
	RegisterUser
	UpdateUser
)

// Operations lists every operation, in declaration order.
var Operations = []Operation{
	CreateClient, UpdateClient, DeleteClient, ListClients,
	CreateContract, UpdateContract, ListContracts, FilterContracts,
	CreateEvent, UpdateEvent, ListEvents, FilterEvents,
	RegisterUser, UpdateUser,
}

type opSpec struct {
	name     string
	resource string
	action   gate.Action
}

var opSpecs = map[Operation]opSpec{
	CreateClient:    {"CreateClient", ResourceClient, gate.ActionCreate},
	UpdateClient:    {"UpdateClient", ResourceClient, gate.ActionUpdate},
	DeleteClient:    {"DeleteClient", ResourceClient, gate.ActionDelete},
	ListClients:     {"ListClients", ResourceClient, gate.ActionList},
	CreateContract:  {"CreateContract", ResourceContract, gate.ActionCreate},
	UpdateContract:  {"UpdateContract", ResourceContract, gate.ActionUpdate},
	ListContracts:   {"ListContracts", ResourceContract, gate.ActionList},
	FilterContracts: {"FilterContracts", ResourceContract, gate.ActionFilter},
	CreateEvent:     {"CreateEvent", ResourceEvent, gate.ActionCreate},
	UpdateEvent:     {"UpdateEvent", ResourceEvent, gate.ActionUpdate},
	ListEvents:      {"ListEvents", ResourceEvent, gate.ActionList},
	FilterEvents:    {"FilterEvents", ResourceEvent, gate.ActionFilter},
	RegisterUser:    {"RegisterUser", ResourceUser, gate.ActionCreate},
	UpdateUser:      {"UpdateUser", ResourceUser, gate.ActionUpdate},
}

func (op Operation) String() string {
	if s, ok := opSpecs[op]; ok {
		return s.name
	}
	return "UnknownOperation"
}

// Resource returns the resource type the operation acts on.
func (op Operation) Resource() string { return opSpecs[op].resource }

// Action returns the gate action of the operation.
func (op Operation) Action() gate.Action { return opSpecs[op].action }

// Permission returns the "resource:action" permission checked for op.
func (op Operation) Permission() gate.Permission {
	return gate.NewPermission(op.Resource(), op.Action())
}
