package identity

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

var _ identityRepo = &identityRepoMock{}

type identityRepoMock struct {
	CreateFunc           func(ctx context.Context, identity domain.Identity) (domain.Identity, error)
	GetByIDFunc          func(ctx context.Context, id uuid.UUID) (domain.Identity, error)
	GetByAliasFunc       func(ctx context.Context, alias string) (domain.Identity, error)
	UpdateAttributesFunc func(ctx context.Context, id uuid.UUID, attrs map[string]any) (domain.Identity, error)
	UpdateLastSeenFunc   func(ctx context.Context, id uuid.UUID, at time.Time) error
	ListFunc             func(ctx context.Context, filter domain.IdentityFilter) ([]domain.Identity, int, error)

	calls struct {
		Create []struct {
			Ctx      context.Context
			Identity domain.Identity
		}
		GetByID []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		GetByAlias []struct {
			Ctx   context.Context
			Alias string
		}
		UpdateAttributes []struct {
			Ctx   context.Context
			ID    uuid.UUID
			Attrs map[string]any
		}
		UpdateLastSeen []struct {
			Ctx context.Context
			ID  uuid.UUID
			At  time.Time
		}
		List []struct {
			Ctx    context.Context
			Filter domain.IdentityFilter
		}
	}
	lockCreate           sync.RWMutex
	lockGetByID          sync.RWMutex
	lockGetByAlias       sync.RWMutex
	lockUpdateAttributes sync.RWMutex
	lockUpdateLastSeen   sync.RWMutex
	lockList             sync.RWMutex
}

func (mock *identityRepoMock) Create(ctx context.Context, identity domain.Identity) (domain.Identity, error) {
	if mock.CreateFunc == nil {
		panic("identityRepoMock.CreateFunc: method is nil but identityRepo.Create was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		Identity domain.Identity
	}{Ctx: ctx, Identity: identity}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, identity)
}

func (mock *identityRepoMock) CreateCalls() []struct {
	Ctx      context.Context
	Identity domain.Identity
} {
	mock.lockCreate.RLock()
	calls := mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

func (mock *identityRepoMock) GetByID(ctx context.Context, id uuid.UUID) (domain.Identity, error) {
	if mock.GetByIDFunc == nil {
		panic("identityRepoMock.GetByIDFunc: method is nil but identityRepo.GetByID was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{Ctx: ctx, ID: id}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, callInfo)
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, id)
}

func (mock *identityRepoMock) GetByIDCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	mock.lockGetByID.RLock()
	calls := mock.calls.GetByID
	mock.lockGetByID.RUnlock()
	return calls
}

func (mock *identityRepoMock) GetByAlias(ctx context.Context, alias string) (domain.Identity, error) {
	if mock.GetByAliasFunc == nil {
		panic("identityRepoMock.GetByAliasFunc: method is nil but identityRepo.GetByAlias was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Alias string
	}{Ctx: ctx, Alias: alias}
	mock.lockGetByAlias.Lock()
	mock.calls.GetByAlias = append(mock.calls.GetByAlias, callInfo)
	mock.lockGetByAlias.Unlock()
	return mock.GetByAliasFunc(ctx, alias)
}

func (mock *identityRepoMock) GetByAliasCalls() []struct {
	Ctx   context.Context
	Alias string
} {
	mock.lockGetByAlias.RLock()
	calls := mock.calls.GetByAlias
	mock.lockGetByAlias.RUnlock()
	return calls
}

func (mock *identityRepoMock) UpdateAttributes(ctx context.Context, id uuid.UUID, attrs map[string]any) (domain.Identity, error) {
	if mock.UpdateAttributesFunc == nil {
		panic("identityRepoMock.UpdateAttributesFunc: method is nil but identityRepo.UpdateAttributes was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		ID    uuid.UUID
		Attrs map[string]any
	}{Ctx: ctx, ID: id, Attrs: attrs}
	mock.lockUpdateAttributes.Lock()
	mock.calls.UpdateAttributes = append(mock.calls.UpdateAttributes, callInfo)
	mock.lockUpdateAttributes.Unlock()
	return mock.UpdateAttributesFunc(ctx, id, attrs)
}

func (mock *identityRepoMock) UpdateAttributesCalls() []struct {
	Ctx   context.Context
	ID    uuid.UUID
	Attrs map[string]any
} {
	mock.lockUpdateAttributes.RLock()
	calls := mock.calls.UpdateAttributes
	mock.lockUpdateAttributes.RUnlock()
	return calls
}

func (mock *identityRepoMock) UpdateLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error {
	if mock.UpdateLastSeenFunc == nil {
		panic("identityRepoMock.UpdateLastSeenFunc: method is nil but identityRepo.UpdateLastSeen was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
		At  time.Time
	}{Ctx: ctx, ID: id, At: at}
	mock.lockUpdateLastSeen.Lock()
	mock.calls.UpdateLastSeen = append(mock.calls.UpdateLastSeen, callInfo)
	mock.lockUpdateLastSeen.Unlock()
	return mock.UpdateLastSeenFunc(ctx, id, at)
}

func (mock *identityRepoMock) UpdateLastSeenCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
	At  time.Time
} {
	mock.lockUpdateLastSeen.RLock()
	calls := mock.calls.UpdateLastSeen
	mock.lockUpdateLastSeen.RUnlock()
	return calls
}

func (mock *identityRepoMock) List(ctx context.Context, filter domain.IdentityFilter) ([]domain.Identity, int, error) {
	if mock.ListFunc == nil {
		panic("identityRepoMock.ListFunc: method is nil but identityRepo.List was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Filter domain.IdentityFilter
	}{Ctx: ctx, Filter: filter}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, filter)
}

func (mock *identityRepoMock) ListCalls() []struct {
	Ctx    context.Context
	Filter domain.IdentityFilter
} {
	mock.lockList.RLock()
	calls := mock.calls.List
	mock.lockList.RUnlock()
	return calls
}
