package progress

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

var _ progressRepo = &progressRepoMock{}

type progressRepoMock struct {
	CreateFunc                      func(ctx context.Context, record *domain.ProgressRecord) (*domain.ProgressRecord, error)
	UpdateResponsesFunc             func(ctx context.Context, userID, moduleID uuid.UUID, responses map[string]any, lastSavedAt time.Time) (*domain.ProgressRecord, error)
	CompleteFunc                    func(ctx context.Context, userID, moduleID uuid.UUID, responses, metadata map[string]any, completedAt time.Time) (*domain.ProgressRecord, error)
	GetByUserAndModuleFunc          func(ctx context.Context, userID, moduleID uuid.UUID) (*domain.ProgressRecord, error)
	GetByUserAndModuleForUpdateFunc func(ctx context.Context, userID, moduleID uuid.UUID) (*domain.ProgressRecord, error)
	ListByUserFunc                  func(ctx context.Context, userID uuid.UUID) ([]*domain.ProgressRecord, error)

	calls struct {
		Create []struct {
			Ctx    context.Context
			Record *domain.ProgressRecord
		}
		UpdateResponses []struct {
			Ctx         context.Context
			UserID      uuid.UUID
			ModuleID    uuid.UUID
			Responses   map[string]any
			LastSavedAt time.Time
		}
		Complete []struct {
			Ctx         context.Context
			UserID      uuid.UUID
			ModuleID    uuid.UUID
			Responses   map[string]any
			Metadata    map[string]any
			CompletedAt time.Time
		}
		GetByUserAndModule []struct {
			Ctx      context.Context
			UserID   uuid.UUID
			ModuleID uuid.UUID
		}
		GetByUserAndModuleForUpdate []struct {
			Ctx      context.Context
			UserID   uuid.UUID
			ModuleID uuid.UUID
		}
		ListByUser []struct {
			Ctx    context.Context
			UserID uuid.UUID
		}
	}
	lockCreate                      sync.RWMutex
	lockUpdateResponses             sync.RWMutex
	lockComplete                    sync.RWMutex
	lockGetByUserAndModule          sync.RWMutex
	lockGetByUserAndModuleForUpdate sync.RWMutex
	lockListByUser                  sync.RWMutex
}

func (mock *progressRepoMock) Create(ctx context.Context, record *domain.ProgressRecord) (*domain.ProgressRecord, error) {
	if mock.CreateFunc == nil {
		panic("progressRepoMock.CreateFunc: method is nil but progressRepo.Create was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Record *domain.ProgressRecord
	}{Ctx: ctx, Record: record}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, record)
}

func (mock *progressRepoMock) CreateCalls() []struct {
	Ctx    context.Context
	Record *domain.ProgressRecord
} {
	mock.lockCreate.RLock()
	calls := mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

func (mock *progressRepoMock) UpdateResponses(ctx context.Context, userID, moduleID uuid.UUID, responses map[string]any, lastSavedAt time.Time) (*domain.ProgressRecord, error) {
	if mock.UpdateResponsesFunc == nil {
		panic("progressRepoMock.UpdateResponsesFunc: method is nil but progressRepo.UpdateResponses was just called")
	}
	callInfo := struct {
		Ctx         context.Context
		UserID      uuid.UUID
		ModuleID    uuid.UUID
		Responses   map[string]any
		LastSavedAt time.Time
	}{Ctx: ctx, UserID: userID, ModuleID: moduleID, Responses: responses, LastSavedAt: lastSavedAt}
	mock.lockUpdateResponses.Lock()
	mock.calls.UpdateResponses = append(mock.calls.UpdateResponses, callInfo)
	mock.lockUpdateResponses.Unlock()
	return mock.UpdateResponsesFunc(ctx, userID, moduleID, responses, lastSavedAt)
}

func (mock *progressRepoMock) UpdateResponsesCalls() []struct {
	Ctx         context.Context
	UserID      uuid.UUID
	ModuleID    uuid.UUID
	Responses   map[string]any
	LastSavedAt time.Time
} {
	mock.lockUpdateResponses.RLock()
	calls := mock.calls.UpdateResponses
	mock.lockUpdateResponses.RUnlock()
	return calls
}

func (mock *progressRepoMock) Complete(ctx context.Context, userID, moduleID uuid.UUID, responses, metadata map[string]any, completedAt time.Time) (*domain.ProgressRecord, error) {
	if mock.CompleteFunc == nil {
		panic("progressRepoMock.CompleteFunc: method is nil but progressRepo.Complete was just called")
	}
	callInfo := struct {
		Ctx         context.Context
		UserID      uuid.UUID
		ModuleID    uuid.UUID
		Responses   map[string]any
		Metadata    map[string]any
		CompletedAt time.Time
	}{Ctx: ctx, UserID: userID, ModuleID: moduleID, Responses: responses, Metadata: metadata, CompletedAt: completedAt}
	mock.lockComplete.Lock()
	mock.calls.Complete = append(mock.calls.Complete, callInfo)
	mock.lockComplete.Unlock()
	return mock.CompleteFunc(ctx, userID, moduleID, responses, metadata, completedAt)
}

func (mock *progressRepoMock) CompleteCalls() []struct {
	Ctx         context.Context
	UserID      uuid.UUID
	ModuleID    uuid.UUID
	Responses   map[string]any
	Metadata    map[string]any
	CompletedAt time.Time
} {
	mock.lockComplete.RLock()
	calls := mock.calls.Complete
	mock.lockComplete.RUnlock()
	return calls
}

func (mock *progressRepoMock) GetByUserAndModule(ctx context.Context, userID, moduleID uuid.UUID) (*domain.ProgressRecord, error) {
	if mock.GetByUserAndModuleFunc == nil {
		panic("progressRepoMock.GetByUserAndModuleFunc: method is nil but progressRepo.GetByUserAndModule was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		UserID   uuid.UUID
		ModuleID uuid.UUID
	}{Ctx: ctx, UserID: userID, ModuleID: moduleID}
	mock.lockGetByUserAndModule.Lock()
	mock.calls.GetByUserAndModule = append(mock.calls.GetByUserAndModule, callInfo)
	mock.lockGetByUserAndModule.Unlock()
	return mock.GetByUserAndModuleFunc(ctx, userID, moduleID)
}

func (mock *progressRepoMock) GetByUserAndModuleCalls() []struct {
	Ctx      context.Context
	UserID   uuid.UUID
	ModuleID uuid.UUID
} {
	mock.lockGetByUserAndModule.RLock()
	calls := mock.calls.GetByUserAndModule
	mock.lockGetByUserAndModule.RUnlock()
	return calls
}

func (mock *progressRepoMock) GetByUserAndModuleForUpdate(ctx context.Context, userID, moduleID uuid.UUID) (*domain.ProgressRecord, error) {
	if mock.GetByUserAndModuleForUpdateFunc == nil {
		panic("progressRepoMock.GetByUserAndModuleForUpdateFunc: method is nil but progressRepo.GetByUserAndModuleForUpdate was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		UserID   uuid.UUID
		ModuleID uuid.UUID
	}{Ctx: ctx, UserID: userID, ModuleID: moduleID}
	mock.lockGetByUserAndModuleForUpdate.Lock()
	mock.calls.GetByUserAndModuleForUpdate = append(mock.calls.GetByUserAndModuleForUpdate, callInfo)
	mock.lockGetByUserAndModuleForUpdate.Unlock()
	return mock.GetByUserAndModuleForUpdateFunc(ctx, userID, moduleID)
}

func (mock *progressRepoMock) GetByUserAndModuleForUpdateCalls() []struct {
	Ctx      context.Context
	UserID   uuid.UUID
	ModuleID uuid.UUID
} {
	mock.lockGetByUserAndModuleForUpdate.RLock()
	calls := mock.calls.GetByUserAndModuleForUpdate
	mock.lockGetByUserAndModuleForUpdate.RUnlock()
	return calls
}

func (mock *progressRepoMock) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ProgressRecord, error) {
	if mock.ListByUserFunc == nil {
		panic("progressRepoMock.ListByUserFunc: method is nil but progressRepo.ListByUser was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
	}{Ctx: ctx, UserID: userID}
	mock.lockListByUser.Lock()
	mock.calls.ListByUser = append(mock.calls.ListByUser, callInfo)
	mock.lockListByUser.Unlock()
	return mock.ListByUserFunc(ctx, userID)
}

func (mock *progressRepoMock) ListByUserCalls() []struct {
	Ctx    context.Context
	UserID uuid.UUID
} {
	mock.lockListByUser.RLock()
	calls := mock.calls.ListByUser
	mock.lockListByUser.RUnlock()
	return calls
}
