package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

var _ eventRepo = &eventRepoMock{}

type eventRepoMock struct {
	CreateFunc      func(ctx context.Context, event domain.AuditEvent) (domain.AuditEvent, error)
	ListFunc        func(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEvent, error)
	CountByUserFunc func(ctx context.Context, userID uuid.UUID) (int, error)

	calls struct {
		Create []struct {
			Ctx   context.Context
			Event domain.AuditEvent
		}
		List []struct {
			Ctx    context.Context
			Filter domain.AuditFilter
		}
		CountByUser []struct {
			Ctx    context.Context
			UserID uuid.UUID
		}
	}
	lockCreate      sync.RWMutex
	lockList        sync.RWMutex
	lockCountByUser sync.RWMutex
}

func (mock *eventRepoMock) Create(ctx context.Context, event domain.AuditEvent) (domain.AuditEvent, error) {
	if mock.CreateFunc == nil {
		panic("eventRepoMock.CreateFunc: method is nil but eventRepo.Create was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Event domain.AuditEvent
	}{Ctx: ctx, Event: event}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, event)
}

func (mock *eventRepoMock) CreateCalls() []struct {
	Ctx   context.Context
	Event domain.AuditEvent
} {
	mock.lockCreate.RLock()
	calls := mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

func (mock *eventRepoMock) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEvent, error) {
	if mock.ListFunc == nil {
		panic("eventRepoMock.ListFunc: method is nil but eventRepo.List was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Filter domain.AuditFilter
	}{Ctx: ctx, Filter: filter}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, filter)
}

func (mock *eventRepoMock) ListCalls() []struct {
	Ctx    context.Context
	Filter domain.AuditFilter
} {
	mock.lockList.RLock()
	calls := mock.calls.List
	mock.lockList.RUnlock()
	return calls
}

func (mock *eventRepoMock) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	if mock.CountByUserFunc == nil {
		panic("eventRepoMock.CountByUserFunc: method is nil but eventRepo.CountByUser was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
	}{Ctx: ctx, UserID: userID}
	mock.lockCountByUser.Lock()
	mock.calls.CountByUser = append(mock.calls.CountByUser, callInfo)
	mock.lockCountByUser.Unlock()
	return mock.CountByUserFunc(ctx, userID)
}

func (mock *eventRepoMock) CountByUserCalls() []struct {
	Ctx    context.Context
	UserID uuid.UUID
} {
	mock.lockCountByUser.RLock()
	calls := mock.calls.CountByUser
	mock.lockCountByUser.RUnlock()
	return calls
}
