package seeder

import (
	"context"
	"sync"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

var _ moduleStore = &moduleStoreMock{}

type moduleStoreMock struct {
	UpsertFunc     func(ctx context.Context, module domain.Module) (domain.Module, error)
	UpsertPathFunc func(ctx context.Context, path domain.Path) (domain.Path, error)

	calls struct {
		Upsert []struct {
			Ctx    context.Context
			Module domain.Module
		}
		UpsertPath []struct {
			Ctx  context.Context
			Path domain.Path
		}
	}
	lockUpsert     sync.RWMutex
	lockUpsertPath sync.RWMutex
}

func (mock *moduleStoreMock) Upsert(ctx context.Context, module domain.Module) (domain.Module, error) {
	if mock.UpsertFunc == nil {
		panic("moduleStoreMock.UpsertFunc: method is nil but moduleStore.Upsert was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		Module domain.Module
	}{Ctx: ctx, Module: module}
	mock.lockUpsert.Lock()
	mock.calls.Upsert = append(mock.calls.Upsert, callInfo)
	mock.lockUpsert.Unlock()
	return mock.UpsertFunc(ctx, module)
}

func (mock *moduleStoreMock) UpsertCalls() []struct {
	Ctx    context.Context
	Module domain.Module
} {
	mock.lockUpsert.RLock()
	calls := mock.calls.Upsert
	mock.lockUpsert.RUnlock()
	return calls
}

func (mock *moduleStoreMock) UpsertPath(ctx context.Context, path domain.Path) (domain.Path, error) {
	if mock.UpsertPathFunc == nil {
		panic("moduleStoreMock.UpsertPathFunc: method is nil but moduleStore.UpsertPath was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Path domain.Path
	}{Ctx: ctx, Path: path}
	mock.lockUpsertPath.Lock()
	mock.calls.UpsertPath = append(mock.calls.UpsertPath, callInfo)
	mock.lockUpsertPath.Unlock()
	return mock.UpsertPathFunc(ctx, path)
}

func (mock *moduleStoreMock) UpsertPathCalls() []struct {
	Ctx  context.Context
	Path domain.Path
} {
	mock.lockUpsertPath.RLock()
	calls := mock.calls.UpsertPath
	mock.lockUpsertPath.RUnlock()
	return calls
}
