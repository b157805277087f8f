package access

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

var _ completionSource = &completionSourceMock{}

type completionSourceMock struct {
	CompletedModuleNamesFunc func(ctx context.Context, userID uuid.UUID) (map[string]bool, error)

	calls struct {
		CompletedModuleNames []struct {
			Ctx    context.Context
			UserID uuid.UUID
		}
	}
	lockCompletedModuleNames sync.RWMutex
}

func (mock *completionSourceMock) CompletedModuleNames(ctx context.Context, userID uuid.UUID) (map[string]bool, error) {
	if mock.CompletedModuleNamesFunc == nil {
		panic("completionSourceMock.CompletedModuleNamesFunc: method is nil but completionSource.CompletedModuleNames was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
	}{Ctx: ctx, UserID: userID}
	mock.lockCompletedModuleNames.Lock()
	mock.calls.CompletedModuleNames = append(mock.calls.CompletedModuleNames, callInfo)
	mock.lockCompletedModuleNames.Unlock()
	return mock.CompletedModuleNamesFunc(ctx, userID)
}

func (mock *completionSourceMock) CompletedModuleNamesCalls() []struct {
	Ctx    context.Context
	UserID uuid.UUID
} {
	mock.lockCompletedModuleNames.RLock()
	calls := mock.calls.CompletedModuleNames
	mock.lockCompletedModuleNames.RUnlock()
	return calls
}
