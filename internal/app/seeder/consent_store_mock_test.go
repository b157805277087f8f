package seeder

import (
	"context"
	"sync"
	"time"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

var _ consentStore = &consentStoreMock{}

type consentStoreMock struct {
	CreateVersionFunc    func(ctx context.Context, version domain.ConsentVersion) (domain.ConsentVersion, error)
	GetActiveVersionFunc func(ctx context.Context) (domain.ConsentVersion, error)
	ActivateVersionFunc  func(ctx context.Context, version string, at time.Time) (domain.ConsentVersion, error)
	RetireActiveFunc     func(ctx context.Context, at time.Time) (int64, error)

	calls struct {
		CreateVersion []struct {
			Ctx     context.Context
			Version domain.ConsentVersion
		}
		GetActiveVersion []struct {
			Ctx context.Context
		}
		ActivateVersion []struct {
			Ctx     context.Context
			Version string
			At      time.Time
		}
		RetireActive []struct {
			Ctx context.Context
			At  time.Time
		}
	}
	lockCreateVersion    sync.RWMutex
	lockGetActiveVersion sync.RWMutex
	lockActivateVersion  sync.RWMutex
	lockRetireActive     sync.RWMutex
}

func (mock *consentStoreMock) CreateVersion(ctx context.Context, version domain.ConsentVersion) (domain.ConsentVersion, error) {
	if mock.CreateVersionFunc == nil {
		panic("consentStoreMock.CreateVersionFunc: method is nil but consentStore.CreateVersion was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Version domain.ConsentVersion
	}{Ctx: ctx, Version: version}
	mock.lockCreateVersion.Lock()
	mock.calls.CreateVersion = append(mock.calls.CreateVersion, callInfo)
	mock.lockCreateVersion.Unlock()
	return mock.CreateVersionFunc(ctx, version)
}

func (mock *consentStoreMock) CreateVersionCalls() []struct {
	Ctx     context.Context
	Version domain.ConsentVersion
} {
	mock.lockCreateVersion.RLock()
	calls := mock.calls.CreateVersion
	mock.lockCreateVersion.RUnlock()
	return calls
}

func (mock *consentStoreMock) GetActiveVersion(ctx context.Context) (domain.ConsentVersion, error) {
	if mock.GetActiveVersionFunc == nil {
		panic("consentStoreMock.GetActiveVersionFunc: method is nil but consentStore.GetActiveVersion was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockGetActiveVersion.Lock()
	mock.calls.GetActiveVersion = append(mock.calls.GetActiveVersion, callInfo)
	mock.lockGetActiveVersion.Unlock()
	return mock.GetActiveVersionFunc(ctx)
}

func (mock *consentStoreMock) GetActiveVersionCalls() []struct {
	Ctx context.Context
} {
	mock.lockGetActiveVersion.RLock()
	calls := mock.calls.GetActiveVersion
	mock.lockGetActiveVersion.RUnlock()
	return calls
}

func (mock *consentStoreMock) ActivateVersion(ctx context.Context, version string, at time.Time) (domain.ConsentVersion, error) {
	if mock.ActivateVersionFunc == nil {
		panic("consentStoreMock.ActivateVersionFunc: method is nil but consentStore.ActivateVersion was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Version string
		At      time.Time
	}{Ctx: ctx, Version: version, At: at}
	mock.lockActivateVersion.Lock()
	mock.calls.ActivateVersion = append(mock.calls.ActivateVersion, callInfo)
	mock.lockActivateVersion.Unlock()
	return mock.ActivateVersionFunc(ctx, version, at)
}

func (mock *consentStoreMock) ActivateVersionCalls() []struct {
	Ctx     context.Context
	Version string
	At      time.Time
} {
	mock.lockActivateVersion.RLock()
	calls := mock.calls.ActivateVersion
	mock.lockActivateVersion.RUnlock()
	return calls
}

func (mock *consentStoreMock) RetireActive(ctx context.Context, at time.Time) (int64, error) {
	if mock.RetireActiveFunc == nil {
		panic("consentStoreMock.RetireActiveFunc: method is nil but consentStore.RetireActive was just called")
	}
	callInfo := struct {
		Ctx context.Context
		At  time.Time
	}{Ctx: ctx, At: at}
	mock.lockRetireActive.Lock()
	mock.calls.RetireActive = append(mock.calls.RetireActive, callInfo)
	mock.lockRetireActive.Unlock()
	return mock.RetireActiveFunc(ctx, at)
}

func (mock *consentStoreMock) RetireActiveCalls() []struct {
	Ctx context.Context
	At  time.Time
} {
	mock.lockRetireActive.RLock()
	calls := mock.calls.RetireActive
	mock.lockRetireActive.RUnlock()
	return calls
}
