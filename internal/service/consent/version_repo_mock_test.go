package consent

import (
	"context"
	"sync"
	"time"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

var _ versionRepo = &versionRepoMock{}

type versionRepoMock struct {
	CreateVersionFunc    func(ctx context.Context, version domain.ConsentVersion) (domain.ConsentVersion, error)
	GetVersionFunc       func(ctx context.Context, version string) (domain.ConsentVersion, error)
	GetActiveVersionFunc func(ctx context.Context) (domain.ConsentVersion, error)
	ActivateVersionFunc  func(ctx context.Context, version string, at time.Time) (domain.ConsentVersion, error)
	RetireActiveFunc     func(ctx context.Context, at time.Time) (int64, error)
	ListVersionsFunc     func(ctx context.Context) ([]domain.ConsentVersion, error)

	calls struct {
		CreateVersion []struct {
			Ctx     context.Context
			Version domain.ConsentVersion
		}
		GetVersion []struct {
			Ctx     context.Context
			Version string
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
		ListVersions []struct {
			Ctx context.Context
		}
	}
	lockCreateVersion    sync.RWMutex
	lockGetVersion       sync.RWMutex
	lockGetActiveVersion sync.RWMutex
	lockActivateVersion  sync.RWMutex
	lockRetireActive     sync.RWMutex
	lockListVersions     sync.RWMutex
}

func (mock *versionRepoMock) CreateVersion(ctx context.Context, version domain.ConsentVersion) (domain.ConsentVersion, error) {
	if mock.CreateVersionFunc == nil {
		panic("versionRepoMock.CreateVersionFunc: method is nil but versionRepo.CreateVersion was just called")
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

func (mock *versionRepoMock) CreateVersionCalls() []struct {
	Ctx     context.Context
	Version domain.ConsentVersion
} {
	mock.lockCreateVersion.RLock()
	calls := mock.calls.CreateVersion
	mock.lockCreateVersion.RUnlock()
	return calls
}

func (mock *versionRepoMock) GetVersion(ctx context.Context, version string) (domain.ConsentVersion, error) {
	if mock.GetVersionFunc == nil {
		panic("versionRepoMock.GetVersionFunc: method is nil but versionRepo.GetVersion was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Version string
	}{Ctx: ctx, Version: version}
	mock.lockGetVersion.Lock()
	mock.calls.GetVersion = append(mock.calls.GetVersion, callInfo)
	mock.lockGetVersion.Unlock()
	return mock.GetVersionFunc(ctx, version)
}

func (mock *versionRepoMock) GetVersionCalls() []struct {
	Ctx     context.Context
	Version string
} {
	mock.lockGetVersion.RLock()
	calls := mock.calls.GetVersion
	mock.lockGetVersion.RUnlock()
	return calls
}

func (mock *versionRepoMock) GetActiveVersion(ctx context.Context) (domain.ConsentVersion, error) {
	if mock.GetActiveVersionFunc == nil {
		panic("versionRepoMock.GetActiveVersionFunc: method is nil but versionRepo.GetActiveVersion was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockGetActiveVersion.Lock()
	mock.calls.GetActiveVersion = append(mock.calls.GetActiveVersion, callInfo)
	mock.lockGetActiveVersion.Unlock()
	return mock.GetActiveVersionFunc(ctx)
}

func (mock *versionRepoMock) GetActiveVersionCalls() []struct {
	Ctx context.Context
} {
	mock.lockGetActiveVersion.RLock()
	calls := mock.calls.GetActiveVersion
	mock.lockGetActiveVersion.RUnlock()
	return calls
}

func (mock *versionRepoMock) ActivateVersion(ctx context.Context, version string, at time.Time) (domain.ConsentVersion, error) {
	if mock.ActivateVersionFunc == nil {
		panic("versionRepoMock.ActivateVersionFunc: method is nil but versionRepo.ActivateVersion was just called")
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

func (mock *versionRepoMock) ActivateVersionCalls() []struct {
	Ctx     context.Context
	Version string
	At      time.Time
} {
	mock.lockActivateVersion.RLock()
	calls := mock.calls.ActivateVersion
	mock.lockActivateVersion.RUnlock()
	return calls
}

func (mock *versionRepoMock) RetireActive(ctx context.Context, at time.Time) (int64, error) {
	if mock.RetireActiveFunc == nil {
		panic("versionRepoMock.RetireActiveFunc: method is nil but versionRepo.RetireActive was just called")
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

func (mock *versionRepoMock) RetireActiveCalls() []struct {
	Ctx context.Context
	At  time.Time
} {
	mock.lockRetireActive.RLock()
	calls := mock.calls.RetireActive
	mock.lockRetireActive.RUnlock()
	return calls
}

func (mock *versionRepoMock) ListVersions(ctx context.Context) ([]domain.ConsentVersion, error) {
	if mock.ListVersionsFunc == nil {
		panic("versionRepoMock.ListVersionsFunc: method is nil but versionRepo.ListVersions was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{Ctx: ctx}
	mock.lockListVersions.Lock()
	mock.calls.ListVersions = append(mock.calls.ListVersions, callInfo)
	mock.lockListVersions.Unlock()
	return mock.ListVersionsFunc(ctx)
}

func (mock *versionRepoMock) ListVersionsCalls() []struct {
	Ctx context.Context
} {
	mock.lockListVersions.RLock()
	calls := mock.calls.ListVersions
	mock.lockListVersions.RUnlock()
	return calls
}
