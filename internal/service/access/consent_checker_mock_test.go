package access

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

var _ consentChecker = &consentCheckerMock{}

type consentCheckerMock struct {
	HasValidConsentFunc func(ctx context.Context, userID uuid.UUID) (bool, error)

	calls struct {
		HasValidConsent []struct {
			Ctx    context.Context
			UserID uuid.UUID
		}
	}
	lockHasValidConsent sync.RWMutex
}

func (mock *consentCheckerMock) HasValidConsent(ctx context.Context, userID uuid.UUID) (bool, error) {
	if mock.HasValidConsentFunc == nil {
		panic("consentCheckerMock.HasValidConsentFunc: method is nil but consentChecker.HasValidConsent was just called")
	}
	callInfo := struct {
		Ctx    context.Context
		UserID uuid.UUID
	}{Ctx: ctx, UserID: userID}
	mock.lockHasValidConsent.Lock()
	mock.calls.HasValidConsent = append(mock.calls.HasValidConsent, callInfo)
	mock.lockHasValidConsent.Unlock()
	return mock.HasValidConsentFunc(ctx, userID)
}

func (mock *consentCheckerMock) HasValidConsentCalls() []struct {
	Ctx    context.Context
	UserID uuid.UUID
} {
	mock.lockHasValidConsent.RLock()
	calls := mock.calls.HasValidConsent
	mock.lockHasValidConsent.RUnlock()
	return calls
}
