package progress

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/fernwood-lab/studyflow-backend/internal/domain"
)

var _ auditRecorder = &auditRecorderMock{}

type auditRecorderMock struct {
	RecordFunc func(ctx context.Context, userID uuid.UUID, eventType domain.AuditEventType, payload map[string]any)

	calls struct {
		Record []struct {
			Ctx       context.Context
			UserID    uuid.UUID
			EventType domain.AuditEventType
			Payload   map[string]any
		}
	}
	lockRecord sync.RWMutex
}

func (mock *auditRecorderMock) Record(ctx context.Context, userID uuid.UUID, eventType domain.AuditEventType, payload map[string]any) {
	if mock.RecordFunc == nil {
		panic("auditRecorderMock.RecordFunc: method is nil but auditRecorder.Record was just called")
	}
	callInfo := struct {
		Ctx       context.Context
		UserID    uuid.UUID
		EventType domain.AuditEventType
		Payload   map[string]any
	}{Ctx: ctx, UserID: userID, EventType: eventType, Payload: payload}
	mock.lockRecord.Lock()
	mock.calls.Record = append(mock.calls.Record, callInfo)
	mock.lockRecord.Unlock()
	mock.RecordFunc(ctx, userID, eventType, payload)
}

func (mock *auditRecorderMock) RecordCalls() []struct {
	Ctx       context.Context
	UserID    uuid.UUID
	EventType domain.AuditEventType
	Payload   map[string]any
} {
	mock.lockRecord.RLock()
	calls := mock.calls.Record
	mock.lockRecord.RUnlock()
	return calls
}
