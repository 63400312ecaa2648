package listener

import (
	"context"

	"github.com/ogurasousui/workforce-lifecycle/internal/core/employee"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/shared"
	"github.com/ogurasousui/workforce-lifecycle/internal/core/team"
	"github.com/ogurasousui/workforce-lifecycle/internal/platform/events"
)

// Subscriber はイベント種別ごとのハンドラ登録先です。
type Subscriber interface {
	Subscribe(listener, eventType string, handler func(context.Context, shared.Event) error)
}

// Register は各リスナーを購読するイベント種別へ登録します。
func Register(bus Subscriber, offboarding *Offboarding, capacity *TeamCapacity, audit *Audit) {
	bus.Subscribe(offboarding.Name(), employee.EventTerminated, offboarding.Handle)
	bus.Subscribe(capacity.Name(), team.EventEmployeeAssigned, capacity.Handle)
	bus.Subscribe(capacity.Name(), team.EventEmployeeRemoved, capacity.Handle)
	bus.Subscribe(audit.Name(), events.AllEvents, audit.Handle)
}
