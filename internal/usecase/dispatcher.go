package usecase

import (
	"pairchat/internal/domain/entity"
)

// dispatcher fans annotated inbound traffic out to the collaborators caching
// dependent state. Balance is derived from debts, so the two are always
// refreshed together. Each refresh handles and logs its own failures;
// nothing propagates back into message handling.
type dispatcher struct {
	refreshTasks   func()
	refreshDebts   func()
	refreshBalance func()
}

func (d *dispatcher) dispatch(frame entity.InboundFrame) {
	switch frame.Type {
	case entity.FrameTypeMessage:
		if frame.Annotation == nil {
			return
		}
		switch frame.Annotation.Kind {
		case entity.AnnotationKindTask:
			d.refreshTasks()
		case entity.AnnotationKindExpense:
			d.refreshTasks()
			d.refreshDebts()
			d.refreshBalance()
		}

	case entity.FrameTypeNotification:
		if frame.TaskID != nil {
			d.refreshTasks()
		}
		if frame.DebtID != nil {
			d.refreshDebts()
			d.refreshBalance()
		}
	}
}
