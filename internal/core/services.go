package core

import (
	"context"

	"github.com/SudityaSenaNimmala/Access-Requests/internal/model"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/notify"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/query"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/target"
)

// TargetRunner executes parsed operations against registered instances.
// *target.Runner satisfies this interface.
type TargetRunner interface {
	Run(ctx context.Context, inst *model.DBInstance, op *query.Operation) (*target.Result, error)
	TestConnection(ctx context.Context, inst *model.DBInstance) ([]string, error)
}

// Notifier delivers request status events to stakeholders. Delivery is
// best-effort and must never fail the transition that produced the event.
// *notify.Hub satisfies this interface.
type Notifier interface {
	Publish(ctx context.Context, ev notify.Event)
}

type Services struct {
	AccessRequest *AccessRequestService
	DBInstance    *DBInstanceService
	User          *UserService
}

func NewServices(db DB, runner TargetRunner, notifier Notifier, secretsKey []byte) *Services {
	return &Services{
		AccessRequest: NewAccessRequestService(db, runner, notifier),
		DBInstance:    NewDBInstanceService(db, runner, secretsKey),
		User:          NewUserService(db),
	}
}
