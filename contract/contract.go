//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"raid-lab/domain"
	"raid-lab/domain/event"

	"github.com/google/uuid"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes, avoiding the need for
// manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

type IRegistry interface {
	GetSinksForSession(sessionID uuid.UUID) []EventSink
	Subscribe(participantID domain.ParticipantID, sessionID uuid.UUID, sink EventSink)
	Unsubscribe(participantID domain.ParticipantID, sessionID uuid.UUID)
}

type IOrchestrator interface {
	OpenRaid(bossName string) (uuid.UUID, error)
	OpenMule(bossName string) (uuid.UUID, error)
	OpenTrain(bossName, at, location string) (uuid.UUID, error)
	Close(id uuid.UUID, reason string) error
	Snapshot(id uuid.UUID) (domain.RaidSnapshot, error)
	Dispatch(cmd domain.Command) error
	Start(ctx context.Context) error
	Stop()
}
