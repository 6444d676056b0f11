package service

import (
	"context"

	"connectsphere/internal/model"
	"connectsphere/internal/repository"
	"connectsphere/pkg/errs"
)

const callHistoryPageSize = 50

// CallInput body of a manual call history entry
type CallInput struct {
	CallerUsername   string `json:"callerUsername"`
	ReceiverUsername string `json:"receiverUsername"`
	CallType         string `json:"callType"`
	Status           string `json:"status"`
	Duration         string `json:"duration"`
}

type CallService struct {
	calls *repository.CallRepository
}

func NewCallService(calls *repository.CallRepository) *CallService {
	return &CallService{calls: calls}
}

// Start records an outgoing call with no duration yet.
func (s *CallService) Start(ctx context.Context, caller, receiver, callType string) (*model.CallHistory, error) {
	return s.Record(ctx, CallInput{
		CallerUsername:   caller,
		ReceiverUsername: receiver,
		CallType:         callType,
		Status:           model.CallOutgoing,
	})
}

func (s *CallService) Record(ctx context.Context, in CallInput) (*model.CallHistory, error) {
	if in.CallerUsername == "" || in.ReceiverUsername == "" {
		return nil, errs.Invalid("callerUsername and receiverUsername are required")
	}
	switch in.CallType {
	case "":
		in.CallType = model.CallVoice
	case model.CallVoice, model.CallVideo:
	default:
		return nil, errs.Invalid("invalid call type %q", in.CallType)
	}
	switch in.Status {
	case "":
		in.Status = model.CallOutgoing
	case model.CallOutgoing, model.CallIncoming, model.CallMissed:
	default:
		return nil, errs.Invalid("invalid call status %q", in.Status)
	}
	call := &model.CallHistory{
		CallerUsername:   in.CallerUsername,
		ReceiverUsername: in.ReceiverUsername,
		CallType:         in.CallType,
		Status:           in.Status,
		Duration:         in.Duration,
	}
	if err := s.calls.Create(ctx, call); err != nil {
		return nil, err
	}
	return call, nil
}

// End stores the display duration of a call. Only a participant may end it.
func (s *CallService) End(ctx context.Context, username string, id uint, duration string) error {
	if id == 0 || duration == "" {
		return errs.Invalid("callId and duration are required")
	}
	call, err := s.calls.Get(ctx, id)
	if err != nil {
		return err
	}
	if call.CallerUsername != username && call.ReceiverUsername != username {
		return errs.Invalid("not a participant of call %d", id)
	}
	return s.calls.UpdateDuration(ctx, id, duration)
}

// History calls of username seen from their side, newest first.
func (s *CallService) History(ctx context.Context, username string) ([]model.CallEntry, error) {
	if username == "" {
		return nil, errs.Invalid("username is required")
	}
	calls, err := s.calls.ListForUser(ctx, username, callHistoryPageSize)
	if err != nil {
		return nil, err
	}
	out := make([]model.CallEntry, 0, len(calls))
	for i := range calls {
		out = append(out, calls[i].ViewFor(username))
	}
	return out, nil
}
