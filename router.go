package goAuthClient

import (
	"github.com/MrEthical07/goAuthClient/codec"
)

// Target is where a routed error is shown.
type Target uint8

const (
	// TargetField attaches the message to an input.
	TargetField Target = iota + 1
	// TargetNotification shows the message as a general notification.
	TargetNotification
)

// Instruction tells the presentation layer what to show.
type Instruction struct {
	Target  Target
	Field   Field
	Message string
	Focus   bool
}

// Router maps decoded outcomes to display instructions.
type Router struct {
	messages MessagesConfig
}

// NewRouter returns a router using msgs.
func NewRouter(msgs MessagesConfig) Router {
	return Router{messages: msgs}
}

// Route returns the instruction for o. Success yields no instruction.
func (r Router) Route(o codec.Outcome) (Instruction, bool) {
	switch v := o.(type) {
	case codec.FieldError:
		msg := v.Message
		if msg == "" {
			msg = r.messages.FieldFallback
		}
		return Instruction{Target: TargetField, Field: v.Field, Message: msg, Focus: true}, true
	case codec.GenericError:
		return Instruction{Target: TargetNotification, Message: r.messages.ServerError}, true
	case codec.TransportFailure:
		return Instruction{Target: TargetNotification, Message: r.messages.ServerUnreachable}, true
	default:
		return Instruction{}, false
	}
}

// RoutePersistFailure returns the instruction for a session that could not be stored.
func (r Router) RoutePersistFailure(error) Instruction {
	return Instruction{Target: TargetNotification, Message: r.messages.ServerError}
}

func (in Instruction) signal(attemptID string) Signal {
	if in.Target == TargetField {
		return Signal{
			Kind:      SignalFieldError,
			AttemptID: attemptID,
			Field:     in.Field,
			Message:   in.Message,
			Focus:     in.Focus,
		}
	}
	return Signal{Kind: SignalGenericNotification, AttemptID: attemptID, Message: in.Message}
}
