package usecase

import "pairchat/internal/domain/entity"

type verdict int

const (
	verdictNew verdict = iota
	verdictEcho
)

// classifyInbound decides whether an inbound message frame is a server echo
// of a message this client already appended optimistically on send.
//
// The rule is sender identity alone: anything from the local user is an echo
// and is discarded, trusting the optimistic copy. This loses a message if
// the optimistic append never happened (another device sending under the
// same account); matching on a client correlation id and upgrading the
// optimistic entry in place would close that hole.
func classifyInbound(localUserID int64, frame entity.InboundFrame) verdict {
	if frame.SenderID == localUserID {
		return verdictEcho
	}
	return verdictNew
}
