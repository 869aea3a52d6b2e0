package report

import (
	"go.uber.org/atomic"
)

type ServerErrors struct {
	BadSignature      atomic.Uint64 `json:"bad_signature"`
	ReplayedSignature atomic.Uint64 `json:"replayed_signature"`
	BadRequest        atomic.Uint64 `json:"bad_request"`
}

type ServerState struct {
	Requests          atomic.Uint64 `json:"requests"`
	IdempotentReplays atomic.Uint64 `json:"idempotent_replays"`
}

type ServerReport struct {
	State  ServerState  `json:"state"`
	Errors ServerErrors `json:"errors"`
}
