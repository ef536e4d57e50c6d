// ABOUTME: Bookkeeping for overlapping Sound requests under one id
// ABOUTME: Decides which loaded request plays when several race
package soundengine

import "github.com/harperreed/soundbox/pkg/audio"

// soundRequest is a Sound call whose buffer has loaded
type soundRequest struct {
	ticket uint64
	source string
	buffer *audio.Buffer
	opts   soundOptions
}

// pendingSounds tracks the Sound calls for one id that have not resolved.
// The newest call that loads wins; an older loaded call is kept in reserve
// and plays only if every newer call fails.
type pendingSounds struct {
	next     uint64
	inflight map[uint64]struct{}
	played   uint64        // newest ticket registered
	reserve  *soundRequest // newest superseded request that loaded
}

func newPendingSounds() *pendingSounds {
	return &pendingSounds{inflight: make(map[uint64]struct{})}
}

// issue hands out the next ticket
func (p *pendingSounds) issue() uint64 {
	p.next++
	p.inflight[p.next] = struct{}{}
	return p.next
}

func (p *pendingSounds) resolve(ticket uint64) {
	delete(p.inflight, ticket)
}

// newer reports whether a call issued after ticket is still loading
func (p *pendingSounds) newer(ticket uint64) bool {
	for t := range p.inflight {
		if t > ticket {
			return true
		}
	}
	return false
}

// superseded reports whether a loaded request must not play now
func (p *pendingSounds) superseded(ticket uint64) bool {
	return ticket < p.played || p.newer(ticket)
}

// hold keeps req in reserve if it could still win
func (p *pendingSounds) hold(req *soundRequest) {
	if req.ticket < p.played {
		return
	}
	if p.reserve == nil || req.ticket > p.reserve.ticket {
		p.reserve = req
	}
}

// promote hands back the reserve once nothing newer is loading
func (p *pendingSounds) promote() *soundRequest {
	req := p.reserve
	if req == nil || p.newer(req.ticket) {
		return nil
	}
	p.reserve = nil
	return req
}

func (p *pendingSounds) idle() bool {
	return len(p.inflight) == 0
}
