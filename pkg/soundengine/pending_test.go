// ABOUTME: Tests for overlapping Sound request bookkeeping
// ABOUTME: Covers which loaded request wins as newer calls succeed or fail
package soundengine

import "testing"

func loaded(p *pendingSounds, ticket uint64) *soundRequest {
	p.resolve(ticket)
	req := &soundRequest{ticket: ticket}
	if !p.superseded(ticket) {
		return req
	}
	p.hold(req)
	return nil
}

func TestPendingNewestWins(t *testing.T) {
	p := newPendingSounds()
	one, two := p.issue(), p.issue()

	if req := loaded(p, one); req != nil {
		t.Fatal("expected the older request to wait")
	}
	if req := p.promote(); req != nil {
		t.Fatal("expected no promotion while a newer request loads")
	}

	req := loaded(p, two)
	if req == nil {
		t.Fatal("expected the newest request to play")
	}
	p.played, p.reserve = req.ticket, nil

	if !p.idle() {
		t.Error("expected no requests in flight")
	}
}

func TestPendingReserveAfterNewerFails(t *testing.T) {
	p := newPendingSounds()
	one, two, three := p.issue(), p.issue(), p.issue()

	loaded(p, one)

	// The newest fails while a middle request still loads
	p.resolve(three)
	if req := p.promote(); req != nil {
		t.Fatalf("expected to wait for ticket %d, got %d", two, req.ticket)
	}

	// The middle one fails too, so the reserve plays
	p.resolve(two)
	req := p.promote()
	if req == nil || req.ticket != one {
		t.Fatalf("expected ticket %d to be promoted, got %+v", one, req)
	}
	if p.promote() != nil {
		t.Error("expected the reserve to be handed out once")
	}
}

func TestPendingOlderAfterPlayedIsDropped(t *testing.T) {
	p := newPendingSounds()
	one, two := p.issue(), p.issue()

	if req := loaded(p, two); req == nil {
		t.Fatal("expected the newest request to play")
	}
	p.played = two

	if req := loaded(p, one); req != nil {
		t.Fatal("expected the older request to be superseded")
	}
	if p.reserve != nil || p.promote() != nil {
		t.Error("expected nothing held behind a played request")
	}
}
