package views

import "github.com/networkteam/keplrflow/collector"

type OperationListProps struct {
	// Events are the top-level journal events, newest first
	Events        []*collector.Event
	TruncateAfter uint64
}

func (p OperationListProps) truncated() bool {
	return p.TruncateAfter > 0 && uint64(len(p.Events)) >= p.TruncateAfter
}
