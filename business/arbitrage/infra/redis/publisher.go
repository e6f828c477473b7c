package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/fd1az/arbgraph/business/arbitrage/domain"
	graph "github.com/fd1az/arbgraph/business/graph/domain"
)

// Event types carried in Event.Type.
const (
	EventSnapshot = "snapshot"
	EventCycle    = "cycle"
	EventFinished = "finished"
)

// Event is the JSON payload published for every exporter call.
type Event struct {
	Type      string             `json:"type"`
	RunID     string             `json:"run_id,omitempty"`
	Iteration int                `json:"iteration"`
	Nodes     int                `json:"nodes,omitempty"`
	Edges     int                `json:"edges,omitempty"`
	Row       *domain.MetricsRow `json:"row,omitempty"`
	Cycle     []string           `json:"cycle,omitempty"`
	Rows      int                `json:"rows,omitempty"`
}

// Publisher is the subset of *redis.Client used to publish.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// EventPublisher publishes loop events to a pub/sub channel so other
// processes can follow a run live.
type EventPublisher struct {
	rdb     Publisher
	channel string
}

// NewEventPublisher creates a publisher on channel.
func NewEventPublisher(rdb Publisher, channel string) *EventPublisher {
	return &EventPublisher{rdb: rdb, channel: channel}
}

func (p *EventPublisher) Snapshot(ctx context.Context, iteration int, g graph.View) error {
	return p.publish(ctx, Event{
		Type:      EventSnapshot,
		Iteration: iteration,
		Nodes:     g.NodeCount(),
		Edges:     g.EdgeCount(),
	})
}

func (p *EventPublisher) Record(ctx context.Context, row domain.MetricsRow, cycle domain.Cycle) error {
	path := make([]string, len(cycle.Assets))
	for i, a := range cycle.Assets {
		path[i] = a.String()
	}
	return p.publish(ctx, Event{
		Type:      EventCycle,
		Iteration: row.Iteration,
		Row:       &row,
		Cycle:     path,
	})
}

func (p *EventPublisher) Finish(ctx context.Context, rows []domain.MetricsRow) error {
	return p.publish(ctx, Event{
		Type:      EventFinished,
		Iteration: len(rows),
		Rows:      len(rows),
	})
}

func (p *EventPublisher) publish(ctx context.Context, ev Event) error {
	ev.RunID = domain.RunIDFromContext(ctx)

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("redis: marshal %s event: %w", ev.Type, err)
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", p.channel, err)
	}
	return nil
}
