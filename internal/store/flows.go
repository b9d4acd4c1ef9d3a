// Package store persists flow instances and config entries in Redis and
// provides the per-flow lock that serializes step evaluation. The engine
// assumes read-your-writes consistency within one process, which a single
// Redis connection pool gives it.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hearthhub/configflow/pkg/api"
)

type (
	// Store provides persistence for flow instances and config entries
	Store struct {
		client *redis.Client
		prefix string
	}

	// Options configures the Redis connection
	Options struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
	}

	// storedFlow is the persistence envelope. Context is private to the
	// handler and excluded from the instance's client-facing JSON, so the
	// store carries it alongside explicitly
	storedFlow struct {
		Flow    *api.FlowInstance `json:"flow"`
		Context api.Data          `json:"context"`
	}
)

const (
	flowKeyPrefix     = "flow:"
	entryKeyPrefix    = "entry:"
	lockKeyPrefix     = "lock:"
	flowIndexKey      = "flows"
	entryIndexKey     = "entries"
	terminalIndexKey  = "terminal"
	defaultLockExpiry = 30 * time.Second
)

var (
	ErrFlowNotFound  = errors.New("flow not found")
	ErrFlowExists    = errors.New("flow already exists")
	ErrEntryNotFound = errors.New("config entry not found")
	ErrFlowBusy      = errors.New("flow is locked by another submission")
)

// New creates a flow store backed by the given Redis endpoint
func New(opts Options) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "configflow"
	}
	return &Store{client: client, prefix: prefix}
}

// Close releases the Redis connection pool
func (s *Store) Close() error {
	return s.client.Close()
}

// Ping verifies the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// CreateFlow persists a new flow instance. Fails if the id already exists
func (s *Store) CreateFlow(ctx context.Context, flow *api.FlowInstance) error {
	if err := flow.Validate(); err != nil {
		return err
	}

	data, err := marshalFlow(flow)
	if err != nil {
		return err
	}

	ok, err := s.client.SetNX(ctx, s.flowKey(flow.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("creating flow: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrFlowExists, flow.ID)
	}

	return s.client.SAdd(ctx, s.key(flowIndexKey), string(flow.ID)).Err()
}

// GetFlow loads a flow instance, context included
func (s *Store) GetFlow(
	ctx context.Context, id api.FlowID,
) (*api.FlowInstance, error) {
	data, err := s.client.Get(ctx, s.flowKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrFlowNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting flow: %w", err)
	}
	return unmarshalFlow(data)
}

// SaveFlow persists the mutations of one step evaluation. Terminal flows are
// additionally indexed by their terminal time for the archiver
func (s *Store) SaveFlow(ctx context.Context, flow *api.FlowInstance) error {
	flow.UpdatedAt = time.Now().UTC()

	data, err := marshalFlow(flow)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.flowKey(flow.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("saving flow: %w", err)
	}

	if flow.IsTerminal() {
		return s.client.ZAdd(ctx, s.key(terminalIndexKey), redis.Z{
			Score:  float64(flow.UpdatedAt.Unix()),
			Member: string(flow.ID),
		}).Err()
	}
	return nil
}

// DeleteFlow removes a flow instance and its index entries
func (s *Store) DeleteFlow(ctx context.Context, id api.FlowID) error {
	if err := s.client.Del(ctx, s.flowKey(id)).Err(); err != nil {
		return fmt.Errorf("deleting flow: %w", err)
	}
	if err := s.client.SRem(
		ctx, s.key(flowIndexKey), string(id),
	).Err(); err != nil {
		return err
	}
	return s.client.ZRem(ctx, s.key(terminalIndexKey), string(id)).Err()
}

// ListFlows returns every persisted flow instance
func (s *Store) ListFlows(ctx context.Context) ([]*api.FlowInstance, error) {
	ids, err := s.client.SMembers(ctx, s.key(flowIndexKey)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing flows: %w", err)
	}

	flows := make([]*api.FlowInstance, 0, len(ids))
	for _, id := range ids {
		flow, err := s.GetFlow(ctx, api.FlowID(id))
		if errors.Is(err, ErrFlowNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		flows = append(flows, flow)
	}
	return flows, nil
}

// TerminalFlowsBefore returns ids of terminal flows whose terminal time is
// older than the cutoff, oldest first
func (s *Store) TerminalFlowsBefore(
	ctx context.Context, cutoff time.Time, limit int,
) ([]api.FlowID, error) {
	ids, err := s.client.ZRangeByScore(ctx, s.key(terminalIndexKey),
		&redis.ZRangeBy{
			Min:   "-inf",
			Max:   fmt.Sprintf("%d", cutoff.Unix()),
			Count: int64(limit),
		}).Result()
	if err != nil {
		return nil, fmt.Errorf("selecting terminal flows: %w", err)
	}

	flowIDs := make([]api.FlowID, 0, len(ids))
	for _, id := range ids {
		flowIDs = append(flowIDs, api.FlowID(id))
	}
	return flowIDs, nil
}

// AcquireLock takes the per-flow advance lock. Concurrent submissions to the
// same flow get ErrFlowBusy instead of interleaving a step evaluation
func (s *Store) AcquireLock(
	ctx context.Context, id api.FlowID,
) (func(), error) {
	key := s.key(lockKeyPrefix + string(id))
	ok, err := s.client.SetNX(ctx, key, "1", defaultLockExpiry).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring flow lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFlowBusy, id)
	}
	release := func() {
		_ = s.client.Del(context.WithoutCancel(ctx), key).Err()
	}
	return release, nil
}

// CreateEntry persists the terminal result of a completed flow
func (s *Store) CreateEntry(ctx context.Context, entry *api.ConfigEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}
	if err := s.client.Set(
		ctx, s.key(entryKeyPrefix+string(entry.ID)), data, 0,
	).Err(); err != nil {
		return fmt.Errorf("creating entry: %w", err)
	}
	return s.client.SAdd(ctx, s.key(entryIndexKey), string(entry.ID)).Err()
}

// GetEntry loads one config entry
func (s *Store) GetEntry(
	ctx context.Context, id api.EntryID,
) (*api.ConfigEntry, error) {
	data, err := s.client.Get(ctx, s.key(entryKeyPrefix+string(id))).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting entry: %w", err)
	}

	var entry api.ConfigEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshaling entry: %w", err)
	}
	return &entry, nil
}

// ListEntries returns every persisted config entry
func (s *Store) ListEntries(ctx context.Context) ([]*api.ConfigEntry, error) {
	ids, err := s.client.SMembers(ctx, s.key(entryIndexKey)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	entries := make([]*api.ConfigEntry, 0, len(ids))
	for _, id := range ids {
		entry, err := s.GetEntry(ctx, api.EntryID(id))
		if errors.Is(err, ErrEntryNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Store) key(suffix string) string {
	return s.prefix + ":" + suffix
}

func (s *Store) flowKey(id api.FlowID) string {
	return s.key(flowKeyPrefix + string(id))
}

func marshalFlow(flow *api.FlowInstance) ([]byte, error) {
	data, err := json.Marshal(&storedFlow{
		Flow:    flow,
		Context: flow.Context,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling flow: %w", err)
	}
	return data, nil
}

func unmarshalFlow(data []byte) (*api.FlowInstance, error) {
	var stored storedFlow
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("unmarshaling flow: %w", err)
	}
	if stored.Flow == nil {
		return nil, fmt.Errorf("unmarshaling flow: missing flow record")
	}
	flow := stored.Flow
	flow.Context = stored.Context
	if flow.Context == nil {
		flow.Context = api.Data{}
	}
	if flow.Data == nil {
		flow.Data = api.Data{}
	}
	return flow, nil
}
