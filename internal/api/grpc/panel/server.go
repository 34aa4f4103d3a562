package panel

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/vent-alarm/internal/event"
	"github.com/oshokin/vent-alarm/internal/logger"
	"github.com/oshokin/vent-alarm/internal/repository/journal"
	"github.com/oshokin/vent-alarm/internal/service/annunciator"
)

// StatusSource provides the controller state.
type StatusSource interface {
	Snapshot() annunciator.Snapshot
}

// DisplaySource provides the alarm line currently shown.
type DisplaySource interface {
	Message() (string, bool)
}

// JournalSource lists recorded journal entries.
type JournalSource interface {
	List(ctx context.Context, limit int) ([]journal.Entry, error)
}

// Server implements PanelServer on top of the event bus.
type Server struct {
	poster  event.Poster
	status  StatusSource
	display DisplaySource
	journal JournalSource
}

// Option configures a Server.
type Option func(*Server)

// WithJournal lets the panel read the audit journal back.
func WithJournal(source JournalSource) Option {
	return func(s *Server) {
		s.journal = source
	}
}

// NewServer wires the panel to the bus and its status sources.
func NewServer(poster event.Poster, status StatusSource, display DisplaySource, opts ...Option) *Server {
	s := &Server{
		poster:  poster,
		status:  status,
		display: display,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Raise posts an alarm-raise event for a catalog id.
func (s *Server) Raise(ctx context.Context, req *wrapperspb.Int32Value) (*emptypb.Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "alarm id is required")
	}

	id := int(req.GetValue())
	if count := len(s.status.Snapshot().Alarms); id < 0 || id >= count {
		return nil, status.Errorf(codes.InvalidArgument, "alarm id %d is outside of the catalog (0..%d)", id, count-1)
	}

	s.post(ctx, event.AlarmRaise(id))

	return new(emptypb.Empty), nil
}

// PressKey posts a key-press event.
func (s *Server) PressKey(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	key := event.Key(req.GetValue())
	if !key.Valid() {
		return nil, status.Errorf(codes.InvalidArgument, "unknown key %q", key)
	}

	s.post(ctx, event.KeyPress(key))

	return new(emptypb.Empty), nil
}

// Reset posts a reset-all event.
func (s *Server) Reset(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.post(ctx, event.Reset())

	return new(emptypb.Empty), nil
}

// Status returns the controller state and the display line.
func (s *Server) Status(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	result, err := statusStruct(s.status.Snapshot(), s.display)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode status")
	}

	return result, nil
}

// Journal returns up to limit most recent journal entries, oldest first.
// A zero or missing limit returns every entry.
func (s *Server) Journal(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.Struct, error) {
	if s.journal == nil {
		return nil, status.Error(codes.FailedPrecondition, "journal is disabled")
	}

	limit := int(req.GetValue())
	if limit < 0 {
		return nil, status.Errorf(codes.InvalidArgument, "limit %d must not be negative", limit)
	}

	entries, err := s.journal.List(ctx, limit)
	if err != nil {
		logger.ErrorKV(ctx, "Failed to list journal", "error", err)

		return nil, status.Error(codes.Internal, "unable to read journal")
	}

	result, err := journalStruct(entries)
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode journal")
	}

	return result, nil
}

func (s *Server) post(ctx context.Context, ev event.Event) {
	ev = ev.WithOrigin(Origin(ctx))

	logger.InfoKV(ctx, "Panel command", "type", ev.Type, "origin", ev.Origin)

	s.poster.Post(ev)
}

// Origin names the caller of an incoming panel request.
func Origin(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "panel"
	}

	if actors := md.Get(ActorHeader); len(actors) > 0 && actors[0] != "" {
		return "panel:" + actors[0]
	}

	return "panel"
}

// statusStruct encodes a snapshot as a protobuf Struct.
func statusStruct(snap annunciator.Snapshot, display DisplaySource) (*structpb.Struct, error) {
	alarms := make([]any, 0, len(snap.Alarms))

	for _, a := range snap.Alarms {
		alarms = append(alarms, map[string]any{
			"id":         int(a.ID),
			"name":       a.Name,
			"message":    a.Message,
			"status":     a.Status.String(),
			"mute_count": a.MuteCount,
			"mute_limit": a.MuteLimit,
			"exhausted":  a.Exhausted,
		})
	}

	var active any

	if a, ok := snap.ActiveState(); ok {
		active = a.Name
	}

	var message any

	if display != nil {
		if text, shown := display.Message(); shown {
			message = text
		}
	}

	result, err := structpb.NewStruct(map[string]any{
		"active":  active,
		"beeping": snap.Beeping,
		"display": message,
		"alarms":  alarms,
	})
	if err != nil {
		return nil, fmt.Errorf("encode status: %w", err)
	}

	return result, nil
}

// journalStruct encodes entries as a protobuf Struct.
func journalStruct(entries []journal.Entry) (*structpb.Struct, error) {
	list := make([]any, 0, len(entries))

	for _, e := range entries {
		list = append(list, map[string]any{
			"id":       e.ID.String(),
			"at":       e.At.UTC().Format(time.RFC3339Nano),
			"type":     e.Type,
			"alarm_id": e.AlarmID,
			"key":      e.Key,
			"message":  e.Message,
			"origin":   e.Origin,
		})
	}

	result, err := structpb.NewStruct(map[string]any{"entries": list})
	if err != nil {
		return nil, fmt.Errorf("encode journal: %w", err)
	}

	return result, nil
}
