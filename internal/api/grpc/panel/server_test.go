package panel

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/vent-alarm/internal/domain/alarm"
	"github.com/oshokin/vent-alarm/internal/event"
	"github.com/oshokin/vent-alarm/internal/repository/journal"
	"github.com/oshokin/vent-alarm/internal/service/annunciator"
)

// fakePoster collects posted events.
type fakePoster struct {
	events []event.Event
}

// Post appends ev.
func (f *fakePoster) Post(ev event.Event) { f.events = append(f.events, ev) }

// fakeStatus returns a fixed snapshot.
type fakeStatus struct {
	snap annunciator.Snapshot
}

// Snapshot returns the stored snapshot.
func (f fakeStatus) Snapshot() annunciator.Snapshot { return f.snap }

// fakeDisplay returns a fixed display line.
type fakeDisplay struct {
	text string
}

// Message returns the stored line, shown when non-empty.
func (f fakeDisplay) Message() (string, bool) { return f.text, f.text != "" }

// fakeJournal serves fixed entries and remembers the requested limit.
type fakeJournal struct {
	entries []journal.Entry
	limit   int
	err     error
}

// List returns the stored entries or the configured error.
func (f *fakeJournal) List(_ context.Context, limit int) ([]journal.Entry, error) {
	f.limit = limit

	return f.entries, f.err
}

func twoAlarmSnapshot() annunciator.Snapshot {
	return annunciator.Snapshot{
		Active:    0,
		HasActive: true,
		Beeping:   true,
		Alarms: []annunciator.AlarmState{
			{ID: 0, Name: "high_pressure", Message: "HIGH PRESSURE", MuteLimit: 3, Status: alarm.StatusOn},
			{ID: 1, Name: "low_pressure", Message: "LOW PRESSURE", MuteLimit: 3, MuteCount: 3, Exhausted: true},
		},
	}
}

// TestServer_Validation rejects out-of-range ids and unknown keys without posting.
func TestServer_Validation(t *testing.T) {
	t.Parallel()

	poster := new(fakePoster)
	s := NewServer(poster, fakeStatus{snap: twoAlarmSnapshot()}, fakeDisplay{})
	ctx := context.Background()

	_, err := s.Raise(ctx, nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Raise(ctx, wrapperspb.Int32(-1))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.Raise(ctx, wrapperspb.Int32(2))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.PressKey(ctx, wrapperspb.String("power"))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	require.Empty(t, poster.events)
}

// TestServer_Commands posts bus events carrying the caller origin.
func TestServer_Commands(t *testing.T) {
	t.Parallel()

	poster := new(fakePoster)
	s := NewServer(poster, fakeStatus{snap: twoAlarmSnapshot()}, fakeDisplay{})

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(ActorHeader, "nurse@ward3"))

	_, err := s.Raise(ctx, wrapperspb.Int32(1))
	require.NoError(t, err)

	_, err = s.PressKey(ctx, wrapperspb.String("mute"))
	require.NoError(t, err)

	_, err = s.Reset(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)

	require.Len(t, poster.events, 3)
	require.Equal(t, event.TypeAlarmRaise, poster.events[0].Type)
	require.Equal(t, 1, poster.events[0].AlarmID)
	require.Equal(t, "panel:nurse@ward3", poster.events[0].Origin)
	require.Equal(t, event.KeyMute, poster.events[1].Key)
	require.Equal(t, event.TypeReset, poster.events[2].Type)
	require.Equal(t, "panel", poster.events[2].Origin)
}

// TestServer_Status encodes the snapshot and display line.
func TestServer_Status(t *testing.T) {
	t.Parallel()

	s := NewServer(new(fakePoster), fakeStatus{snap: twoAlarmSnapshot()}, fakeDisplay{text: "HIGH PRESSURE"})

	result, err := s.Status(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)

	fields := result.GetFields()
	require.Equal(t, "high_pressure", fields["active"].GetStringValue())
	require.True(t, fields["beeping"].GetBoolValue())
	require.Equal(t, "HIGH PRESSURE", fields["display"].GetStringValue())

	alarms := fields["alarms"].GetListValue().GetValues()
	require.Len(t, alarms, 2)

	low := alarms[1].GetStructValue().GetFields()
	require.Equal(t, "low_pressure", low["name"].GetStringValue())
	require.InDelta(t, 3, low["mute_count"].GetNumberValue(), 0)
	require.True(t, low["exhausted"].GetBoolValue())

	// Idle controller: active and display are null.
	idle := NewServer(new(fakePoster), fakeStatus{snap: annunciator.Snapshot{}}, fakeDisplay{})

	result, err = idle.Status(context.Background(), new(emptypb.Empty))
	require.NoError(t, err)

	for _, key := range []string{"active", "display"} {
		_, isNull := result.GetFields()[key].GetKind().(*structpb.Value_NullValue)
		require.True(t, isNull, key)
	}
}

// TestServer_OverGRPC exercises the hand-written service descriptor through a real gRPC stack.
func TestServer_OverGRPC(t *testing.T) {
	t.Parallel()

	poster := new(fakePoster)
	lis := bufconn.Listen(1 << 16)

	var intercepted []string

	srv := grpc.NewServer(grpc.UnaryInterceptor(
		func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
			intercepted = append(intercepted, info.FullMethod)

			return handler(ctx, req)
		},
	))
	RegisterPanelServer(srv, NewServer(poster, fakeStatus{snap: twoAlarmSnapshot()}, fakeDisplay{}))

	go func() { _ = srv.Serve(lis) }()

	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	defer func() { _ = conn.Close() }()

	ctx := metadata.AppendToOutgoingContext(context.Background(), ActorHeader, "tech@bench")

	require.NoError(t, conn.Invoke(ctx, FullMethod(MethodRaise), wrapperspb.Int32(0), new(emptypb.Empty)))

	err = conn.Invoke(ctx, FullMethod(MethodPressKey), wrapperspb.String("power"), new(emptypb.Empty))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	out := new(structpb.Struct)
	require.NoError(t, conn.Invoke(ctx, FullMethod(MethodStatus), new(emptypb.Empty), out))
	require.Equal(t, "high_pressure", out.GetFields()["active"].GetStringValue())

	require.Len(t, poster.events, 1)
	require.Equal(t, "panel:tech@bench", poster.events[0].Origin)
	require.Equal(t, []string{
		FullMethod(MethodRaise),
		FullMethod(MethodPressKey),
		FullMethod(MethodStatus),
	}, intercepted)
}

// TestServer_Journal lists journal entries and reports a disabled or failing journal.
func TestServer_Journal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	at := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)
	id := uuid.New()

	source := &fakeJournal{entries: []journal.Entry{
		{ID: id, At: at, Type: "alarm_raise", AlarmID: 1, Origin: "panel:nurse@ward3"},
		{ID: uuid.New(), At: at, Type: "display_on", Message: "LOW PRESSURE", Origin: "annunciator"},
	}}
	s := NewServer(new(fakePoster), fakeStatus{snap: twoAlarmSnapshot()}, fakeDisplay{}, WithJournal(source))

	result, err := s.Journal(ctx, wrapperspb.Int32(5))
	require.NoError(t, err)
	require.Equal(t, 5, source.limit)

	entries := result.GetFields()["entries"].GetListValue().GetValues()
	require.Len(t, entries, 2)

	first := entries[0].GetStructValue().GetFields()
	require.Equal(t, id.String(), first["id"].GetStringValue())
	require.Equal(t, "2026-03-01T08:30:00Z", first["at"].GetStringValue())
	require.Equal(t, "alarm_raise", first["type"].GetStringValue())
	require.InDelta(t, 1, first["alarm_id"].GetNumberValue(), 0)
	require.Equal(t, "panel:nurse@ward3", first["origin"].GetStringValue())
	require.Equal(t, "LOW PRESSURE", entries[1].GetStructValue().GetFields()["message"].GetStringValue())

	// A missing limit means everything.
	_, err = s.Journal(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, source.limit)

	_, err = s.Journal(ctx, wrapperspb.Int32(-1))
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	source.err = errors.New("disk unplugged")

	_, err = s.Journal(ctx, wrapperspb.Int32(0))
	require.Equal(t, codes.Internal, status.Code(err))

	disabled := NewServer(new(fakePoster), fakeStatus{snap: twoAlarmSnapshot()}, fakeDisplay{})

	_, err = disabled.Journal(ctx, wrapperspb.Int32(0))
	require.Equal(t, codes.FailedPrecondition, status.Code(err))
}
