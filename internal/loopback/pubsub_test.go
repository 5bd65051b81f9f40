package loopback

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ros-middleware/rmw-go/internal/testmsgs"
	"github.com/ros-middleware/rmw-go/pkg/qos"
	"github.com/ros-middleware/rmw-go/pkg/rmw"
)

// newTestContext returns a context on a fresh isolated middleware,
// closed with the test.
func newTestContext(t *testing.T) rmw.Context {
	t.Helper()
	ctx, err := New(Config{}).NewContext(rmw.DefaultContextOptions())
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	t.Cleanup(func() { ctx.Close() })
	return ctx
}

func mustNode(t *testing.T, ctx rmw.Context, name string) rmw.Node {
	t.Helper()
	n, err := ctx.CreateNode(name, "/")
	if err != nil {
		t.Fatalf("CreateNode %s: %v", name, err)
	}
	return n
}

func mustPublisher(t *testing.T, n rmw.Node, ts rmw.TypeSupport, topic string, p qos.Profile) rmw.Publisher {
	t.Helper()
	pub, err := n.CreatePublisher(ts, topic, rmw.PublisherOptions{QoS: p})
	if err != nil {
		t.Fatalf("CreatePublisher %s: %v", topic, err)
	}
	return pub
}

func mustSubscription(t *testing.T, n rmw.Node, ts rmw.TypeSupport, topic string, p qos.Profile) rmw.Subscription {
	t.Helper()
	sub, err := n.CreateSubscription(ts, topic, rmw.SubscriptionOptions{QoS: p})
	if err != nil {
		t.Fatalf("CreateSubscription %s: %v", topic, err)
	}
	return sub
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	ctx := newTestContext(t)
	node := mustNode(t, ctx, "tester")
	pub := mustPublisher(t, node, testmsgs.Int32Type, "/chatter", qos.DefaultProfile())
	sub := mustSubscription(t, node, testmsgs.Int32Type, "/chatter", qos.DefaultProfile())

	if n, err := pub.CountMatchedSubscriptions(); err != nil || n != 1 {
		t.Fatalf("CountMatchedSubscriptions: got %d, %v, want 1", n, err)
	}
	if n, err := sub.CountMatchedPublishers(); err != nil || n != 1 {
		t.Fatalf("CountMatchedPublishers: got %d, %v, want 1", n, err)
	}

	if err := pub.Publish(&testmsgs.Int32{Data: 42}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msg, info, ok, err := sub.Take()
	if err != nil || !ok {
		t.Fatalf("Take: ok=%v, err=%v", ok, err)
	}
	got, isInt := msg.(*testmsgs.Int32)
	if !isInt {
		t.Fatalf("Take: got %T, want *testmsgs.Int32", msg)
	}
	if got.Data != 42 {
		t.Errorf("Data: got %d, want 42", got.Data)
	}
	if info.PublicationSequenceNumber != 1 {
		t.Errorf("PublicationSequenceNumber: got %d, want 1", info.PublicationSequenceNumber)
	}
	if info.ReceptionSequenceNumber != 1 {
		t.Errorf("ReceptionSequenceNumber: got %d, want 1", info.ReceptionSequenceNumber)
	}
	if info.PublisherGID != pub.GID() {
		t.Errorf("PublisherGID: got %s, want %s", info.PublisherGID, pub.GID())
	}
	if !info.FromIntraProcess {
		t.Error("FromIntraProcess: got false, want true")
	}
	if info.SourceTime.IsZero() || info.ReceivedTime.IsZero() {
		t.Error("timestamps not set")
	}

	if _, _, ok, err := sub.Take(); ok || err != nil {
		t.Errorf("empty Take: ok=%v, err=%v, want false, nil", ok, err)
	}
}

func TestActualQoSResolvesDefaults(t *testing.T) {
	ctx := newTestContext(t)
	node := mustNode(t, ctx, "tester")
	pub := mustPublisher(t, node, testmsgs.Int32Type, "/chatter", qos.Profile{})

	got := pub.ActualQoS()
	if got.History != qos.HistoryKeepLast || got.Depth != 10 {
		t.Errorf("history: got %v/%d, want keep_last/10", got.History, got.Depth)
	}
	if got.Reliability != qos.ReliabilityReliable {
		t.Errorf("reliability: got %v, want reliable", got.Reliability)
	}
	if got.Durability != qos.DurabilityVolatile {
		t.Errorf("durability: got %v, want volatile", got.Durability)
	}
	if got.Liveliness != qos.LivelinessAutomatic {
		t.Errorf("liveliness: got %v, want automatic", got.Liveliness)
	}
}

func TestPublishSerializedRoundTrip(t *testing.T) {
	ctx := newTestContext(t)
	node := mustNode(t, ctx, "tester")
	pub := mustPublisher(t, node, testmsgs.StringType, "/chatter", qos.DefaultProfile())
	sub := mustSubscription(t, node, testmsgs.StringType, "/chatter", qos.DefaultProfile())

	wire, err := testmsgs.StringType.Serialize(&testmsgs.String{Data: "hello"})
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if err := pub.PublishSerialized(wire); err != nil {
		t.Fatalf("PublishSerialized: %v", err)
	}

	data, info, ok, err := sub.TakeSerialized()
	if err != nil || !ok {
		t.Fatalf("TakeSerialized: ok=%v, err=%v", ok, err)
	}
	if !bytes.Equal(data, wire) {
		t.Errorf("bytes: got %x, want %x", data, wire)
	}
	if info.PublicationSequenceNumber != 1 {
		t.Errorf("PublicationSequenceNumber: got %d, want 1", info.PublicationSequenceNumber)
	}

	var msg testmsgs.String
	if err := testmsgs.StringType.Deserialize(data, &msg); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if msg.Data != "hello" {
		t.Errorf("Data: got %q, want %q", msg.Data, "hello")
	}
}

func TestTakePreservesOrder(t *testing.T) {
	ctx := newTestContext(t)
	node := mustNode(t, ctx, "tester")
	pub := mustPublisher(t, node, testmsgs.Int32Type, "/seq", qos.DefaultProfile())
	sub := mustSubscription(t, node, testmsgs.Int32Type, "/seq", qos.DefaultProfile())

	for i := int32(1); i <= 3; i++ {
		if err := pub.Publish(&testmsgs.Int32{Data: i}); err != nil {
			t.Fatalf("Publish %d: %v", i, err)
		}
	}
	for want := int32(1); want <= 3; want++ {
		msg, info, ok, err := sub.Take()
		if err != nil || !ok {
			t.Fatalf("Take %d: ok=%v, err=%v", want, ok, err)
		}
		if got := msg.(*testmsgs.Int32).Data; got != want {
			t.Errorf("Data: got %d, want %d", got, want)
		}
		if info.ReceptionSequenceNumber != uint64(want) {
			t.Errorf("ReceptionSequenceNumber: got %d, want %d", info.ReceptionSequenceNumber, want)
		}
	}
}

func TestKeepLastEvictsOldest(t *testing.T) {
	ctx := newTestContext(t)
	node := mustNode(t, ctx, "tester")
	pub := mustPublisher(t, node, testmsgs.Int32Type, "/narrow", qos.DefaultProfile())

	profile := qos.DefaultProfile()
	profile.Depth = 2
	sub := mustSubscription(t, node, testmsgs.Int32Type, "/narrow", profile)

	for i := int32(1); i <= 3; i++ {
		if err := pub.Publish(&testmsgs.Int32{Data: i}); err != nil {
			t.Fatalf("Publish %d: %v", i, err)
		}
	}

	st := sub.TakeStatuses()
	if st.MessageLost.TotalCount != 1 || st.MessageLost.TotalCountChange != 1 {
		t.Errorf("MessageLost: got %+v, want total 1, change 1", st.MessageLost)
	}

	for _, want := range []int32{2, 3} {
		msg, info, ok, err := sub.Take()
		if err != nil || !ok {
			t.Fatalf("Take %d: ok=%v, err=%v", want, ok, err)
		}
		if got := msg.(*testmsgs.Int32).Data; got != want {
			t.Errorf("Data: got %d, want %d", got, want)
		}
		if info.PublicationSequenceNumber != uint64(want) {
			t.Errorf("PublicationSequenceNumber: got %d, want %d", info.PublicationSequenceNumber, want)
		}
	}
}

func TestIgnoreLocalPublications(t *testing.T) {
	ctx := newTestContext(t)
	local := mustNode(t, ctx, "local")
	remote := mustNode(t, ctx, "remote")

	pub := mustPublisher(t, local, testmsgs.Int32Type, "/loop", qos.DefaultProfile())
	localSub, err := local.CreateSubscription(testmsgs.Int32Type, "/loop", rmw.SubscriptionOptions{
		QoS:                     qos.DefaultProfile(),
		IgnoreLocalPublications: true,
	})
	if err != nil {
		t.Fatalf("CreateSubscription local: %v", err)
	}
	remoteSub := mustSubscription(t, remote, testmsgs.Int32Type, "/loop", qos.DefaultProfile())

	// Matching is unaffected; only delivery is suppressed.
	if n, _ := pub.CountMatchedSubscriptions(); n != 2 {
		t.Fatalf("CountMatchedSubscriptions: got %d, want 2", n)
	}

	if err := pub.Publish(&testmsgs.Int32{Data: 9}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if _, _, ok, err := localSub.Take(); ok || err != nil {
		t.Errorf("local Take: ok=%v, err=%v, want false, nil", ok, err)
	}
	if _, _, ok, err := remoteSub.Take(); !ok || err != nil {
		t.Errorf("remote Take: ok=%v, err=%v, want true, nil", ok, err)
	}
}

func TestReadyTracksQueue(t *testing.T) {
	ctx := newTestContext(t)
	node := mustNode(t, ctx, "tester")
	pub := mustPublisher(t, node, testmsgs.Int32Type, "/level", qos.DefaultProfile())
	sub := mustSubscription(t, node, testmsgs.Int32Type, "/level", qos.DefaultProfile())

	select {
	case <-sub.Ready():
		t.Fatal("ready before any publish")
	default:
	}

	if err := pub.Publish(&testmsgs.Int32{Data: 1}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	select {
	case <-sub.Ready():
	default:
		t.Fatal("not ready after publish")
	}

	if _, _, ok, err := sub.Take(); !ok || err != nil {
		t.Fatalf("Take: ok=%v, err=%v", ok, err)
	}
	select {
	case <-sub.Ready():
		t.Fatal("still ready after queue drained")
	default:
	}
}

func TestWaitSetObservesSubscription(t *testing.T) {
	ctx := newTestContext(t)
	node := mustNode(t, ctx, "tester")
	pub := mustPublisher(t, node, testmsgs.Int32Type, "/wake", qos.DefaultProfile())
	sub := mustSubscription(t, node, testmsgs.Int32Type, "/wake", qos.DefaultProfile())

	ws := rmw.NewWaitSet()
	ws.Add(sub)

	if err := pub.Publish(&testmsgs.Int32{Data: 5}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	wctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ready, err := ws.Wait(wctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(ready) != 1 || ready[0] != rmw.Waitable(sub) {
		t.Fatalf("Wait: got %v, want the subscription", ready)
	}
}

func TestShutdownStopsCommunication(t *testing.T) {
	ctx := newTestContext(t)
	node := mustNode(t, ctx, "tester")
	pub := mustPublisher(t, node, testmsgs.Int32Type, "/halt", qos.DefaultProfile())
	sub := mustSubscription(t, node, testmsgs.Int32Type, "/halt", qos.DefaultProfile())

	if err := pub.Publish(&testmsgs.Int32{Data: 1}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := ctx.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	if err := pub.Publish(&testmsgs.Int32{Data: 2}); !errors.Is(err, rmw.ErrShutdown) {
		t.Errorf("Publish after shutdown: got %v, want ErrShutdown", err)
	}
	if _, _, _, err := sub.Take(); !errors.Is(err, rmw.ErrShutdown) {
		t.Errorf("Take after shutdown: got %v, want ErrShutdown", err)
	}

	// Introspection still answers.
	if n, err := pub.CountMatchedSubscriptions(); err != nil || n != 1 {
		t.Errorf("CountMatchedSubscriptions after shutdown: got %d, %v", n, err)
	}
	if got := pub.ActualQoS(); got.Reliability != qos.ReliabilityReliable {
		t.Errorf("ActualQoS after shutdown: got %v", got.Reliability)
	}
}

func TestSubscriptionCloseDetaches(t *testing.T) {
	ctx := newTestContext(t)
	node := mustNode(t, ctx, "tester")
	pub := mustPublisher(t, node, testmsgs.Int32Type, "/bye", qos.DefaultProfile())
	sub := mustSubscription(t, node, testmsgs.Int32Type, "/bye", qos.DefaultProfile())

	if err := sub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if n, _ := pub.CountMatchedSubscriptions(); n != 0 {
		t.Errorf("CountMatchedSubscriptions: got %d, want 0", n)
	}
	if err := pub.Publish(&testmsgs.Int32{Data: 1}); err != nil {
		t.Errorf("Publish with no subscribers: %v", err)
	}
	if _, _, _, err := sub.Take(); !errors.Is(err, rmw.ErrClosed) {
		t.Errorf("Take after close: got %v, want ErrClosed", err)
	}

	select {
	case <-sub.Ready():
		t.Error("closed subscription reports ready")
	default:
	}

	// The events channel drains and then closes.
	for {
		if _, ok := <-sub.Events(); !ok {
			break
		}
	}
}

func TestEventsCarryMatchNotices(t *testing.T) {
	ctx := newTestContext(t)
	node := mustNode(t, ctx, "tester")
	pub := mustPublisher(t, node, testmsgs.Int32Type, "/note", qos.DefaultProfile())
	sub := mustSubscription(t, node, testmsgs.Int32Type, "/note", qos.DefaultProfile())

	select {
	case ev := <-pub.Events():
		if ev.Type != rmw.EventPublicationMatched {
			t.Errorf("publisher event: got %v, want publication_matched", ev.Type)
		}
		if ev.Time.IsZero() {
			t.Error("event time not set")
		}
	default:
		t.Fatal("no publisher event queued")
	}

	wantSub := []rmw.EventType{rmw.EventSubscriptionMatched, rmw.EventLivelinessChanged}
	for _, want := range wantSub {
		select {
		case ev := <-sub.Events():
			if ev.Type != want {
				t.Errorf("subscription event: got %v, want %v", ev.Type, want)
			}
		default:
			t.Fatalf("no %v event queued", want)
		}
	}
}

func TestTakeStatusesResetsChanges(t *testing.T) {
	ctx := newTestContext(t)
	node := mustNode(t, ctx, "tester")
	pub := mustPublisher(t, node, testmsgs.Int32Type, "/st", qos.DefaultProfile())
	mustSubscription(t, node, testmsgs.Int32Type, "/st", qos.DefaultProfile())

	first := pub.TakeStatuses()
	if first.Matched.TotalCount != 1 || first.Matched.TotalCountChange != 1 ||
		first.Matched.CurrentCount != 1 || first.Matched.CurrentCountChange != 1 {
		t.Errorf("first statuses: got %+v", first.Matched)
	}

	second := pub.TakeStatuses()
	if second.Matched.TotalCount != 1 || second.Matched.TotalCountChange != 0 ||
		second.Matched.CurrentCount != 1 || second.Matched.CurrentCountChange != 0 {
		t.Errorf("second statuses: got %+v", second.Matched)
	}
}

func TestCreateEndpointValidation(t *testing.T) {
	ctx := newTestContext(t)
	node := mustNode(t, ctx, "tester")

	if _, err := node.CreatePublisher(nil, "/t", rmw.PublisherOptions{}); !errors.Is(err, rmw.ErrInvalidArgument) {
		t.Errorf("nil type support: got %v, want ErrInvalidArgument", err)
	}
	if _, err := node.CreatePublisher(testmsgs.Int32Type, "no_slash", rmw.PublisherOptions{}); !errors.Is(err, rmw.ErrInvalidName) {
		t.Errorf("relative topic: got %v, want ErrInvalidName", err)
	}

	bad := rmw.DefaultPublisherOptions()
	bad.QoS.Depth = -1
	if _, err := node.CreatePublisher(testmsgs.Int32Type, "/t", bad); !errors.Is(err, rmw.ErrInvalidArgument) {
		t.Errorf("negative depth: got %v, want ErrInvalidArgument", err)
	}

	strict := rmw.DefaultPublisherOptions()
	strict.RequireUniqueNetworkFlowEndpoints = rmw.FlowStrictlyRequired
	if _, err := node.CreatePublisher(testmsgs.Int32Type, "/t", strict); !errors.Is(err, rmw.ErrUnsupported) {
		t.Errorf("strict flows: got %v, want ErrUnsupported", err)
	}

	filtered := rmw.DefaultSubscriptionOptions()
	filtered.ContentFilter = &rmw.ContentFilterOptions{Expression: "data > 0"}
	if _, err := node.CreateSubscription(testmsgs.Int32Type, "/t", filtered); !errors.Is(err, rmw.ErrUnsupported) {
		t.Errorf("content filter: got %v, want ErrUnsupported", err)
	}
}

func TestUnsupportedSurface(t *testing.T) {
	ctx := newTestContext(t)
	node := mustNode(t, ctx, "tester")
	pub := mustPublisher(t, node, testmsgs.Int32Type, "/u", qos.DefaultProfile())
	sub := mustSubscription(t, node, testmsgs.Int32Type, "/u", qos.DefaultProfile())

	if _, err := pub.NetworkFlowEndpoints(); !errors.Is(err, rmw.ErrUnsupported) {
		t.Errorf("publisher flows: got %v, want ErrUnsupported", err)
	}
	if _, err := sub.NetworkFlowEndpoints(); !errors.Is(err, rmw.ErrUnsupported) {
		t.Errorf("subscription flows: got %v, want ErrUnsupported", err)
	}
	if err := sub.SetContentFilter(&rmw.ContentFilterOptions{Expression: "x"}); !errors.Is(err, rmw.ErrUnsupported) {
		t.Errorf("SetContentFilter: got %v, want ErrUnsupported", err)
	}
	if f, err := sub.ContentFilter(); f != nil || err != nil {
		t.Errorf("ContentFilter: got %v, %v, want nil, nil", f, err)
	}

	if err := pub.WaitForAllAcked(context.Background()); err != nil {
		t.Errorf("WaitForAllAcked: got %v, want nil", err)
	}
}
