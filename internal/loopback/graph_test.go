package loopback

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ros-middleware/rmw-go/internal/testmsgs"
	"github.com/ros-middleware/rmw-go/pkg/qos"
	"github.com/ros-middleware/rmw-go/pkg/rmw"
)

func TestTopicNamesAndTypes(t *testing.T) {
	ctx := newTestContext(t)
	node := mustNode(t, ctx, "tester")
	mustPublisher(t, node, testmsgs.Int32Type, "/counts", qos.DefaultProfile())
	mustSubscription(t, node, testmsgs.StringType, "/labels", qos.DefaultProfile())
	// Two types on one topic both show up.
	mustPublisher(t, node, testmsgs.StringType, "/counts", qos.DefaultProfile())

	got, err := node.TopicNamesAndTypes()
	if err != nil {
		t.Fatalf("TopicNamesAndTypes: %v", err)
	}
	want := rmw.NamesAndTypes{
		"/counts": {"std_msgs/msg/Int32", "std_msgs/msg/String"},
		"/labels": {"std_msgs/msg/String"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCountEndpoints(t *testing.T) {
	ctx := newTestContext(t)
	node := mustNode(t, ctx, "tester")
	mustPublisher(t, node, testmsgs.Int32Type, "/data", qos.DefaultProfile())
	mustPublisher(t, node, testmsgs.Int32Type, "/data", qos.DefaultProfile())
	mustSubscription(t, node, testmsgs.Int32Type, "/data", qos.DefaultProfile())

	if n, err := node.CountPublishers("/data"); err != nil || n != 2 {
		t.Errorf("CountPublishers: got %d, %v, want 2", n, err)
	}
	if n, err := node.CountSubscriptions("/data"); err != nil || n != 1 {
		t.Errorf("CountSubscriptions: got %d, %v, want 1", n, err)
	}
	if n, err := node.CountPublishers("/absent"); err != nil || n != 0 {
		t.Errorf("CountPublishers absent: got %d, %v, want 0", n, err)
	}
}

func TestPublishersInfoByTopic(t *testing.T) {
	ctx := newTestContext(t)
	node := mustNode(t, ctx, "prober")
	pub := mustPublisher(t, node, testmsgs.Int32Type, "/data", qos.SensorDataProfile())

	infos, err := node.PublishersInfoByTopic("/data")
	if err != nil {
		t.Fatalf("PublishersInfoByTopic: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("got %d infos, want 1", len(infos))
	}
	info := infos[0]
	if info.NodeName != "prober" || info.NodeNamespace != "/" {
		t.Errorf("node: got %s %s, want prober /", info.NodeName, info.NodeNamespace)
	}
	if info.TopicType != "std_msgs/msg/Int32" {
		t.Errorf("TopicType: got %s", info.TopicType)
	}
	if info.Type != rmw.EndpointPublisher {
		t.Errorf("Type: got %v, want publisher", info.Type)
	}
	if info.GID != pub.GID() {
		t.Errorf("GID: got %s, want %s", info.GID, pub.GID())
	}
	if info.QoS.Reliability != qos.ReliabilityBestEffort || info.QoS.Depth != 5 {
		t.Errorf("QoS: got %v/%d, want best_effort/5", info.QoS.Reliability, info.QoS.Depth)
	}

	empty, err := node.SubscriptionsInfoByTopic("/data")
	if err != nil {
		t.Fatalf("SubscriptionsInfoByTopic: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("got %v, want an empty non-nil slice", empty)
	}
}

func TestServiceNamesAndTypesListsBothSides(t *testing.T) {
	ctx := newTestContext(t)
	node := mustNode(t, ctx, "calc")
	mustService(t, node, "/add_two_ints")
	mustClient(t, node, "/ping")

	got, err := node.ServiceNamesAndTypes()
	if err != nil {
		t.Fatalf("ServiceNamesAndTypes: %v", err)
	}
	want := rmw.NamesAndTypes{
		"/add_two_ints": {"example_interfaces/srv/AddTwoInts"},
		"/ping":         {"example_interfaces/srv/AddTwoInts"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNamesAndTypesByNode(t *testing.T) {
	ctx := newTestContext(t)
	talker := mustNode(t, ctx, "talker")
	listener := mustNode(t, ctx, "listener")
	mustPublisher(t, talker, testmsgs.StringType, "/chatter", qos.DefaultProfile())
	mustSubscription(t, listener, testmsgs.StringType, "/chatter", qos.DefaultProfile())

	got, err := listener.PublisherNamesAndTypesByNode("talker", "/")
	if err != nil {
		t.Fatalf("PublisherNamesAndTypesByNode: %v", err)
	}
	want := rmw.NamesAndTypes{"/chatter": {"std_msgs/msg/String"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("publishers: got %v, want %v", got, want)
	}

	got, err = talker.SubscriptionNamesAndTypesByNode("listener", "/")
	if err != nil {
		t.Fatalf("SubscriptionNamesAndTypesByNode: %v", err)
	}
	want = rmw.NamesAndTypes{"/chatter": {"std_msgs/msg/String"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("subscriptions: got %v, want %v", got, want)
	}

	if len(got) != 1 {
		t.Errorf("got %d topics, want 1", len(got))
	}
	empty, err := listener.PublisherNamesAndTypesByNode("listener", "/")
	if err != nil {
		t.Fatalf("own publishers: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("listener publishers: got %v, want none", empty)
	}

	if _, err := talker.PublisherNamesAndTypesByNode("nobody", "/"); !errors.Is(err, rmw.ErrInvalidArgument) {
		t.Errorf("unknown node: got %v, want ErrInvalidArgument", err)
	}
}

func TestGraphSpansContexts(t *testing.T) {
	mw := New(Config{})
	opts := rmw.DefaultContextOptions()
	opts.DomainID = 11

	first, err := mw.NewContext(opts)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	defer first.Close()
	second, err := mw.NewContext(opts)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	defer second.Close()

	talker := mustNode(t, first, "talker")
	observer := mustNode(t, second, "observer")
	mustPublisher(t, talker, testmsgs.StringType, "/chatter", qos.DefaultProfile())

	topics, err := observer.TopicNamesAndTypes()
	if err != nil {
		t.Fatalf("TopicNamesAndTypes: %v", err)
	}
	if _, found := topics["/chatter"]; !found {
		t.Errorf("observer does not see /chatter: %v", topics)
	}
	if n, _ := observer.CountPublishers("/chatter"); n != 1 {
		t.Errorf("CountPublishers across contexts: got %d, want 1", n)
	}
}

func TestNodeNamesCarryEnclave(t *testing.T) {
	mw := New(Config{})
	opts := rmw.DefaultContextOptions()
	opts.Enclave = "/secure"

	ctx, err := mw.NewContext(opts)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	defer ctx.Close()
	node := mustNode(t, ctx, "guard")

	names, err := node.NodeNames()
	if err != nil {
		t.Fatalf("NodeNames: %v", err)
	}
	if len(names) != 1 {
		t.Fatalf("got %d names, want 1", len(names))
	}
	if names[0].Name != "guard" || names[0].Namespace != "/" || names[0].Enclave != "/secure" {
		t.Errorf("got %+v", names[0])
	}
	if fqn := names[0].FullyQualifiedName(); fqn != "/guard" {
		t.Errorf("FullyQualifiedName: got %s, want /guard", fqn)
	}
}

func TestClosedNodeLeavesGraph(t *testing.T) {
	ctx := newTestContext(t)
	keep := mustNode(t, ctx, "keep")
	drop := mustNode(t, ctx, "drop")
	mustPublisher(t, drop, testmsgs.Int32Type, "/t", qos.DefaultProfile())

	if err := drop.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	names, err := keep.NodeNames()
	if err != nil {
		t.Fatalf("NodeNames: %v", err)
	}
	if len(names) != 1 || names[0].Name != "keep" {
		t.Errorf("got %v, want just keep", names)
	}
	if n, _ := keep.CountPublishers("/t"); n != 0 {
		t.Errorf("closed node's publisher still counted: %d", n)
	}

	if _, err := drop.NodeNames(); !errors.Is(err, rmw.ErrClosed) {
		t.Errorf("NodeNames on closed node: got %v, want ErrClosed", err)
	}
}
