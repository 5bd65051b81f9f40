package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.rlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readAll(t *testing.T, reader *Reader) []Event {
	t.Helper()
	var read []Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}
	return read
}

func TestReaderIteratesEvents(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), ContextID: "ctx-1", Kind: KindLifecycle, Entity: EntityNode},
		{Timestamp: time.Now(), ContextID: "ctx-2", Kind: KindDelivery, Entity: EntitySubscription},
		{Timestamp: time.Now(), ContextID: "ctx-3", Kind: KindMatch, Entity: EntityPublisher},
	}

	path := createTestLogFile(t, events)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}

	// Verify order
	if read[0].ContextID != "ctx-1" {
		t.Errorf("first event ContextID = %q, want %q", read[0].ContextID, "ctx-1")
	}
	if read[2].ContextID != "ctx-3" {
		t.Errorf("last event ContextID = %q, want %q", read[2].ContextID, "ctx-3")
	}
}

func TestReaderHandlesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.rlog")

	// Create empty file
	logger, _ := NewFileLogger(path)
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF, got err=%v, event=%+v", err, event)
	}
}

func TestReaderExhaustsFile(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), ContextID: "ctx-1", Kind: KindLifecycle},
	}

	path := createTestLogFile(t, events)

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	// Read first event
	_, err = reader.Next()
	if err != nil {
		t.Fatalf("first Next failed: %v", err)
	}

	// Second read should return EOF
	_, err = reader.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF after all events, got %v", err)
	}
}

func TestReaderFilterByContextID(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), ContextID: "ctx-A", Kind: KindLifecycle},
		{Timestamp: time.Now(), ContextID: "ctx-B", Kind: KindDelivery},
		{Timestamp: time.Now(), ContextID: "ctx-A", Kind: KindMatch},
		{Timestamp: time.Now(), ContextID: "ctx-C", Kind: KindDelivery},
	}

	path := createTestLogFile(t, events)

	filter := Filter{ContextID: "ctx-A"}
	reader, err := NewFilteredReader(path, filter)
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	if len(read) != 2 {
		t.Fatalf("got %d events, want 2", len(read))
	}

	for _, e := range read {
		if e.ContextID != "ctx-A" {
			t.Errorf("filtered event has ContextID %q, want ctx-A", e.ContextID)
		}
	}
}

func TestReaderFilterByKind(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), ContextID: "ctx-1", Kind: KindLifecycle},
		{Timestamp: time.Now(), ContextID: "ctx-1", Kind: KindDelivery},
		{Timestamp: time.Now(), ContextID: "ctx-1", Kind: KindDelivery},
		{Timestamp: time.Now(), ContextID: "ctx-1", Kind: KindQoS},
	}

	path := createTestLogFile(t, events)

	kind := KindDelivery
	reader, err := NewFilteredReader(path, Filter{Kind: &kind})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	if len(read) != 2 {
		t.Fatalf("got %d events, want 2", len(read))
	}
	for _, e := range read {
		if e.Kind != KindDelivery {
			t.Errorf("filtered event has Kind %v, want delivery", e.Kind)
		}
	}
}

func TestReaderFilterByTopic(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), ContextID: "ctx-1", Kind: KindDelivery, Topic: "/chatter"},
		{Timestamp: time.Now(), ContextID: "ctx-1", Kind: KindDelivery, Topic: "/scan"},
		{Timestamp: time.Now(), ContextID: "ctx-1", Kind: KindMatch, Topic: "/chatter"},
	}

	path := createTestLogFile(t, events)

	reader, err := NewFilteredReader(path, Filter{Topic: "/chatter"})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	if len(read) != 2 {
		t.Fatalf("got %d events, want 2", len(read))
	}
	for _, e := range read {
		if e.Topic != "/chatter" {
			t.Errorf("filtered event has Topic %q, want /chatter", e.Topic)
		}
	}
}

func TestReaderFilterByTimeRange(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, ContextID: "ctx-1", Kind: KindLifecycle},
		{Timestamp: base.Add(10 * time.Second), ContextID: "ctx-2", Kind: KindLifecycle},
		{Timestamp: base.Add(20 * time.Second), ContextID: "ctx-3", Kind: KindLifecycle},
		{Timestamp: base.Add(30 * time.Second), ContextID: "ctx-4", Kind: KindLifecycle},
	}

	path := createTestLogFile(t, events)

	start := base.Add(5 * time.Second)
	end := base.Add(25 * time.Second)
	reader, err := NewFilteredReader(path, Filter{TimeStart: &start, TimeEnd: &end})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	if len(read) != 2 {
		t.Fatalf("got %d events, want 2", len(read))
	}
	if read[0].ContextID != "ctx-2" || read[1].ContextID != "ctx-3" {
		t.Errorf("time window returned %q and %q, want ctx-2 and ctx-3", read[0].ContextID, read[1].ContextID)
	}
}

func TestReaderFilterByEntity(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), ContextID: "ctx-1", Kind: KindLifecycle, Entity: EntityPublisher},
		{Timestamp: time.Now(), ContextID: "ctx-1", Kind: KindLifecycle, Entity: EntitySubscription},
		{Timestamp: time.Now(), ContextID: "ctx-1", Kind: KindLifecycle, Entity: EntityPublisher},
	}

	path := createTestLogFile(t, events)

	entity := EntityPublisher
	reader, err := NewFilteredReader(path, Filter{Entity: &entity})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	if len(read) != 2 {
		t.Fatalf("got %d events, want 2", len(read))
	}
}

func TestReaderCombinedFilters(t *testing.T) {
	events := []Event{
		{Timestamp: time.Now(), ContextID: "ctx-A", Kind: KindDelivery, Node: "/demo/talker", Topic: "/chatter"},
		{Timestamp: time.Now(), ContextID: "ctx-A", Kind: KindDelivery, Node: "/demo/other", Topic: "/chatter"},
		{Timestamp: time.Now(), ContextID: "ctx-B", Kind: KindDelivery, Node: "/demo/talker", Topic: "/chatter"},
		{Timestamp: time.Now(), ContextID: "ctx-A", Kind: KindMatch, Node: "/demo/talker", Topic: "/chatter"},
	}

	path := createTestLogFile(t, events)

	kind := KindDelivery
	reader, err := NewFilteredReader(path, Filter{
		ContextID: "ctx-A",
		Kind:      &kind,
		Node:      "/demo/talker",
	})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)

	if len(read) != 1 {
		t.Fatalf("got %d events, want 1", len(read))
	}
	if read[0].Node != "/demo/talker" || read[0].Kind != KindDelivery {
		t.Errorf("combined filter returned %+v", read[0])
	}
}
