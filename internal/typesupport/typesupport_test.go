package typesupport

import (
	"errors"
	"testing"

	"github.com/ros-middleware/rmw-go/pkg/rmw"
)

type testMsg struct {
	Value int32  `cbor:"1,keyasint"`
	Label string `cbor:"2,keyasint,omitempty"`
}

type testReq struct {
	A int64 `cbor:"1,keyasint"`
	B int64 `cbor:"2,keyasint"`
}

type testResp struct {
	Sum int64 `cbor:"1,keyasint"`
}

func TestTypeSupportRoundTrip(t *testing.T) {
	ts := New[testMsg]("test/msg/Test")

	if got := ts.TypeName(); got != "test/msg/Test" {
		t.Errorf("TypeName = %q, want test/msg/Test", got)
	}

	original := &testMsg{Value: 42, Label: "hello"}
	data, err := ts.Serialize(original)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Serialize produced no bytes")
	}

	decoded := ts.New()
	if err := ts.Deserialize(data, decoded); err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	got, ok := decoded.(*testMsg)
	if !ok {
		t.Fatalf("New returned %T, want *testMsg", decoded)
	}
	if got.Value != 42 || got.Label != "hello" {
		t.Errorf("decoded = %+v, want %+v", got, original)
	}
}

func TestTypeSupportRejectsWrongType(t *testing.T) {
	ts := New[testMsg]("test/msg/Test")

	if _, err := ts.Serialize(&testReq{}); !errors.Is(err, rmw.ErrInvalidArgument) {
		t.Errorf("Serialize wrong type: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := ts.Serialize(testMsg{Value: 1}); !errors.Is(err, rmw.ErrInvalidArgument) {
		t.Errorf("Serialize non-pointer: err = %v, want ErrInvalidArgument", err)
	}

	data, err := ts.Serialize(&testMsg{Value: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := ts.Deserialize(data, &testReq{}); !errors.Is(err, rmw.ErrInvalidArgument) {
		t.Errorf("Deserialize wrong type: err = %v, want ErrInvalidArgument", err)
	}
}

func TestTypeSupportNewIsFresh(t *testing.T) {
	ts := New[testMsg]("test/msg/Test")

	a := ts.New().(*testMsg)
	b := ts.New().(*testMsg)
	if a == b {
		t.Error("New returned the same instance twice")
	}
	a.Value = 7
	if b.Value != 0 {
		t.Error("instances share state")
	}
}

func TestServiceTypeSupport(t *testing.T) {
	st := NewService[testReq, testResp]("test/srv/Add")

	if got := st.TypeName(); got != "test/srv/Add" {
		t.Errorf("TypeName = %q, want test/srv/Add", got)
	}
	if got := st.Request().TypeName(); got != "test/srv/Add_Request" {
		t.Errorf("Request().TypeName = %q, want test/srv/Add_Request", got)
	}
	if got := st.Response().TypeName(); got != "test/srv/Add_Response" {
		t.Errorf("Response().TypeName = %q, want test/srv/Add_Response", got)
	}

	data, err := st.Request().Serialize(&testReq{A: 2, B: 3})
	if err != nil {
		t.Fatalf("request Serialize: %v", err)
	}
	var req testReq
	if err := st.Request().Deserialize(data, &req); err != nil {
		t.Fatalf("request Deserialize: %v", err)
	}
	if req.A != 2 || req.B != 3 {
		t.Errorf("request round trip = %+v", req)
	}
}
