package rmw

import (
	"errors"
	"strings"
	"testing"

	"github.com/ros-middleware/rmw-go/pkg/qos"
)

func TestDefaultContextOptions(t *testing.T) {
	opts := DefaultContextOptions()
	if opts.DomainID != DomainIDDefault {
		t.Errorf("DomainID = %d, want %d", opts.DomainID, DomainIDDefault)
	}
	if err := opts.Validate(); err != nil {
		t.Errorf("Validate(default) = %v", err)
	}
}

func TestContextOptionsValidate(t *testing.T) {
	opts := DefaultContextOptions()
	opts.DomainID = -2
	if err := opts.Validate(); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Validate(domain -2) = %v, want ErrInvalidArgument", err)
	}

	opts = DefaultContextOptions()
	opts.Enclave = "not/absolute"
	if err := opts.Validate(); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Validate(bad enclave) = %v, want ErrInvalidName", err)
	}

	opts = DefaultContextOptions()
	opts.Enclave = "/secure"
	if err := opts.Validate(); err != nil {
		t.Errorf("Validate(valid enclave) = %v", err)
	}

	opts = DefaultContextOptions()
	opts.Discovery.StaticPeers = []string{strings.Repeat("a", DiscoveryPeerMaxLength+1)}
	if err := opts.Validate(); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Validate(long peer) = %v, want ErrInvalidArgument", err)
	}

	opts.Discovery.StaticPeers = []string{strings.Repeat("a", DiscoveryPeerMaxLength)}
	if err := opts.Validate(); err != nil {
		t.Errorf("Validate(max-length peer) = %v", err)
	}
}

func TestContextOptionsClone(t *testing.T) {
	opts := DefaultContextOptions()
	opts.Discovery.StaticPeers = []string{"udp://10.0.0.1:7400"}

	clone := opts.Clone()
	clone.Discovery.StaticPeers[0] = "mutated"
	if opts.Discovery.StaticPeers[0] != "udp://10.0.0.1:7400" {
		t.Error("Clone shares the peer list with the original")
	}
}

func TestDiscoveryOptionsEqual(t *testing.T) {
	a := DiscoveryOptions{Range: DiscoveryRangeLocalhost, StaticPeers: []string{"x", "y"}}
	b := a.Clone()
	if !a.Equal(b) {
		t.Error("clone is not Equal to its source")
	}
	b.StaticPeers[1] = "z"
	if a.Equal(b) {
		t.Error("Equal ignored a differing peer")
	}
	b = a.Clone()
	b.Range = DiscoveryRangeOff
	if a.Equal(b) {
		t.Error("Equal ignored a differing range")
	}
	if (DiscoveryOptions{}).Equal(DiscoveryOptions{StaticPeers: []string{"x"}}) {
		t.Error("Equal ignored a differing peer count")
	}
}

func TestContentFilterOptionsClone(t *testing.T) {
	var nilFilter *ContentFilterOptions
	if nilFilter.Clone() != nil {
		t.Error("Clone(nil) is not nil")
	}

	f := &ContentFilterOptions{Expression: "id = %0", Parameters: []string{"7"}}
	c := f.Clone()
	c.Parameters[0] = "8"
	if f.Parameters[0] != "7" {
		t.Error("Clone shares the parameter list")
	}

	opts := SubscriptionOptions{QoS: qos.DefaultProfile(), ContentFilter: f}
	oc := opts.Clone()
	oc.ContentFilter.Expression = "mutated"
	if f.Expression != "id = %0" {
		t.Error("SubscriptionOptions.Clone shares the filter")
	}
}

func TestDefaultEndpointOptions(t *testing.T) {
	if got := DefaultPublisherOptions().QoS; got != qos.DefaultProfile() {
		t.Errorf("publisher default QoS = %+v", got)
	}
	subOpts := DefaultSubscriptionOptions()
	if subOpts.QoS != qos.DefaultProfile() || subOpts.IgnoreLocalPublications {
		t.Errorf("subscription defaults = %+v", subOpts)
	}
	if subOpts.ContentFilter != nil {
		t.Error("subscription default carries a content filter")
	}
}

// The numeric encodings are part of the contract with implementations.
func TestOptionEnumValues(t *testing.T) {
	if DiscoveryRangeNotSet != 0 || DiscoveryRangeOff != 1 ||
		DiscoveryRangeLocalhost != 2 || DiscoveryRangeSubnet != 3 ||
		DiscoveryRangeSystemDefault != 4 {
		t.Error("discovery range encoding changed")
	}
	if SecurityPermissive != 0 || SecurityEnforce != 1 {
		t.Error("security enforcement encoding changed")
	}
	if FlowNotRequired != 0 || FlowStrictlyRequired != 1 ||
		FlowOptionallyRequired != 2 || FlowSystemDefault != 3 {
		t.Error("unique flow requirement encoding changed")
	}
}
