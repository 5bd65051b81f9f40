package rmw

import (
	"fmt"

	"github.com/ros-middleware/rmw-go/pkg/qos"
)

// DomainIDDefault asks the implementation to pick its default domain.
const DomainIDDefault = -1

// DiscoveryPeerMaxLength bounds a single static peer address.
const DiscoveryPeerMaxLength = 256

// AutomaticDiscoveryRange bounds how far automatic peer discovery may
// reach.
type AutomaticDiscoveryRange uint8

const (
	// DiscoveryRangeNotSet means the caller expressed no preference.
	// Implementations resolve it to DiscoveryRangeSystemDefault.
	DiscoveryRangeNotSet AutomaticDiscoveryRange = iota
	// DiscoveryRangeOff disables automatic discovery entirely.
	DiscoveryRangeOff
	// DiscoveryRangeLocalhost discovers peers on this host only.
	DiscoveryRangeLocalhost
	// DiscoveryRangeSubnet discovers peers across the local subnet.
	DiscoveryRangeSubnet
	// DiscoveryRangeSystemDefault defers to the implementation.
	DiscoveryRangeSystemDefault
)

// String returns the lowercase range name.
func (r AutomaticDiscoveryRange) String() string {
	switch r {
	case DiscoveryRangeNotSet:
		return "not_set"
	case DiscoveryRangeOff:
		return "off"
	case DiscoveryRangeLocalhost:
		return "localhost"
	case DiscoveryRangeSubnet:
		return "subnet"
	case DiscoveryRangeSystemDefault:
		return "system_default"
	default:
		return "unknown"
	}
}

// DiscoveryOptions configures how a context finds peers.
type DiscoveryOptions struct {
	// Range bounds automatic discovery.
	Range AutomaticDiscoveryRange

	// StaticPeers lists addresses to contact regardless of Range.
	StaticPeers []string
}

// Clone returns a deep copy; the peer list is not shared.
func (o DiscoveryOptions) Clone() DiscoveryOptions {
	if o.StaticPeers != nil {
		peers := make([]string, len(o.StaticPeers))
		copy(peers, o.StaticPeers)
		o.StaticPeers = peers
	}
	return o
}

// Equal reports whether two option sets request the same discovery
// behavior.
func (o DiscoveryOptions) Equal(other DiscoveryOptions) bool {
	if o.Range != other.Range || len(o.StaticPeers) != len(other.StaticPeers) {
		return false
	}
	for i, p := range o.StaticPeers {
		if other.StaticPeers[i] != p {
			return false
		}
	}
	return true
}

// SecurityEnforcement selects how strictly security is applied.
type SecurityEnforcement uint8

const (
	// SecurityPermissive runs unsecured when security material is
	// missing.
	SecurityPermissive SecurityEnforcement = iota
	// SecurityEnforce refuses to run without security material.
	SecurityEnforce
)

// String returns "permissive" or "enforce".
func (e SecurityEnforcement) String() string {
	switch e {
	case SecurityPermissive:
		return "permissive"
	case SecurityEnforce:
		return "enforce"
	default:
		return "unknown"
	}
}

// SecurityOptions carries the security posture of a context.
type SecurityOptions struct {
	Enforcement SecurityEnforcement

	// RootPath locates the security material on disk. Empty means
	// no material.
	RootPath string
}

// ContextOptions parameterizes Middleware.NewContext.
type ContextOptions struct {
	// DomainID partitions the graph; endpoints only see peers in the
	// same domain. DomainIDDefault defers to the implementation.
	DomainID int

	// Enclave is the security enclave namespace. Empty means the root
	// enclave. When set it must be a valid namespace.
	Enclave string

	Security  SecurityOptions
	Discovery DiscoveryOptions
}

// DefaultContextOptions returns options with the default domain and no
// security or discovery constraints.
func DefaultContextOptions() ContextOptions {
	return ContextOptions{DomainID: DomainIDDefault}
}

// Clone returns a deep copy; nested slices are not shared.
func (o ContextOptions) Clone() ContextOptions {
	o.Discovery = o.Discovery.Clone()
	return o
}

// Validate checks the options against their contracts.
func (o ContextOptions) Validate() error {
	if o.DomainID < DomainIDDefault {
		return fmt.Errorf("%w: domain id %d", ErrInvalidArgument, o.DomainID)
	}
	if o.Enclave != "" {
		if err := CheckNamespace(o.Enclave); err != nil {
			return fmt.Errorf("enclave: %w", err)
		}
	}
	for i, peer := range o.Discovery.StaticPeers {
		if len(peer) > DiscoveryPeerMaxLength {
			return fmt.Errorf("%w: static peer %d exceeds %d bytes",
				ErrInvalidArgument, i, DiscoveryPeerMaxLength)
		}
	}
	return nil
}

// UniqueNetworkFlowRequirement states whether an endpoint needs network
// flows distinct from every other endpoint's.
type UniqueNetworkFlowRequirement uint8

const (
	// FlowNotRequired accepts shared network flows.
	FlowNotRequired UniqueNetworkFlowRequirement = iota
	// FlowStrictlyRequired fails creation when unique flows cannot be
	// provided.
	FlowStrictlyRequired
	// FlowOptionallyRequired requests unique flows but tolerates their
	// absence.
	FlowOptionallyRequired
	// FlowSystemDefault defers to the implementation.
	FlowSystemDefault
)

// String returns the lowercase requirement name.
func (u UniqueNetworkFlowRequirement) String() string {
	switch u {
	case FlowNotRequired:
		return "not_required"
	case FlowStrictlyRequired:
		return "strictly_required"
	case FlowOptionallyRequired:
		return "optionally_required"
	case FlowSystemDefault:
		return "system_default"
	default:
		return "unknown"
	}
}

// ContentFilterOptions restricts a subscription to messages matching an
// expression. The expression syntax is implementation defined.
type ContentFilterOptions struct {
	Expression string
	Parameters []string
}

// Clone returns a deep copy; the parameter list is not shared. Cloning
// nil yields nil.
func (o *ContentFilterOptions) Clone() *ContentFilterOptions {
	if o == nil {
		return nil
	}
	c := *o
	if o.Parameters != nil {
		c.Parameters = make([]string, len(o.Parameters))
		copy(c.Parameters, o.Parameters)
	}
	return &c
}

// PublisherOptions parameterizes Node.CreatePublisher.
type PublisherOptions struct {
	QoS qos.Profile

	RequireUniqueNetworkFlowEndpoints UniqueNetworkFlowRequirement
}

// DefaultPublisherOptions returns options carrying the default profile.
func DefaultPublisherOptions() PublisherOptions {
	return PublisherOptions{QoS: qos.DefaultProfile()}
}

// SubscriptionOptions parameterizes Node.CreateSubscription.
type SubscriptionOptions struct {
	QoS qos.Profile

	// IgnoreLocalPublications drops messages published from the same
	// node.
	IgnoreLocalPublications bool

	RequireUniqueNetworkFlowEndpoints UniqueNetworkFlowRequirement

	// ContentFilter, when non-nil, restricts delivery to matching
	// messages.
	ContentFilter *ContentFilterOptions
}

// DefaultSubscriptionOptions returns options carrying the default
// profile and no filtering.
func DefaultSubscriptionOptions() SubscriptionOptions {
	return SubscriptionOptions{QoS: qos.DefaultProfile()}
}

// Clone returns a deep copy; the content filter is not shared.
func (o SubscriptionOptions) Clone() SubscriptionOptions {
	o.ContentFilter = o.ContentFilter.Clone()
	return o
}
