package rmw

// Feature identifies an optional middleware capability, probed with
// Context.SupportsFeature.
type Feature uint8

const (
	// FeatureMessageInfoPublicationSequenceNumber: MessageInfo carries
	// real publication sequence numbers.
	FeatureMessageInfoPublicationSequenceNumber Feature = iota
	// FeatureMessageInfoReceptionSequenceNumber: MessageInfo carries
	// real reception sequence numbers.
	FeatureMessageInfoReceptionSequenceNumber
	// FeatureTypeDiscovery: remote type descriptions can be discovered
	// at runtime.
	FeatureTypeDiscovery
	// FeatureTakeDynamicMessage: messages can be taken without
	// compiled-in type support.
	FeatureTakeDynamicMessage
)

// String returns the lowercase feature name.
func (f Feature) String() string {
	switch f {
	case FeatureMessageInfoPublicationSequenceNumber:
		return "message_info_publication_sequence_number"
	case FeatureMessageInfoReceptionSequenceNumber:
		return "message_info_reception_sequence_number"
	case FeatureTypeDiscovery:
		return "type_discovery"
	case FeatureTakeDynamicMessage:
		return "take_dynamic_message"
	default:
		return "unknown"
	}
}
