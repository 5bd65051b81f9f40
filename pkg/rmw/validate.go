package rmw

import (
	"fmt"

	"github.com/ros-middleware/rmw-go/pkg/names"
)

// CheckTopicName returns nil when topic is a valid full topic name, and
// an error wrapping ErrInvalidName carrying the violated rule and byte
// offset otherwise. Service names follow the same rules and are checked
// with this function too.
func CheckTopicName(topic string) error {
	if res, idx := names.ValidateTopic(topic); res != names.TopicValid {
		return fmt.Errorf("%w: topic %q: %s (at byte %d)", ErrInvalidName, topic, res, idx)
	}
	return nil
}

// CheckNamespace returns nil when namespace is valid, and an error
// wrapping ErrInvalidName otherwise.
func CheckNamespace(namespace string) error {
	if res, idx := names.ValidateNamespace(namespace); res != names.NamespaceValid {
		return fmt.Errorf("%w: namespace %q: %s (at byte %d)", ErrInvalidName, namespace, res, idx)
	}
	return nil
}

// CheckNodeName returns nil when name is a valid node name, and an
// error wrapping ErrInvalidName otherwise.
func CheckNodeName(name string) error {
	if res, idx := names.ValidateNodeName(name); res != names.NodeNameValid {
		return fmt.Errorf("%w: node name %q: %s (at byte %d)", ErrInvalidName, name, res, idx)
	}
	return nil
}
