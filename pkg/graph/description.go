package graph

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ros-middleware/rmw-go/pkg/qos"
	"github.com/ros-middleware/rmw-go/pkg/rmw"
)

// EndpointSpec describes one endpoint in a graph description. QoS comes
// from the explicit qos block when present, else from the named preset,
// else from the default profile.
type EndpointSpec struct {
	Node      string `yaml:"node"`
	Namespace string `yaml:"namespace,omitempty"`

	// Type is the fully qualified message type name. Endpoints with
	// different types on one topic are reported as incompatible.
	Type string `yaml:"type,omitempty"`

	// Profile names a qos preset, e.g. "sensor_data".
	Profile string `yaml:"profile,omitempty"`

	// QoS spells the profile out field by field and wins over Profile.
	QoS *qos.Profile `yaml:"qos,omitempty"`
}

func (s EndpointSpec) resolve(kind rmw.EndpointType) (rmw.EndpointInfo, error) {
	info := rmw.EndpointInfo{
		NodeName:      s.Node,
		NodeNamespace: s.Namespace,
		TopicType:     s.Type,
		Type:          kind,
	}
	if info.NodeNamespace == "" {
		info.NodeNamespace = "/"
	}
	switch {
	case s.QoS != nil:
		info.QoS = *s.QoS
	case s.Profile != "":
		p, ok := qos.ProfileNamed(s.Profile)
		if !ok {
			return info, fmt.Errorf("unknown qos preset %q", s.Profile)
		}
		info.QoS = p
	default:
		info.QoS = qos.DefaultProfile()
	}
	return info, nil
}

// TopicSpec describes one topic and its intended endpoints.
type TopicSpec struct {
	Name          string         `yaml:"topic"`
	Publishers    []EndpointSpec `yaml:"publishers,omitempty"`
	Subscriptions []EndpointSpec `yaml:"subscriptions,omitempty"`
}

// Description is an offline topology to check without running any
// middleware.
type Description struct {
	Topics []TopicSpec `yaml:"topics"`
}

// LoadDescription parses a YAML graph description. Unknown fields are
// rejected.
func LoadDescription(r io.Reader) (*Description, error) {
	var d Description
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("parse graph description: %w", err)
	}
	return &d, nil
}

// LoadDescriptionFile reads and parses the description at path.
func LoadDescriptionFile(path string) (*Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d, err := LoadDescription(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Analyze checks every topic in the description, in file order.
func (d *Description) Analyze() ([]TopicReport, error) {
	reports := make([]TopicReport, 0, len(d.Topics))
	for _, ts := range d.Topics {
		pubs := make([]rmw.EndpointInfo, 0, len(ts.Publishers))
		for _, es := range ts.Publishers {
			info, err := es.resolve(rmw.EndpointPublisher)
			if err != nil {
				return nil, fmt.Errorf("topic %s: publisher %s: %w", ts.Name, es.Node, err)
			}
			pubs = append(pubs, info)
		}
		subs := make([]rmw.EndpointInfo, 0, len(ts.Subscriptions))
		for _, es := range ts.Subscriptions {
			info, err := es.resolve(rmw.EndpointSubscription)
			if err != nil {
				return nil, fmt.Errorf("topic %s: subscription %s: %w", ts.Name, es.Node, err)
			}
			subs = append(subs, info)
		}
		reports = append(reports, AnalyzeTopic(ts.Name, pubs, subs))
	}
	return reports, nil
}
