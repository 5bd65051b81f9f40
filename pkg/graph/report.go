package graph

import (
	"github.com/ros-middleware/rmw-go/pkg/names"
	"github.com/ros-middleware/rmw-go/pkg/qos"
	"github.com/ros-middleware/rmw-go/pkg/rmw"
)

// PairReport is the checked pairing of one publisher with one
// subscription on the same topic.
type PairReport struct {
	Publisher    rmw.EndpointInfo
	Subscription rmw.EndpointInfo

	// TypeCompatible is false when the endpoints carry different type
	// names; such a pair can never exchange messages.
	TypeCompatible bool

	// Result is the QoS verdict for the pair.
	Result qos.Result
}

// TopicReport summarizes every pairing on one topic.
type TopicReport struct {
	Topic string

	// NameResult classifies the topic name; NameIndex is the byte
	// offset of the fault, -1 when the name is valid.
	NameResult names.TopicResult
	NameIndex  int

	Publishers    int
	Subscriptions int

	Pairs []PairReport

	// Compatibility is the worst verdict across all pairs. An invalid
	// name or a type mismatch forces an error verdict.
	Compatibility qos.Compatibility
}

// MissingPublishers reports a topic someone listens to but nobody
// publishes.
func (r TopicReport) MissingPublishers() bool {
	return r.Publishers == 0 && r.Subscriptions > 0
}

// MissingSubscriptions reports a topic someone publishes but nobody
// listens to.
func (r TopicReport) MissingSubscriptions() bool {
	return r.Subscriptions == 0 && r.Publishers > 0
}

// AnalyzeTopic validates the topic name, pairs every publisher with
// every subscription, and checks each pair for type and QoS
// compatibility.
func AnalyzeTopic(topic string, pubs, subs []rmw.EndpointInfo) TopicReport {
	rep := TopicReport{
		Topic:         topic,
		Publishers:    len(pubs),
		Subscriptions: len(subs),
	}
	rep.NameResult, rep.NameIndex = names.ValidateTopic(topic)
	if rep.NameResult != names.TopicValid {
		rep.Compatibility = qos.CompatibilityError
	}

	for _, p := range pubs {
		for _, s := range subs {
			pair := PairReport{
				Publisher:      p,
				Subscription:   s,
				TypeCompatible: p.TopicType == s.TopicType,
				Result:         qos.CheckCompatibility(p.QoS, s.QoS),
			}
			verdict := pair.Result.Compatibility
			if !pair.TypeCompatible {
				verdict = qos.CompatibilityError
			}
			if verdict > rep.Compatibility {
				rep.Compatibility = verdict
			}
			rep.Pairs = append(rep.Pairs, pair)
		}
	}
	return rep
}

// AnalyzeNode runs AnalyzeTopic over every topic visible to node, in
// sorted topic order.
func AnalyzeNode(node rmw.Node) ([]TopicReport, error) {
	nt, err := node.TopicNamesAndTypes()
	if err != nil {
		return nil, err
	}
	reports := make([]TopicReport, 0, len(nt))
	for _, topic := range nt.Names() {
		pubs, err := node.PublishersInfoByTopic(topic)
		if err != nil {
			return nil, err
		}
		subs, err := node.SubscriptionsInfoByTopic(topic)
		if err != nil {
			return nil, err
		}
		reports = append(reports, AnalyzeTopic(topic, pubs, subs))
	}
	return reports, nil
}
