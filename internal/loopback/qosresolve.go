package loopback

import "github.com/ros-middleware/rmw-go/pkg/qos"

// resolveCommon replaces system-default policies with the loopback
// defaults: keep-last history of depth 10, reliable, volatile, automatic
// liveliness. Best-available markers survive; resolvePublisher and
// resolveSubscription settle those against the live graph.
func resolveCommon(p qos.Profile) qos.Profile {
	def := qos.DefaultProfile()
	if p.History == qos.HistorySystemDefault {
		p.History = def.History
	}
	if p.History == qos.HistoryKeepLast && p.Depth == qos.DepthSystemDefault {
		p.Depth = def.Depth
	}
	if p.Reliability == qos.ReliabilitySystemDefault {
		p.Reliability = def.Reliability
	}
	if p.Durability == qos.DurabilitySystemDefault {
		p.Durability = def.Durability
	}
	if p.Liveliness == qos.LivelinessSystemDefault {
		p.Liveliness = qos.LivelinessAutomatic
	}
	return p
}

// resolvePublisher settles best-available policies against the
// subscriptions currently on the topic. The publisher adopts the
// strongest policy any subscription requests, which satisfies every
// request without over-promising; with no subscriptions the defaults
// apply.
func resolvePublisher(p qos.Profile, requests []qos.Profile) qos.Profile {
	p = resolveCommon(p)

	if p.Reliability == qos.ReliabilityBestAvailable {
		p.Reliability = qos.ReliabilityReliable
		if len(requests) > 0 {
			p.Reliability = qos.ReliabilityBestEffort
			for _, q := range requests {
				if q.Reliability == qos.ReliabilityReliable {
					p.Reliability = qos.ReliabilityReliable
					break
				}
			}
		}
	}
	if p.Durability == qos.DurabilityBestAvailable {
		p.Durability = qos.DurabilityVolatile
		for _, q := range requests {
			if q.Durability == qos.DurabilityTransientLocal {
				p.Durability = qos.DurabilityTransientLocal
				break
			}
		}
	}
	if p.Liveliness == qos.LivelinessBestAvailable {
		p.Liveliness = qos.LivelinessAutomatic
		for _, q := range requests {
			if q.Liveliness == qos.LivelinessManualByTopic {
				p.Liveliness = qos.LivelinessManualByTopic
				break
			}
		}
	}
	if p.Deadline.IsBestAvailable() {
		p.Deadline = qos.DurationUnspecified
		for _, q := range requests {
			p.Deadline = tightest(p.Deadline, q.Deadline)
		}
	}
	if p.LivelinessLeaseDuration.IsBestAvailable() {
		p.LivelinessLeaseDuration = qos.DurationUnspecified
		for _, q := range requests {
			p.LivelinessLeaseDuration = tightest(p.LivelinessLeaseDuration, q.LivelinessLeaseDuration)
		}
	}
	return p
}

// resolveSubscription settles best-available policies against the
// publishers currently on the topic. The subscription requests the
// strongest policy every publisher offers, so it matches all of them;
// with no publishers the defaults apply.
func resolveSubscription(p qos.Profile, offers []qos.Profile) qos.Profile {
	p = resolveCommon(p)

	if p.Reliability == qos.ReliabilityBestAvailable {
		p.Reliability = qos.ReliabilityReliable
		for _, q := range offers {
			if q.Reliability == qos.ReliabilityBestEffort {
				p.Reliability = qos.ReliabilityBestEffort
				break
			}
		}
	}
	if p.Durability == qos.DurabilityBestAvailable {
		p.Durability = qos.DurabilityVolatile
		if len(offers) > 0 {
			p.Durability = qos.DurabilityTransientLocal
			for _, q := range offers {
				if q.Durability != qos.DurabilityTransientLocal {
					p.Durability = qos.DurabilityVolatile
					break
				}
			}
		}
	}
	if p.Liveliness == qos.LivelinessBestAvailable {
		p.Liveliness = qos.LivelinessAutomatic
		if len(offers) > 0 {
			p.Liveliness = qos.LivelinessManualByTopic
			for _, q := range offers {
				if q.Liveliness != qos.LivelinessManualByTopic {
					p.Liveliness = qos.LivelinessAutomatic
					break
				}
			}
		}
	}
	if p.Deadline.IsBestAvailable() {
		p.Deadline = qos.DurationUnspecified
		for _, q := range offers {
			p.Deadline = loosest(p.Deadline, q.Deadline)
		}
	}
	if p.LivelinessLeaseDuration.IsBestAvailable() {
		p.LivelinessLeaseDuration = qos.DurationUnspecified
		for _, q := range offers {
			p.LivelinessLeaseDuration = loosest(p.LivelinessLeaseDuration, q.LivelinessLeaseDuration)
		}
	}
	return p
}

// tightest folds d into cur keeping the smaller finite span. Unspecified
// and infinite values of d impose no constraint and are skipped.
func tightest(cur, d qos.Duration) qos.Duration {
	if d.IsUnspecified() || d.IsInfinite() {
		return cur
	}
	if cur.IsUnspecified() || d.Cmp(cur) < 0 {
		return d
	}
	return cur
}

// loosest folds d into cur keeping the larger finite span.
func loosest(cur, d qos.Duration) qos.Duration {
	if d.IsUnspecified() || d.IsInfinite() {
		return cur
	}
	if cur.IsUnspecified() || d.Cmp(cur) > 0 {
		return d
	}
	return cur
}
