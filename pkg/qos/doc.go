// Package qos models ROS 2 quality-of-service profiles and checks whether a
// publisher profile can satisfy a subscription profile.
//
// # Profiles
//
// A Profile bundles the per-endpoint policies: history and depth,
// reliability, durability, deadline, lifespan, liveliness and its lease
// duration, and the avoid_ros_namespace_conventions flag. The zero value is
// the all-system-default profile. Named presets mirror the well-known
// upstream profiles (DefaultProfile, SensorDataProfile, ServicesProfile,
// ParametersProfile, ParameterEventsProfile, SystemDefaultProfile,
// BestAvailableProfile, UnknownProfile) and can be looked up by name with
// ProfileNamed.
//
// Policy values and durations convert to and from their canonical lowercase
// strings ("reliable", "best_effort", "transient_local", ...) and marshal to
// YAML in that form, so profiles round-trip through configuration files.
//
// # Sentinels
//
// Enum policies carry three values that do not name concrete behavior:
// system_default (defer to the middleware), unknown (unrecognized), and
// best_available (resolve against the peers present at creation time).
// Durations likewise reserve encodings for "unspecified", "infinite", and
// "best_available". A profile read back from a live endpoint has these
// resolved; a profile built by hand usually does not, and the compatibility
// checker accounts for both.
//
// # Compatibility
//
// CheckCompatibility(pub, sub) classifies a pairing as OK, WARNING, or
// ERROR. Every policy is evaluated, nothing short-circuits, and each
// finding carries a reason naming the policy. ERROR means the middleware
// would refuse to match the endpoints (for example a best_effort publisher
// against a reliable subscription); WARNING means compatibility depends on
// how an unresolved sentinel resolves. The rendered reason string lists all
// ERROR findings before any WARNING finding and can be truncated to a byte
// budget without losing that ordering.
package qos
