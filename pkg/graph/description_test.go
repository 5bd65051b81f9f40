package graph

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ros-middleware/rmw-go/pkg/qos"
	"github.com/ros-middleware/rmw-go/pkg/rmw"
)

const sampleDescription = `
topics:
  - topic: /chatter
    publishers:
      - node: talker
        type: std_msgs/msg/String
    subscriptions:
      - node: listener
        namespace: /demo
        type: std_msgs/msg/String
  - topic: /scan
    publishers:
      - node: lidar
        type: sensor_msgs/msg/LaserScan
        profile: sensor_data
    subscriptions:
      - node: mapper
        type: sensor_msgs/msg/LaserScan
        qos:
          history: keep_last
          depth: 10
          reliability: reliable
          durability: volatile
          liveliness: automatic
`

func TestLoadDescription(t *testing.T) {
	d, err := LoadDescription(strings.NewReader(sampleDescription))
	if err != nil {
		t.Fatalf("LoadDescription: %v", err)
	}
	if len(d.Topics) != 2 {
		t.Fatalf("Topics = %d, want 2", len(d.Topics))
	}
	if d.Topics[0].Name != "/chatter" || d.Topics[1].Name != "/scan" {
		t.Errorf("topic names = %q, %q", d.Topics[0].Name, d.Topics[1].Name)
	}
	if got := d.Topics[1].Publishers[0].Profile; got != "sensor_data" {
		t.Errorf("lidar profile = %q, want sensor_data", got)
	}
	sub := d.Topics[1].Subscriptions[0]
	if sub.QoS == nil || sub.QoS.Reliability != qos.ReliabilityReliable {
		t.Errorf("mapper qos = %+v, want explicit reliable block", sub.QoS)
	}
}

func TestLoadDescriptionUnknownField(t *testing.T) {
	_, err := LoadDescription(strings.NewReader(`
topics:
  - topic: /chatter
    publsihers:
      - node: talker
`))
	if err == nil {
		t.Fatal("misspelled key accepted")
	}
}

func TestLoadDescriptionFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.yaml")
	if err := os.WriteFile(path, []byte(sampleDescription), 0o644); err != nil {
		t.Fatal(err)
	}
	d, err := LoadDescriptionFile(path)
	if err != nil {
		t.Fatalf("LoadDescriptionFile: %v", err)
	}
	if len(d.Topics) != 2 {
		t.Errorf("Topics = %d, want 2", len(d.Topics))
	}

	if _, err := LoadDescriptionFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file did not error")
	}
}

func TestEndpointSpecResolve(t *testing.T) {
	reliable := qos.DefaultProfile()
	reliable.Reliability = qos.ReliabilityReliable

	tests := []struct {
		name    string
		spec    EndpointSpec
		want    qos.Profile
		wantErr bool
	}{
		{
			name: "default profile when nothing is given",
			spec: EndpointSpec{Node: "n"},
			want: qos.DefaultProfile(),
		},
		{
			name: "named preset",
			spec: EndpointSpec{Node: "n", Profile: "sensor_data"},
			want: qos.SensorDataProfile(),
		},
		{
			name: "explicit block wins over preset",
			spec: EndpointSpec{Node: "n", Profile: "sensor_data", QoS: &reliable},
			want: reliable,
		},
		{
			name:    "unknown preset",
			spec:    EndpointSpec{Node: "n", Profile: "sensors"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := tt.spec.resolve(rmw.EndpointPublisher)
			if tt.wantErr {
				if err == nil {
					t.Fatal("resolve succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("resolve: %v", err)
			}
			if info.QoS != tt.want {
				t.Errorf("QoS = %+v, want %+v", info.QoS, tt.want)
			}
			if info.NodeNamespace != "/" {
				t.Errorf("NodeNamespace = %q, want / default", info.NodeNamespace)
			}
			if info.Type != rmw.EndpointPublisher {
				t.Errorf("Type = %v, want publisher", info.Type)
			}
		})
	}
}

func TestDescriptionAnalyze(t *testing.T) {
	d, err := LoadDescription(strings.NewReader(sampleDescription))
	if err != nil {
		t.Fatal(err)
	}
	reports, err := d.Analyze()
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("reports = %d, want 2", len(reports))
	}
	// File order, not sorted.
	if reports[0].Topic != "/chatter" || reports[1].Topic != "/scan" {
		t.Errorf("topics = %s, %s, want file order", reports[0].Topic, reports[1].Topic)
	}
	// Default profiles on both sides leave liveliness unresolved, so
	// /chatter lands on warning, never error.
	if reports[0].Compatibility == qos.CompatibilityError {
		t.Errorf("/chatter = error: %+v", reports[0].Pairs)
	}
	// A best-effort sensor publisher cannot serve the reliable mapper.
	if reports[1].Compatibility != qos.CompatibilityError {
		t.Errorf("/scan = %v, want error", reports[1].Compatibility)
	}
}

func TestDescriptionAnalyzeUnknownPreset(t *testing.T) {
	d := &Description{Topics: []TopicSpec{{
		Name:          "/chatter",
		Subscriptions: []EndpointSpec{{Node: "listener", Profile: "bogus"}},
	}}}
	_, err := d.Analyze()
	if err == nil {
		t.Fatal("unknown preset accepted")
	}
	for _, want := range []string{"/chatter", "listener", "bogus"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}
