package entity

import "time"

// ObjectType identifies the kind of monitored object.
type ObjectType int

const (
	ObjectTypeHost ObjectType = iota
	ObjectTypeService
)

// String returns the Icinga2 API type name.
func (t ObjectType) String() string {
	if t == ObjectTypeService {
		return "Service"
	}
	return "Host"
}

// hostStateLabels and serviceStateLabels map numeric state codes to their
// display labels. The reverse maps are derived in init so the two directions
// cannot drift apart.
var (
	hostStateLabels = map[int]string{
		0: "UP",
		1: "DOWN",
		2: "UNREACHABLE",
	}
	serviceStateLabels = map[int]string{
		0: "OK",
		1: "WARNING",
		2: "CRITICAL",
		3: "UNKNOWN",
	}

	hostStateCodes    = map[string]int{}
	serviceStateCodes = map[string]int{}
)

func init() {
	for code, label := range hostStateLabels {
		hostStateCodes[label] = code
	}
	for code, label := range serviceStateLabels {
		serviceStateCodes[label] = code
	}
}

// StateLabel returns the display label for a state code of the given type.
// Unknown codes render as "UNKNOWN".
func StateLabel(t ObjectType, state int) string {
	var label string
	var ok bool
	if t == ObjectTypeHost {
		label, ok = hostStateLabels[state]
	} else {
		label, ok = serviceStateLabels[state]
	}
	if !ok {
		return "UNKNOWN"
	}
	return label
}

// StateCode returns the numeric state code for a display label of the given
// type. The second return value reports whether the label is known.
func StateCode(t ObjectType, label string) (int, bool) {
	if t == ObjectTypeHost {
		code, ok := hostStateCodes[label]
		return code, ok
	}
	code, ok := serviceStateCodes[label]
	return code, ok
}

// StateCount returns the number of distinct states for the given type.
func StateCount(t ObjectType) int {
	if t == ObjectTypeHost {
		return len(hostStateLabels)
	}
	return len(serviceStateLabels)
}

// MonitoredObject is a read-only view of a host or service returned by the
// monitoring backend.
type MonitoredObject struct {
	Type     ObjectType
	Name     string
	HostName string // services only

	State           int
	Acknowledgement int
	DowntimeDepth   int
	LastCheckOutput string
	LastStateChange time.Time
}

// IsAcknowledged reports whether the object's problem has been acknowledged.
func (o *MonitoredObject) IsAcknowledged() bool {
	return o.Acknowledgement > 0
}

// InDowntime reports whether the object currently has at least one downtime.
func (o *MonitoredObject) InDowntime() bool {
	return o.DowntimeDepth > 0
}

// HasProblem reports whether the object is in a non-nominal state.
func (o *MonitoredObject) HasProblem() bool {
	return o.State != 0
}

// IsUnhandled reports whether the object has a problem that is neither
// acknowledged nor covered by a downtime.
func (o *MonitoredObject) IsUnhandled() bool {
	return o.HasProblem() && !o.IsAcknowledged() && !o.InDowntime()
}

// StateLabel returns the display label for the object's current state.
func (o *MonitoredObject) StateLabel() string {
	return StateLabel(o.Type, o.State)
}

// DisplayName returns the object identity for user-facing output, service
// objects qualified by their host.
func (o *MonitoredObject) DisplayName() string {
	if o.Type == ObjectTypeService {
		return o.HostName + " - " + o.Name
	}
	return o.Name
}
