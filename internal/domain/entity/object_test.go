package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateLabel(t *testing.T) {
	assert.Equal(t, "UP", StateLabel(ObjectTypeHost, 0))
	assert.Equal(t, "DOWN", StateLabel(ObjectTypeHost, 1))
	assert.Equal(t, "UNREACHABLE", StateLabel(ObjectTypeHost, 2))
	assert.Equal(t, "UNKNOWN", StateLabel(ObjectTypeHost, 99))

	assert.Equal(t, "OK", StateLabel(ObjectTypeService, 0))
	assert.Equal(t, "WARNING", StateLabel(ObjectTypeService, 1))
	assert.Equal(t, "CRITICAL", StateLabel(ObjectTypeService, 2))
	assert.Equal(t, "UNKNOWN", StateLabel(ObjectTypeService, 3))
}

func TestStateCode_RoundTrip(t *testing.T) {
	for _, typ := range []ObjectType{ObjectTypeHost, ObjectTypeService} {
		for code := 0; code < StateCount(typ); code++ {
			got, ok := StateCode(typ, StateLabel(typ, code))
			assert.True(t, ok)
			assert.Equal(t, code, got)
		}
	}

	_, ok := StateCode(ObjectTypeHost, "CRITICAL")
	assert.False(t, ok)
}

func TestMonitoredObject_IsUnhandled(t *testing.T) {
	obj := &MonitoredObject{Type: ObjectTypeHost, State: 1}
	assert.True(t, obj.IsUnhandled())

	obj.Acknowledgement = 1
	assert.False(t, obj.IsUnhandled())

	obj.Acknowledgement = 0
	obj.DowntimeDepth = 2
	assert.False(t, obj.IsUnhandled())

	healthy := &MonitoredObject{Type: ObjectTypeHost, State: 0}
	assert.False(t, healthy.IsUnhandled())
}

func TestMonitoredObject_DisplayName(t *testing.T) {
	host := &MonitoredObject{Type: ObjectTypeHost, Name: "web01"}
	assert.Equal(t, "web01", host.DisplayName())

	svc := &MonitoredObject{Type: ObjectTypeService, Name: "http", HostName: "web01"}
	assert.Equal(t, "web01 - http", svc.DisplayName())
}
