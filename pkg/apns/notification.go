package apns

import (
	"time"

	"github.com/sideshow/apns2"
)

// PushType is the apns-push-type header value.
type PushType string

const (
	PushTypeAlert        PushType = "alert"
	PushTypeBackground   PushType = "background"
	PushTypeVoIP         PushType = "voip"
	PushTypeComplication PushType = "complication"
	PushTypeFileProvider PushType = "fileprovider"
	PushTypeMDM          PushType = "mdm"
	PushTypeLiveActivity PushType = "liveactivity"
	PushTypeLocation     PushType = "location"
)

const (
	// PriorityHigh delivers immediately.
	PriorityHigh = apns2.PriorityHigh
	// PriorityLow lets the device batch delivery to save power.
	PriorityLow = apns2.PriorityLow
)

// Notification is one push to one device.
type Notification struct {
	DeviceToken string
	// Payload is the raw JSON body, sent as is.
	Payload  []byte
	PushType PushType

	// Optional per-call overrides. Zero values leave the APNs defaults.
	Expiration time.Time
	Priority   int
	CollapseID string
	// Topic overrides the configured topic.
	Topic string
	// APNsID correlates the request with the APNs response. Client.Send
	// generates one when empty.
	APNsID string
}

// Response is a notification accepted by APNs.
type Response struct {
	StatusCode int
	APNsID     string
}

func (n Notification) toAPNs(defaultTopic string) *apns2.Notification {
	topic := n.Topic
	if topic == "" {
		topic = defaultTopic
	}
	pushType := n.PushType
	if pushType == "" {
		pushType = PushTypeAlert
	}

	return &apns2.Notification{
		ApnsID:      n.APNsID,
		CollapseID:  n.CollapseID,
		DeviceToken: n.DeviceToken,
		Topic:       topic,
		Expiration:  n.Expiration,
		Priority:    n.Priority,
		Payload:     n.Payload,
		PushType:    apns2.EPushType(pushType),
	}
}
