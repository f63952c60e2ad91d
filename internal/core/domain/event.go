package domain

import "strings"

// MinIOEvent represents a MinIO bucket notification
type MinIOEvent struct {
	EventName string `json:"EventName"`
	Key       string `json:"Key"`
	Records   []struct {
		EventName string `json:"eventName"`
		S3        struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key          string            `json:"key"`
				Size         int64             `json:"size"`
				ETag         string            `json:"eTag"`
				ContentType  string            `json:"contentType"`
				UserMetadata map[string]string `json:"userMetadata"`
			} `json:"object"`
		} `json:"s3"`
		EventTime string `json:"eventTime"`
	} `json:"Records"`
}

// EventType is a type that represents the type of an event
type EventType string

const (
	EventTypeObjectCreated EventType = "ObjectCreated"
	EventTypeUnknown       EventType = "Unknown"
)

// EventTypeFromName maps an S3 event name to an EventType
func EventTypeFromName(name string) EventType {
	if strings.HasPrefix(name, "s3:ObjectCreated:") {
		return EventTypeObjectCreated
	}
	return EventTypeUnknown
}

// UploadNotification is a struct that represents a storage upload notification
type UploadNotification struct {
	EventName    string
	EventType    EventType
	StorageName  string
	ObjectKey    string
	ObjectSize   int64
	ContentType  string
	UserMetadata map[string]string
}
