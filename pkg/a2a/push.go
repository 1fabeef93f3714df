package a2a

// AuthenticationInfo describes how a client should authenticate to a push
// notification callback URL, or how an agent expects to be authenticated
// against.
type AuthenticationInfo struct {
	Schemes     []string `json:"schemes"`
	Credentials string   `json:"credentials,omitempty"`
}

// PushNotificationConfig is the callback an agent invokes with task update
// payloads in lieu of the client keeping an SSE connection open.
type PushNotificationConfig struct {
	URL            string              `json:"url"`
	Token          string              `json:"token,omitempty"`
	Authentication *AuthenticationInfo `json:"authentication,omitempty"`
}

// TaskPushNotificationConfig associates a PushNotificationConfig with a
// specific task; it is both the tasks/pushNotification/set params and the
// tasks/pushNotification/get result.
type TaskPushNotificationConfig struct {
	ID                     string                 `json:"id"`
	PushNotificationConfig PushNotificationConfig `json:"pushNotificationConfig"`
}

func (TaskPushNotificationConfig) isResult() {}

func (TaskPushNotificationConfig) paramGlue() {}
