package protocol

// Status is the outcome carried by every response.
type Status string

// Response statuses.
const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Fixed response messages.
const (
	MsgAuthenticated  = "Authenticated"
	MsgInvalidToken   = "Invalid token"
	MsgAuthRequired   = "Authentication required"
	MsgDeviceNotFound = "Device not found"
	invalidJSONPrefix = "Invalid JSON format: "
)

// Response answers exactly one inbound command.
type Response struct {
	Status   Status `json:"status"`
	DeviceID string `json:"device_id,omitempty"`
	Message  string `json:"message,omitempty"`
}

// OK reports a successful device command.
func OK(deviceID string) Response {
	return Response{Status: StatusOK, DeviceID: deviceID}
}

// Authenticated reports a successful auth command.
func Authenticated() Response {
	return Response{Status: StatusOK, Message: MsgAuthenticated}
}

// Error reports a failure. deviceID may be empty.
func Error(deviceID, message string) Response {
	return Response{Status: StatusError, DeviceID: deviceID, Message: message}
}

// InvalidJSON reports a message that could not be decoded.
func InvalidJSON(err error) Response {
	return Error("", invalidJSONPrefix+err.Error())
}
