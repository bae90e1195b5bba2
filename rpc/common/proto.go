package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// AuditTrail is the list of audit records of one data item.
type AuditTrail struct {
	ItemID  string   `json:"item_id"`
	Records []string `json:"records"`
}

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// Request fields
	Input  []byte `json:"input,omitempty"`  // Used for: Check (the input document)
	Format string `json:"format,omitempty"` // Used for: Check (text or yaml, empty means text)
	Policy string `json:"policy,omitempty"` // Used for: Check (noop or reset, empty means noop)

	// Response only fields
	Verdicts []string     `json:"verdicts,omitempty"` // Used for: Check responses, one line per plan
	Trails   []AuditTrail `json:"trails,omitempty"`   // Used for: Check responses, sorted by item id
	Cached   bool         `json:"cached,omitempty"`   // Used for: Check responses served from the result cache
	Err      string       `json:"err,omitempty"`      // Empty if no error, otherwise contains the error message

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Unused, can be used for additional Adapters
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewCheckRequest creates a new Check request
func NewCheckRequest(input []byte, format, policy string) *Message {
	return &Message{
		MsgType: MsgTCheck,
		Input:   input,
		Format:  format,
		Policy:  policy,
	}
}

// NewCheckResponse creates a new Check response
func NewCheckResponse(verdicts []string, trails []AuditTrail, cached bool, err error) *Message {
	msg := &Message{
		MsgType:  MsgTCheck,
		Verdicts: verdicts,
		Trails:   trails,
		Cached:   cached,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewPingRequest creates a new Ping request
func NewPingRequest() *Message {
	return &Message{MsgType: MsgTPing}
}

// NewPingResponse creates a new Ping response
func NewPingResponse() *Message {
	return &Message{MsgType: MsgTSuccess}
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTSuccess:
		return "success"
	case MsgTError:
		return "error"
	case MsgTCheck:
		return "check"
	case MsgTPing:
		return "ping"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	switch s {
	case "success":
		*t = MsgTSuccess
	case "error":
		*t = MsgTError
	case "check":
		*t = MsgTCheck
	case "ping":
		*t = MsgTPing
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// Scheduler operations

	MsgTCheck // Validate all schedule plans of an input document
	MsgTPing  // Liveness check
)
