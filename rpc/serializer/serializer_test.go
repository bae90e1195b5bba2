package serializer

import (
	"testing"

	"github.com/ValentinKolb/tsched/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// Basic message with just a type
		{MsgType: common.MsgTSuccess},

		// Check request
		*common.NewCheckRequest([]byte("A;\nT1;\n1;\nS1 - r1(A)\n"), "text", "reset"),

		// Check response
		{
			MsgType:  common.MsgTCheck,
			Verdicts: []string{"S1-OK", "S2-ROLLBACK-3"},
			Trails: []common.AuditTrail{
				{ItemID: "A", Records: []string{"S1,read,0", "S2,write,1"}},
				{ItemID: "B"},
			},
			Cached: true,
		},

		// Error response
		*common.NewErrorResponse("line 4: invalid operation type \"x\""),

		// Message with all fields filled
		{
			MsgType:  common.MsgTCheck,
			Input:    []byte("items: [A]"),
			Format:   "yaml",
			Policy:   "noop",
			Verdicts: []string{"S1-OK"},
			Trails:   []common.AuditTrail{{ItemID: "A", Records: []string{"S1,read,0"}}},
			Cached:   true,
			Err:      "some error",
			Meta:     []byte("test-meta-data"),
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for i, msg := range testMessages() {
				data, err := serializer.Serialize(msg)
				require.NoError(t, err, "message %d", i)

				var result common.Message
				require.NoError(t, serializer.Deserialize(data, &result), "message %d", i)
				assert.Equal(t, msg, result, "message %d", i)
			}
		})
	}
}

// TestDeserializeOverwritesMessage makes sure a reused message does not keep stale fields
func TestDeserializeOverwritesMessage(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()
			data, err := serializer.Serialize(common.Message{MsgType: common.MsgTPing})
			require.NoError(t, err)

			msg := common.Message{
				MsgType:  common.MsgTCheck,
				Verdicts: []string{"S1-OK"},
				Cached:   true,
				Err:      "old",
			}
			require.NoError(t, serializer.Deserialize(data, &msg))
			assert.Equal(t, common.Message{MsgType: common.MsgTPing}, msg)
		})
	}
}

func TestBinaryRejectsTruncatedData(t *testing.T) {
	serializer := NewBinarySerializer()
	full, err := serializer.Serialize(testMessages()[4])
	require.NoError(t, err)

	for n := 0; n < len(full); n++ {
		var msg common.Message
		assert.Error(t, serializer.Deserialize(full[:n], &msg), "prefix of %d bytes", n)
	}
}

func TestBinaryRejectsHugeCounts(t *testing.T) {
	// check message with the verdict flag and a count of 2^32-1 but no data
	data := []byte{byte(common.MsgTCheck), hasVerdicts, 0xff, 0xff, 0xff, 0xff}
	var msg common.Message
	assert.ErrorContains(t, NewBinarySerializer().Deserialize(data, &msg), "data too short")
}

func TestNew(t *testing.T) {
	for _, name := range []string{"json", "gob", "binary"} {
		s, err := New(name)
		require.NoError(t, err)
		assert.NotNil(t, s)
	}
	_, err := New("xml")
	assert.Error(t, err)
}
