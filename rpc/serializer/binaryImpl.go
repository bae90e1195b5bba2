package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/tsched/rpc/common"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IRPCSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IRPCSerializer using a custom binary format
//
// Layout: MsgType (1 byte), flags (1 byte), then every present field in flag
// order. Strings and byte slices are prefixed with their length (uint32),
// lists with their element count (uint32).
type binarySerializerImpl struct {
}

// Bit flags to indicate which optional fields are present
const (
	hasInput    byte = 1 << 0
	hasFormat   byte = 1 << 1
	hasPolicy   byte = 1 << 2
	hasVerdicts byte = 1 << 3
	hasTrails   byte = 1 << 4
	hasCached   byte = 1 << 5
	hasErr      byte = 1 << 6
	hasMeta     byte = 1 << 7
)

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(msg common.Message) ([]byte, error) {
	w := binaryWriter{buf: make([]byte, 2, b.sizeBytes(msg))}

	// Write message type
	w.buf[0] = byte(msg.MsgType)

	// Initialize flags byte
	var flags byte = 0

	if msg.Input != nil {
		flags |= hasInput
		w.putBytes(msg.Input)
	}
	if msg.Format != "" {
		flags |= hasFormat
		w.putString(msg.Format)
	}
	if msg.Policy != "" {
		flags |= hasPolicy
		w.putString(msg.Policy)
	}
	if msg.Verdicts != nil {
		flags |= hasVerdicts
		w.putUint32(uint32(len(msg.Verdicts)))
		for _, v := range msg.Verdicts {
			w.putString(v)
		}
	}
	if msg.Trails != nil {
		flags |= hasTrails
		w.putUint32(uint32(len(msg.Trails)))
		for _, t := range msg.Trails {
			w.putString(t.ItemID)
			w.putUint32(uint32(len(t.Records)))
			for _, r := range t.Records {
				w.putString(r)
			}
		}
	}
	if msg.Cached {
		flags |= hasCached
	}
	if msg.Err != "" {
		flags |= hasErr
		w.putString(msg.Err)
	}
	if msg.Meta != nil {
		flags |= hasMeta
		w.putBytes(msg.Meta)
	}

	// Set flags byte after knowing which fields are present
	w.buf[1] = flags

	return w.buf, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, msg *common.Message) error {
	// Check minimum size (MsgType + flags)
	if len(data) < 2 {
		return fmt.Errorf("data too short for message header")
	}

	*msg = common.Message{MsgType: common.MessageType(data[0])}
	flags := data[1]
	r := binaryReader{data: data, pos: 2}

	var err error
	if flags&hasInput != 0 {
		if msg.Input, err = r.readBytes("input"); err != nil {
			return err
		}
	}
	if flags&hasFormat != 0 {
		if msg.Format, err = r.readString("format"); err != nil {
			return err
		}
	}
	if flags&hasPolicy != 0 {
		if msg.Policy, err = r.readString("policy"); err != nil {
			return err
		}
	}
	if flags&hasVerdicts != 0 {
		n, err := r.readCount("verdict count", 4)
		if err != nil {
			return err
		}
		msg.Verdicts = make([]string, n)
		for i := range msg.Verdicts {
			if msg.Verdicts[i], err = r.readString("verdict"); err != nil {
				return err
			}
		}
	}
	if flags&hasTrails != 0 {
		n, err := r.readCount("trail count", 8)
		if err != nil {
			return err
		}
		msg.Trails = make([]common.AuditTrail, n)
		for i := range msg.Trails {
			if msg.Trails[i].ItemID, err = r.readString("trail item id"); err != nil {
				return err
			}
			records, err := r.readCount("record count", 4)
			if err != nil {
				return err
			}
			if records == 0 {
				continue
			}
			msg.Trails[i].Records = make([]string, records)
			for j := range msg.Trails[i].Records {
				if msg.Trails[i].Records[j], err = r.readString("audit record"); err != nil {
					return err
				}
			}
		}
	}
	msg.Cached = flags&hasCached != 0
	if flags&hasErr != 0 {
		if msg.Err, err = r.readString("error"); err != nil {
			return err
		}
	}
	if flags&hasMeta != 0 {
		if msg.Meta, err = r.readBytes("meta"); err != nil {
			return err
		}
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(msg common.Message) int {
	// 1 byte for MsgType + 1 byte for flags
	size := 2

	if msg.Input != nil {
		size += 4 + len(msg.Input)
	}
	if msg.Format != "" {
		size += 4 + len(msg.Format)
	}
	if msg.Policy != "" {
		size += 4 + len(msg.Policy)
	}
	if msg.Verdicts != nil {
		size += 4
		for _, v := range msg.Verdicts {
			size += 4 + len(v)
		}
	}
	if msg.Trails != nil {
		size += 4
		for _, t := range msg.Trails {
			size += 4 + len(t.ItemID) + 4
			for _, r := range t.Records {
				size += 4 + len(r)
			}
		}
	}
	if msg.Err != "" {
		size += 4 + len(msg.Err)
	}
	if msg.Meta != nil {
		size += 4 + len(msg.Meta)
	}

	return size
}

// binaryWriter appends length prefixed values to buf
type binaryWriter struct {
	buf []byte
}

func (w *binaryWriter) putUint32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

func (w *binaryWriter) putString(s string) {
	w.putUint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *binaryWriter) putBytes(b []byte) {
	w.putUint32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

// binaryReader reads length prefixed values from data
type binaryReader struct {
	data []byte
	pos  int
}

func (r *binaryReader) readUint32(field string) (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("data too short for %s length", field)
	}
	v := binary.BigEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

// readCount reads an element count and rejects counts that cannot fit into the
// remaining data, given the minimal encoded size of one element
func (r *binaryReader) readCount(field string, minElemSize int) (int, error) {
	n, err := r.readUint32(field)
	if err != nil {
		return 0, err
	}
	if int64(n)*int64(minElemSize) > int64(len(r.data)-r.pos) {
		return 0, fmt.Errorf("data too short for %s %d", field, n)
	}
	return int(n), nil
}

func (r *binaryReader) readNext(field string) ([]byte, error) {
	n, err := r.readUint32(field)
	if err != nil {
		return nil, err
	}
	if r.pos+int(n) > len(r.data) {
		return nil, fmt.Errorf("data too short for %s data", field)
	}
	b := r.data[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return b, nil
}

func (r *binaryReader) readString(field string) (string, error) {
	b, err := r.readNext(field)
	return string(b), err
}

// readBytes returns a copy, so that data can be reused by the caller
func (r *binaryReader) readBytes(field string) ([]byte, error) {
	b, err := r.readNext(field)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}
