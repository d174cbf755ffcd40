// Package property builds 0xB1 property queries and parses their
// replies. Properties are identified by a 16-bit uuid rather than the
// fixed byte offsets the status payloads use, so capability bits that
// cannot be resolved from a 0xB5 record alone (silky cool, buzzer,
// self-clean, ...) are confirmed here instead.
package property

import (
	"encoding/binary"
	"fmt"

	"mideago/internal/crc8"
)

// Well-known property uuids, named the way the capability feature ids
// in ac/capability are. Most coincide with the 0xB5 feature id for the
// same function; twins and four-direction report under their own uuids
// instead.
const (
	UUIDVWind         uint16 = 0x0009
	UUIDHWind         uint16 = 0x000A
	UUIDHumidity      uint16 = 0x0015
	UUIDSilkyCool     uint16 = 0x0018
	UUIDSmartEye      uint16 = 0x0030
	UUIDWindOnMe      uint16 = 0x0032
	UUIDWindOffMe     uint16 = 0x0033
	UUIDSelfClean     uint16 = 0x0039
	UUIDBreezeAway    uint16 = 0x0042
	UUIDBreezeless    uint16 = 0x0043
	UUIDBuzzer        uint16 = 0x022C
	UUIDFourDirection uint16 = 0x0230
	UUIDTwins         uint16 = 0x0231
)

// Value is one decoded property in a 0xB1 reply.
type Value struct {
	UUID uint16
	Data []byte
}

// BuildQuery builds the 0xB1 payload (including leading id and
// trailing CRC-8) that requests the given property uuids.
func BuildQuery(uuids []uint16) []byte {
	buf := make([]byte, 0, 2+3*len(uuids)+1)
	buf = append(buf, 0xB1, byte(len(uuids)))
	for _, id := range uuids {
		var idBuf [2]byte
		binary.LittleEndian.PutUint16(idBuf[:], id)
		buf = append(buf, idBuf[0], idBuf[1], 0)
	}
	return append(buf, crc8.Checksum(buf))
}

// ParseReply parses a 0xB1 reply payload (leading id and trailing
// CRC-8 already stripped by the caller) into its property triples.
func ParseReply(body []byte) ([]Value, error) {
	if len(body) < 1 {
		return nil, fmt.Errorf("property: empty reply body")
	}
	count := int(body[0])
	pos := 1
	values := make([]Value, 0, count)
	for i := 0; i < count; i++ {
		if pos+3 > len(body) {
			return nil, fmt.Errorf("property: reply truncated at record %d", i)
		}
		uuid := binary.LittleEndian.Uint16(body[pos : pos+2])
		length := int(body[pos+2])
		pos += 3
		if pos+length > len(body) {
			return nil, fmt.Errorf("property: record %d (uuid 0x%04x) overruns reply", i, uuid)
		}
		values = append(values, Value{UUID: uuid, Data: append([]byte(nil), body[pos:pos+length]...)})
		pos += length
	}
	return values, nil
}

// Bool reports the boolean value of the first byte of a property's
// data, defaulting to false when the value is absent or empty.
func Bool(values []Value, uuid uint16) bool {
	for _, v := range values {
		if v.UUID == uuid && len(v.Data) > 0 {
			return v.Data[0] != 0
		}
	}
	return false
}
