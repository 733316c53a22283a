package ledger

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const profileRecordVersionV1 = 1

var errProfileCorrupt = errors.New("profile record corrupt")

// EncodeProfile serializes a [Profile] into the versioned binary layout
// stored in Redis: version byte, big-endian RegisteredAt, uint16 nickname
// length, nickname bytes.
func EncodeProfile(p *Profile) ([]byte, error) {
	if p == nil {
		return nil, errors.New("nil profile")
	}
	if len(p.Nickname) > 65535 {
		return nil, errors.New("profile nickname too long")
	}

	var buf bytes.Buffer
	buf.WriteByte(profileRecordVersionV1)

	if err := binary.Write(&buf, binary.BigEndian, p.RegisteredAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(p.Nickname))); err != nil {
		return nil, err
	}
	buf.WriteString(p.Nickname)

	return buf.Bytes(), nil
}

// DecodeProfile parses a binary profile record produced by [EncodeProfile].
func DecodeProfile(data []byte) (*Profile, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, errProfileCorrupt
	}
	if version != profileRecordVersionV1 {
		return nil, errProfileCorrupt
	}

	p := &Profile{}
	if err := binary.Read(reader, binary.BigEndian, &p.RegisteredAt); err != nil {
		return nil, errProfileCorrupt
	}

	var nicknameLen uint16
	if err := binary.Read(reader, binary.BigEndian, &nicknameLen); err != nil {
		return nil, errProfileCorrupt
	}

	nickname := make([]byte, nicknameLen)
	if _, err := io.ReadFull(reader, nickname); err != nil {
		return nil, errProfileCorrupt
	}
	p.Nickname = string(nickname)

	if reader.Len() != 0 {
		return nil, errProfileCorrupt
	}

	return p, nil
}
