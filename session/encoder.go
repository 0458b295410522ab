package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"time"

	"github.com/MrEthical07/goAuthClient/role"
)

// CurrentSchemaVersion is the first byte of every record written by Encode.
const CurrentSchemaVersion = 1

// Encode serializes s to the versioned binary record format.
func Encode(s *Session) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(1 + 1 + len(s.AccountID) + 1 + len(s.TokenType) + 2 + len(s.Token) + 1 + 16)

	buf.WriteByte(CurrentSchemaVersion)

	buf.WriteByte(byte(len(s.AccountID)))
	buf.WriteString(s.AccountID)

	buf.WriteByte(byte(len(s.TokenType)))
	buf.WriteString(s.TokenType)

	if err := binary.Write(&buf, binary.BigEndian, uint16(len(s.Token))); err != nil {
		return nil, err
	}
	buf.WriteString(s.Token)

	buf.WriteByte(s.Roles.Raw())

	if err := binary.Write(&buf, binary.BigEndian, unixMilli(s.CreatedAt)); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, unixMilli(s.ExpiresAt)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a record produced by Encode. Errors wrap ErrCorrupt.
func Decode(data []byte) (*Session, error) {
	s, err := decode(data)
	if err != nil {
		return nil, errors.Join(ErrCorrupt, err)
	}
	return s, nil
}

func decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != CurrentSchemaVersion {
		return nil, errors.New("unsupported session schema version")
	}

	s := &Session{}

	accountID, err := readShortString(reader)
	if err != nil {
		return nil, err
	}
	s.AccountID = accountID

	tokenType, err := readShortString(reader)
	if err != nil {
		return nil, err
	}
	s.TokenType = tokenType

	var tokenLen uint16
	if err := binary.Read(reader, binary.BigEndian, &tokenLen); err != nil {
		return nil, err
	}
	token := make([]byte, tokenLen)
	if _, err := io.ReadFull(reader, token); err != nil {
		return nil, err
	}
	s.Token = string(token)

	rawRoles, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	s.Roles = role.FromRaw(rawRoles)

	var created, expires int64
	if err := binary.Read(reader, binary.BigEndian, &created); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &expires); err != nil {
		return nil, err
	}
	s.CreatedAt = fromUnixMilli(created)
	s.ExpiresAt = fromUnixMilli(expires)

	if reader.Len() != 0 {
		return nil, errors.New("trailing bytes after session record")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func readShortString(r *bytes.Reader) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
