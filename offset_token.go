package persistpager

import (
	"encoding/base64"
	"fmt"
	"strconv"
)

var _encoder = base64.RawURLEncoding

// OffsetToken marks a position in a result set for resumable enumeration.
// Its string form is the base64url encoded decimal offset.
type OffsetToken struct {
	offset int
}

func NewOffsetToken(offset int) *OffsetToken {
	return &OffsetToken{
		offset: offset,
	}
}

// DecodeOffsetToken attempts to parse a base64-encoded string into *OffsetToken.
// An empty string decodes to a nil token, the start of the result set.
func DecodeOffsetToken(b64String string) (*OffsetToken, error) {
	if len(b64String) == 0 {
		return nil, nil
	}

	offsetBytes, err := _encoder.DecodeString(b64String)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 encoded offset token: %w", err)
	}

	offset, err := strconv.Atoi(string(offsetBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode offset token value: %w", err)
	}

	if offset < 0 {
		return nil, fmt.Errorf("negative offset token value %d", offset)
	}

	return &OffsetToken{
		offset: offset,
	}, nil
}

// String - implements fmt.Stringer.
func (t *OffsetToken) String() string {
	if t == nil || t.offset == 0 {
		return ""
	}

	return _encoder.EncodeToString([]byte(strconv.Itoa(t.offset)))
}

// IsEmpty reports whether the token points at the start of the result set.
func (t *OffsetToken) IsEmpty() bool {
	return t == nil || t.offset == 0
}

// GetOffset returns the numeric offset value.
func (t *OffsetToken) GetOffset() int {
	if t != nil {
		return t.offset
	}

	return 0
}

// WithOffset sets the numeric offset value and returns the token.
func (t *OffsetToken) WithOffset(offset int) *OffsetToken {
	if t == nil {
		t = new(OffsetToken)
	}

	t.offset = offset

	return t
}

var _ fmt.Stringer = (*OffsetToken)(nil)
