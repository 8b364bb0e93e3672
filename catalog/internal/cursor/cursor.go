package cursor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Alturino/catalog/internal/errors"
)

// Cursor is the opaque resumable position of a listing or search query. It
// encodes the last-seen sort key under the (created_at, id) ordering; the
// next page fetches rows strictly after it. The same cursor against an
// unchanged data set yields the same page.
type Cursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        uuid.UUID `json:"id"`
}

func Encode(c Cursor) string {
	payload, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(payload)
}

// Decode rejects anything that does not round-trip from Encode. A malformed
// or tampered token fails instead of being silently reinterpreted.
func Decode(token string) (Cursor, error) {
	payload, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		err = fmt.Errorf("failed decoding cursor with error=%w", err)
		return Cursor{}, apperrors.Wrap(apperrors.KindInvalidCursor, err)
	}

	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.DisallowUnknownFields()
	c := Cursor{}
	if err := decoder.Decode(&c); err != nil {
		err = fmt.Errorf("failed unmarshaling cursor with error=%w", err)
		return Cursor{}, apperrors.Wrap(apperrors.KindInvalidCursor, err)
	}
	if decoder.More() {
		return Cursor{}, apperrors.ErrCursorInvalid
	}
	if c.ID == uuid.Nil || c.CreatedAt.IsZero() {
		return Cursor{}, apperrors.ErrCursorInvalid
	}
	return c, nil
}
