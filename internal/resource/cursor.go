package resource

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The page cursor is the identifier of the last document returned by
// the previous page, in its canonical hex form. Decoding validates
// syntax only; the query layer resolves the cursor's sort-key value.

// EncodeCursor returns the opaque cursor token for a document id.
func EncodeCursor(id string) string { return id }

// DecodeCursor validates an after_id token and returns the canonical
// identifier. Malformed tokens are a validation error.
func DecodeCursor(token string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(token)
	if err != nil {
		return "", Validationf("invalid after_id cursor: %q", token)
	}
	return oid.Hex(), nil
}
