package codec

import "errors"

var (
	// ErrStructural marks wire text that is not a record at all: malformed
	// markup, an unknown root element, a root of the wrong kind or a missing
	// identifier.
	ErrStructural = errors.New("structural record error")

	// ErrRecordParse marks a well formed record with an invalid field value.
	// Such records are skipped, the transaction continues.
	ErrRecordParse = errors.New("record parse error")
)
