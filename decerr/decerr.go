// Package decerr defines the closed set of errors a [*vm.Vm] can return
// while decoding. Every error carries the bit offset, from the beginning
// of the element sequence, at which the problem was found, the way
// trace.parser's errors carry a byte offset ("failed to read trace at
// offset 0x%x: ...").
package decerr

import "fmt"

// Kind identifies which of the closed set of decoding failures occurred.
type Kind int

const (
	KindPrematureEndOfData Kind = iota
	KindCannotDecodeDataBeyondPacketContent
	KindExpectedPacketTotalLengthBitsNotMultipleOfEight
	KindExpectedPacketContentLengthBitsNotMultipleOfEight
	KindExpectedPacketTotalLengthLessThanExpectedPacketContentLength
	KindExpectedPacketContentLengthLessThanOffsetInPacketContent
	KindExpectedPacketTotalLengthLessThanOffsetInPacket
	KindByteOrderChangeWithinByte
	KindUnknownDataStreamType
	KindUnknownEventRecordType
	KindInvalidVariantSignedSelectorValue
	KindInvalidVariantUnsignedSelectorValue
)

func (k Kind) String() string {
	switch k {
	case KindPrematureEndOfData:
		return "premature end of data"
	case KindCannotDecodeDataBeyondPacketContent:
		return "cannot decode data beyond packet content"
	case KindExpectedPacketTotalLengthBitsNotMultipleOfEight:
		return "expected packet total length is not a multiple of 8 bits"
	case KindExpectedPacketContentLengthBitsNotMultipleOfEight:
		return "expected packet content length is not a multiple of 8 bits"
	case KindExpectedPacketTotalLengthLessThanExpectedPacketContentLength:
		return "expected packet total length is less than expected packet content length"
	case KindExpectedPacketContentLengthLessThanOffsetInPacketContent:
		return "expected packet content length is less than the current offset in the packet content"
	case KindExpectedPacketTotalLengthLessThanOffsetInPacket:
		return "expected packet total length is less than the current offset in the packet"
	case KindByteOrderChangeWithinByte:
		return "byte order changed in the middle of a byte"
	case KindUnknownDataStreamType:
		return "unknown data stream type"
	case KindUnknownEventRecordType:
		return "unknown event record type"
	case KindInvalidVariantSignedSelectorValue:
		return "invalid variant signed selector value"
	case KindInvalidVariantUnsignedSelectorValue:
		return "invalid variant unsigned selector value"
	default:
		return "unknown decoding error"
	}
}

// Error is the concrete error type returned by the vm package. It
// satisfies error, and also errors.Is against the Err* sentinels below via
// Unwrap-free identity comparison on Kind (see Is).
type Error struct {
	Kind      Kind
	OffsetBits uint64

	// ID carries the offending data stream/event record type ID for
	// KindUnknownDataStreamType/KindUnknownEventRecordType, or the
	// offending selector value for the two invalid-variant-selector
	// kinds (reinterpreted as uint64 for unsigned selectors).
	ID int64
}

func (e *Error) Error() string {
	return fmt.Sprintf("decode error at bit offset %d: %s (id=%d)", e.OffsetBits, e.Kind, e.ID)
}

// Is reports whether target is a sentinel for the same Kind, so that
// callers can write errors.Is(err, decerr.ErrPrematureEndOfData) without
// caring about the offset or ID the concrete error carries.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.OffsetBits == 0 && t.ID == 0 && t.Kind == e.Kind
}

// New builds a decoding error of the given kind at the given bit offset.
func New(kind Kind, offsetBits uint64) *Error {
	return &Error{Kind: kind, OffsetBits: offsetBits}
}

// WithID is New with an attached ID/value, for the kinds that carry one.
func WithID(kind Kind, offsetBits uint64, id int64) *Error {
	return &Error{Kind: kind, OffsetBits: offsetBits, ID: id}
}

// Sentinels usable with errors.Is. They carry no offset/ID: Error.Is treats
// a zero-valued counterpart as "match on Kind alone".
var (
	ErrPrematureEndOfData                     = &Error{Kind: KindPrematureEndOfData}
	ErrCannotDecodeDataBeyondPacketContent    = &Error{Kind: KindCannotDecodeDataBeyondPacketContent}
	ErrExpectedPacketTotalLengthBitsNotMultipleOfEight    = &Error{Kind: KindExpectedPacketTotalLengthBitsNotMultipleOfEight}
	ErrExpectedPacketContentLengthBitsNotMultipleOfEight  = &Error{Kind: KindExpectedPacketContentLengthBitsNotMultipleOfEight}
	ErrExpectedPacketTotalLengthLessThanExpectedPacketContentLength = &Error{Kind: KindExpectedPacketTotalLengthLessThanExpectedPacketContentLength}
	ErrExpectedPacketContentLengthLessThanOffsetInPacketContent     = &Error{Kind: KindExpectedPacketContentLengthLessThanOffsetInPacketContent}
	ErrExpectedPacketTotalLengthLessThanOffsetInPacket = &Error{Kind: KindExpectedPacketTotalLengthLessThanOffsetInPacket}
	ErrByteOrderChangeWithinByte   = &Error{Kind: KindByteOrderChangeWithinByte}
	ErrUnknownDataStreamType       = &Error{Kind: KindUnknownDataStreamType}
	ErrUnknownEventRecordType      = &Error{Kind: KindUnknownEventRecordType}
	ErrInvalidVariantSignedSelectorValue   = &Error{Kind: KindInvalidVariantSignedSelectorValue}
	ErrInvalidVariantUnsignedSelectorValue = &Error{Kind: KindInvalidVariantUnsignedSelectorValue}
)
