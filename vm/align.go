package vm

import "github.com/kienanstewart/yactfr/decerr"

// alignHead advances the bit cursor to the next multiple of alignBits, if
// it isn't already there. Unlike every other kind of forward movement in
// this package, an alignment skip never touches the buffer window: the
// skipped bits are by definition never read, so there is nothing to
// refill for. alignBits of 0 or 1 is a no-op, matching an instruction
// that declared no alignment requirement.
func (v *Vm) alignHead(alignBits int) error {
	if alignBits <= 1 {
		return nil
	}
	cur := v.globalBitOffset()
	mask := uint64(alignBits) - 1
	aligned := (cur + mask) &^ mask
	if aligned == cur {
		return nil
	}
	if v.pos.hasContentLen && aligned > v.pos.pktStartBits+v.pos.contentLenBits {
		return decerr.New(decerr.KindCannotDecodeDataBeyondPacketContent, cur)
	}
	v.pos.headBits += aligned - cur
	return nil
}

// checkByteOrder enforces that a byte left partially read by one
// fixed-length read is finished, if at all, under the same byte order it
// was started with. It must be called with the bit offset the read is
// about to start at, before that read happens.
func (v *Vm) checkByteOrder(startBit uint64, lenBits int, bigEndian bool) error {
	if lenBits <= 0 {
		return nil
	}
	startByte := startBit / 8
	endBit := startBit + uint64(lenBits)
	if startBit%8 == 0 && endBit%8 == 0 {
		// Byte-aligned on both ends: nothing is left partially read,
		// whatever byte order this read used is irrelevant to the next one.
		v.pos.partialByte = false
		return nil
	}
	if v.pos.partialByte && v.pos.partialByteIdx == startByte && v.pos.partialBigEndian != bigEndian {
		return decerr.New(decerr.KindByteOrderChangeWithinByte, startBit)
	}
	if endBit%8 != 0 {
		v.pos.partialByte = true
		v.pos.partialByteIdx = (endBit - 1) / 8
		v.pos.partialBigEndian = bigEndian
	} else {
		v.pos.partialByte = false
	}
	return nil
}
