package vm

import "github.com/kienanstewart/yactfr/decerr"

// window is the VM's single buffer view into the data source, spec §4.1's
// "buffer window": a run of bytes starting at some global byte offset.
// Unlike the C++ original, window never needs to survive a position
// save/restore (Position never points into it — see Vm.SavePosition), so it
// lives on the Vm itself, not inside Position.
type window struct {
	data      []byte
	startByte uint64
}

// maxStraddleBytes bounds how many bytes a single fixed-length read can
// ever need: a read of up to 64 bits, misaligned by up to 7 bits, never
// spans more than 9 bytes.
const maxStraddleBytes = 9

// ensureBits makes sure the window covers the lenBits-wide span starting at
// globalBit, pulling a fresh window from the data source if not, and
// failing if the source can't provide enough bytes or the span would run
// past the packet's expected content length.
func (v *Vm) ensureBits(globalBit, lenBits uint64) error {
	if v.pos.hasContentLen {
		pktContentEndBit := v.pos.pktStartBits + v.pos.contentLenBits
		if globalBit+lenBits > pktContentEndBit {
			return decerr.New(decerr.KindCannotDecodeDataBeyondPacketContent, globalBit)
		}
	}

	winStartBit := v.win.startByte * 8
	winEndBit := winStartBit + uint64(len(v.win.data))*8
	if v.win.data != nil && globalBit >= winStartBit && globalBit+lenBits <= winEndBit {
		return nil
	}

	startByte := globalBit / 8
	endByte := (globalBit + lenBits + 7) / 8
	hint := int(endByte - startByte)
	data, ok := v.src.Data(startByte, hint)
	if !ok || uint64(len(data))*8 < (globalBit+lenBits)-startByte*8 {
		return decerr.New(decerr.KindPrematureEndOfData, globalBit)
	}
	v.win.data = data
	v.win.startByte = startByte
	return nil
}

// localBit returns the bit offset of globalBit within the current
// window, valid only immediately after a successful ensureBits call for a
// span covering it.
func (v *Vm) localBit(globalBit uint64) uint {
	return uint(globalBit - v.win.startByte*8)
}
