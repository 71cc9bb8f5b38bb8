package vm

import (
	"bytes"

	"github.com/kienanstewart/yactfr/decerr"
	"github.com/kienanstewart/yactfr/elem"
	"github.com/kienanstewart/yactfr/internal/bitint"
	"github.com/kienanstewart/yactfr/proc"
)

func (v *Vm) stateExecInstr() (bool, bool, error) {
	if len(v.pos.stack) == 0 {
		return false, false, decerr.New(decerr.KindPrematureEndOfData, v.globalBitOffset())
	}
	top := v.topFrame()
	if top.isArray && top.remElems == 0 {
		textBytes := top.textBytes
		v.popFrame()
		v.pos.elem = elem.Element{Kind: elem.KindEnd, BitOffset: v.globalBitOffset(), Bytes: textBytes}
		return true, false, nil
	}
	if top.idx >= len(top.proc) {
		return false, false, decerr.New(decerr.KindPrematureEndOfData, v.globalBitOffset())
	}
	instr := top.proc[top.idx]
	top.idx++
	return v.execInstr(instr)
}

func (v *Vm) execInstr(instr proc.Instr) (bool, bool, error) {
	switch ins := instr.(type) {
	case proc.ReadFixedLenUInt:
		return v.execReadFixedLenUInt(ins)
	case proc.ReadFixedLenSInt:
		return v.execReadFixedLenSInt(ins)
	case proc.ReadFixedLenFloat:
		return v.execReadFixedLenFloat(ins)
	case proc.ReadFixedLenBitArray:
		return v.execReadFixedLenBitArray(ins)
	case proc.ReadFixedLenBool:
		return v.execReadFixedLenBool(ins)
	case proc.ReadVlqUInt:
		return v.execReadVlqUInt(ins)
	case proc.ReadVlqSInt:
		return v.execReadVlqSInt(ins)
	case proc.ReadNullTerminatedStr:
		return v.execReadNullTerminatedStr(ins)

	case proc.BeginReadScope:
		if err := v.alignHead(ins.AlignBits); err != nil {
			return false, false, err
		}
		v.pushFrame(ins.Sub)
		return false, false, nil
	case proc.EndReadScope:
		v.popFrame()
		return false, false, nil

	case proc.BeginReadStruct:
		if err := v.alignHead(ins.AlignBits); err != nil {
			return false, false, err
		}
		v.pushFrame(ins.Sub)
		v.pos.elem = elem.Element{Kind: elem.KindStructureBeginning, Name: ins.Name, BitOffset: v.globalBitOffset()}
		return true, false, nil
	case proc.EndReadStruct:
		v.popFrame()
		v.pos.elem = elem.Element{Kind: elem.KindEnd, BitOffset: v.globalBitOffset()}
		return true, false, nil

	case proc.BeginReadStaticArray:
		if err := v.alignHead(ins.AlignBits); err != nil {
			return false, false, err
		}
		v.pushArrayFrame(ins.Sub, ins.Len)
		v.pos.elem = elem.Element{Kind: elem.KindStaticArrayBeginning, Name: ins.Name, Len: ins.Len, BitOffset: v.globalBitOffset()}
		return true, false, nil
	case proc.EndReadStaticArray:
		v.completeArrayPass()
		return false, false, nil

	case proc.BeginReadDynArray:
		if err := v.alignHead(ins.AlignBits); err != nil {
			return false, false, err
		}
		n := v.pos.savedVals[ins.LenValIdx]
		v.pushArrayFrame(ins.Sub, n)
		v.pos.elem = elem.Element{Kind: elem.KindDynamicArrayBeginning, Name: ins.Name, Len: n, BitOffset: v.globalBitOffset()}
		return true, false, nil
	case proc.EndReadDynArray:
		v.completeArrayPass()
		return false, false, nil

	case proc.BeginReadStaticTextArray:
		if err := v.alignHead(ins.AlignBits); err != nil {
			return false, false, err
		}
		return v.execBeginTextArray(ins.Name, ins.Len, elem.KindStaticTextArrayBeginning)
	case proc.EndReadStaticTextArray:
		// stReadSubstr already popped the text array frame and emitted
		// its End element; this marker is a no-op.
		return false, false, nil
	case proc.BeginReadDynTextArray:
		if err := v.alignHead(ins.AlignBits); err != nil {
			return false, false, err
		}
		n := v.pos.savedVals[ins.LenValIdx]
		return v.execBeginTextArray(ins.Name, n, elem.KindDynamicTextArrayBeginning)
	case proc.EndReadDynTextArray:
		// See EndReadStaticTextArray.
		return false, false, nil

	case proc.BeginReadVariantSignedSel:
		return v.execBeginReadVariantSigned(ins)
	case proc.BeginReadVariantUnsignedSel:
		return v.execBeginReadVariantUnsigned(ins)
	case proc.EndReadVariant:
		v.popFrame()
		v.pos.elem = elem.Element{Kind: elem.KindEnd, BitOffset: v.globalBitOffset()}
		return true, false, nil

	case proc.BeginReadOptionalBoolSel:
		sel := v.pos.savedVals[ins.SelValIdx] != 0
		if !sel {
			return false, false, nil
		}
		v.pushFrame(ins.Sub)
		v.pos.elem = elem.Element{Kind: elem.KindOptionalWithBooleanSelectorBeginning, Name: ins.Name, BitOffset: v.globalBitOffset()}
		return true, false, nil
	case proc.BeginReadOptionalUIntSel:
		return v.execBeginReadOptionalUIntSel(ins)
	case proc.BeginReadOptionalSIntSel:
		return v.execBeginReadOptionalSIntSel(ins)
	case proc.EndReadOptional:
		v.popFrame()
		v.pos.elem = elem.Element{Kind: elem.KindEnd, BitOffset: v.globalBitOffset()}
		return true, false, nil

	case proc.BeginReadUUIDArray:
		if err := v.alignHead(ins.AlignBits); err != nil {
			return false, false, err
		}
		v.pos.uuidIdx = 0
		v.pos.state = stReadUUIDByte
		return false, false, nil
	case proc.EndReadUUIDArray:
		// BeginReadUUIDArray's sub-state machine already emitted the
		// TraceTypeUUID element; this marker is a no-op.
		return false, false, nil

	case proc.SaveVal:
		v.pos.savedVals[ins.ValIdx] = v.pos.lastVal
		return false, false, nil
	case proc.SetCurrentID:
		v.pos.curID = v.pos.lastVal
		v.pos.hasCurID = true
		return false, false, nil
	case proc.SetDst:
		return v.execSetDst()
	case proc.SetErt:
		return v.execSetErt()
	case proc.SetPktTotalLen:
		return false, false, v.setPktTotalLen()
	case proc.SetPktContentLen:
		return false, false, v.setPktContentLen()
	case proc.SetPktMagicNumber:
		v.pos.magicNumber = uint32(v.pos.lastVal)
		v.pos.hasMagicNumber = true
		v.pos.elem = elem.Element{Kind: elem.KindPacketMagicNumber, MagicNumber: v.pos.magicNumber, BitOffset: v.globalBitOffset()}
		return true, false, nil
	case proc.SetPktOriginIndex:
		v.pos.originIndex = v.pos.lastVal
		v.pos.hasOriginIndex = true
		return false, false, nil
	case proc.SetDsID:
		v.pos.dsID = v.pos.lastVal
		v.pos.hasDsID = true
		return false, false, nil
	case proc.SetDsInfo:
		v.pos.elem = elem.Element{Kind: elem.KindDataStreamInfo, DataStreamID: v.pos.dsID, HasID: v.pos.hasDsID, BitOffset: v.globalBitOffset()}
		return true, false, nil
	case proc.SetPktInfo:
		v.pos.elem = elem.Element{
			Kind:                 elem.KindPacketInfo,
			HasLens:              v.pos.hasTotalLen && v.pos.hasContentLen,
			PacketTotalLenBits:   v.pos.totalLenBits,
			PacketContentLenBits: v.pos.contentLenBits,
			ClockCycles:          v.pos.defClk.cur,
			HasClock:             v.pos.defClk.set,
			BitOffset:            v.globalBitOffset(),
		}
		return true, false, nil
	case proc.SetErInfo:
		id := uint64(0)
		has := v.pos.curErt != nil
		if has {
			id = v.pos.curErt.ID
		}
		v.pos.elem = elem.Element{Kind: elem.KindEventRecordInfo, EventRecordTypeID: id, HasID: has, BitOffset: v.globalBitOffset()}
		return true, false, nil
	case proc.UpdateDefClk:
		v.pos.defClk.update(ins.LenBits, v.pos.lastVal)
		v.pos.elem = elem.Element{Kind: elem.KindDefaultClockValue, ClockCycles: v.pos.defClk.cur, BitOffset: v.globalBitOffset()}
		if v.pos.curDst != nil && v.pos.curDst.DefaultClock != nil {
			v.pos.elem.ClockName = v.pos.curDst.DefaultClock.Name
		}
		return true, false, nil

	case proc.EndPreambleProc:
		v.popFrame()
		if v.pos.curDst == nil {
			v.pos.curDst = v.pktProc.TraceType.DefaultDataStreamType
		}
		if v.pos.curDst == nil {
			return false, false, decerr.WithID(decerr.KindUnknownDataStreamType, v.globalBitOffset(), int64(v.pos.dsID))
		}
		v.pushFrame(v.pos.curDst.PktPreambleProc)
		return false, false, nil
	case proc.EndDsPktPreambleProc:
		v.popFrame()
		v.pos.state = stBeginPktContent
		return false, false, nil
	case proc.EndDsErPreambleProc:
		v.popFrame()
		if v.pos.curErt == nil {
			v.pos.curErt = v.pos.curDst.DefaultEventRecordType
		}
		if v.pos.curErt == nil {
			return false, false, decerr.WithID(decerr.KindUnknownEventRecordType, v.globalBitOffset(), int64(v.pos.curID))
		}
		v.pushFrame(v.pos.curErt.Proc)
		return false, false, nil
	case proc.EndErProc:
		v.popFrame()
		v.pos.curErt = nil
		v.pos.hasCurID = false
		v.pos.state = stEndEr
		return false, false, nil
	default:
		return false, false, decerr.New(decerr.KindPrematureEndOfData, v.globalBitOffset())
	}
}

// completeArrayPass finishes one traversal of an array's element
// subprocedure. If more elements remain it rewinds the frame's cursor to
// run the subprocedure again; otherwise it leaves remElems at zero for
// stateExecInstr's top-of-frame check to pop and emit End on the next
// step.
func (v *Vm) completeArrayPass() {
	top := v.topFrame()
	top.remElems--
	if top.remElems > 0 {
		top.idx = 0
	}
}

// execBeginTextArray emits the text array's Begin element and hands off
// to stReadSubstr to refill its content a chunk at a time, rather than
// pulling the whole n-byte array through ensureBits in one shot: a Source
// is only ever asked for up to 9 bytes at a time (see maxStraddleBytes),
// matching every other read in this package and, in particular, the
// fixed 9-byte scratch buffer datasource.ReaderAt reads into.
func (v *Vm) execBeginTextArray(name string, n uint64, kind elem.Kind) (bool, bool, error) {
	startBit := v.globalBitOffset()
	v.pushTextArrayFrame(n)
	v.pos.state = stReadSubstr
	v.pos.elem = elem.Element{Kind: kind, Name: name, Len: n, BitOffset: startBit}
	return true, false, nil
}

// stateReadSubstr refills a text array's content up to maxStraddleBytes
// at a time, spec §4.4's ReadSubstr: each refill emits one Substring
// element covering exactly the bytes just read, and the frame's
// accumulated bytes are only assembled into the final End element once
// every byte has been read — the same discipline stateReadSubstrUntilNull
// already applies to null-terminated strings, minus the search for a
// terminator.
func (v *Vm) stateReadSubstr() (bool, bool, error) {
	top := v.topFrame()
	if top.remElems == 0 {
		textBytes := top.textBytes
		v.popFrame()
		v.pos.state = stExecInstr
		v.pos.elem = elem.Element{Kind: elem.KindEnd, BitOffset: v.globalBitOffset(), Bytes: textBytes}
		return true, false, nil
	}
	startBit := v.globalBitOffset()
	n := top.remElems
	if n > maxStraddleBytes {
		n = maxStraddleBytes
	}
	if err := v.ensureBits(startBit, n*8); err != nil {
		return false, false, err
	}
	local := v.localBit(startBit) / 8
	chunk := append([]byte(nil), v.win.data[local:local+uint(n)]...)
	v.pos.headBits += n * 8
	top.textBytes = append(top.textBytes, chunk...)
	top.remElems -= n
	v.pos.elem = elem.Element{Kind: elem.KindSubstring, Bytes: chunk, BitOffset: startBit}
	return true, false, nil
}

func (v *Vm) execSetDst() (bool, bool, error) {
	tt := v.pktProc.TraceType
	if !v.pos.hasCurID {
		v.pos.curDst = tt.DefaultDataStreamType
	} else {
		v.pos.curDst = tt.DataStreamTypes[v.pos.curID]
	}
	v.pos.hasCurID = false
	if v.pos.curDst == nil {
		return false, false, decerr.WithID(decerr.KindUnknownDataStreamType, v.globalBitOffset(), int64(v.pos.curID))
	}
	return false, false, nil
}

func (v *Vm) execSetErt() (bool, bool, error) {
	dst := v.pos.curDst
	if !v.pos.hasCurID {
		v.pos.curErt = dst.DefaultEventRecordType
	} else {
		v.pos.curErt = dst.EventRecordTypes[v.pos.curID]
	}
	v.pos.hasCurID = false
	if v.pos.curErt == nil {
		return false, false, decerr.WithID(decerr.KindUnknownEventRecordType, v.globalBitOffset(), int64(v.pos.curID))
	}
	return false, false, nil
}

func (v *Vm) execBeginReadVariantSigned(ins proc.BeginReadVariantSignedSel) (bool, bool, error) {
	sel := int64(v.pos.savedVals[ins.SelValIdx])
	for _, r := range ins.Ranges {
		if sel >= r.Lo && sel <= r.Hi {
			v.pushFrame(r.Sub)
			v.pos.elem = elem.Element{Kind: elem.KindVariantWithSignedSelectorBeginning, Name: ins.Name, Int: sel, BitOffset: v.globalBitOffset()}
			return true, false, nil
		}
	}
	return false, false, decerr.WithID(decerr.KindInvalidVariantSignedSelectorValue, v.globalBitOffset(), sel)
}

func (v *Vm) execBeginReadVariantUnsigned(ins proc.BeginReadVariantUnsignedSel) (bool, bool, error) {
	sel := v.pos.savedVals[ins.SelValIdx]
	for _, r := range ins.Ranges {
		if sel >= uint64(r.Lo) && sel <= uint64(r.Hi) {
			v.pushFrame(r.Sub)
			v.pos.elem = elem.Element{Kind: elem.KindVariantWithUnsignedSelectorBeginning, Name: ins.Name, Uint: sel, BitOffset: v.globalBitOffset()}
			return true, false, nil
		}
	}
	return false, false, decerr.WithID(decerr.KindInvalidVariantUnsignedSelectorValue, v.globalBitOffset(), int64(sel))
}

// execBeginReadOptionalUIntSel reads Sub only if the previously saved
// unsigned selector value falls within one of ins.Ranges; otherwise it
// produces no element at all, matching BeginReadOptionalBoolSel's
// "absent" behavior rather than failing the way a variant's unmatched
// selector does (an optional's ranges are a presence test, not an
// exhaustive partition).
func (v *Vm) execBeginReadOptionalUIntSel(ins proc.BeginReadOptionalUIntSel) (bool, bool, error) {
	sel := v.pos.savedVals[ins.SelValIdx]
	for _, r := range ins.Ranges {
		if sel >= uint64(r.Lo) && sel <= uint64(r.Hi) {
			v.pushFrame(ins.Sub)
			v.pos.elem = elem.Element{Kind: elem.KindOptionalWithUnsignedIntegerSelectorBeginning, Name: ins.Name, Uint: sel, BitOffset: v.globalBitOffset()}
			return true, false, nil
		}
	}
	return false, false, nil
}

// execBeginReadOptionalSIntSel is execBeginReadOptionalUIntSel's
// signed-selector counterpart.
func (v *Vm) execBeginReadOptionalSIntSel(ins proc.BeginReadOptionalSIntSel) (bool, bool, error) {
	sel := int64(v.pos.savedVals[ins.SelValIdx])
	for _, r := range ins.Ranges {
		if sel >= r.Lo && sel <= r.Hi {
			v.pushFrame(ins.Sub)
			v.pos.elem = elem.Element{Kind: elem.KindOptionalWithSignedIntegerSelectorBeginning, Name: ins.Name, Int: sel, BitOffset: v.globalBitOffset()}
			return true, false, nil
		}
	}
	return false, false, nil
}

func (v *Vm) execReadFixedLenUInt(ins proc.ReadFixedLenUInt) (bool, bool, error) {
	if err := v.alignHead(ins.AlignBits); err != nil {
		return false, false, err
	}
	startBit := v.globalBitOffset()
	if err := v.checkByteOrder(startBit, ins.LenBits, ins.BigEndian); err != nil {
		return false, false, err
	}
	if err := v.ensureBits(startBit, uint64(ins.LenBits)); err != nil {
		return false, false, err
	}
	val := bitint.ReadUint(v.win.data, v.localBit(startBit), uint(ins.LenBits), ins.BigEndian)
	v.pos.headBits += uint64(ins.LenBits)
	v.pos.lastVal = val
	v.pos.lastValSigned = int64(val)
	if ins.SaveAsVal {
		v.pos.savedVals[ins.SaveValIdx] = val
	}
	kind := elem.KindUnsignedInteger
	if ins.IsEnum {
		kind = elem.KindUnsignedEnumeration
	}
	v.pos.elem = elem.Element{Kind: kind, Name: ins.Name, Uint: val, LenBits: ins.LenBits, Base: ins.Base, BitOffset: startBit}
	return true, false, nil
}

func (v *Vm) execReadFixedLenSInt(ins proc.ReadFixedLenSInt) (bool, bool, error) {
	if err := v.alignHead(ins.AlignBits); err != nil {
		return false, false, err
	}
	startBit := v.globalBitOffset()
	if err := v.checkByteOrder(startBit, ins.LenBits, ins.BigEndian); err != nil {
		return false, false, err
	}
	if err := v.ensureBits(startBit, uint64(ins.LenBits)); err != nil {
		return false, false, err
	}
	val := bitint.ReadInt(v.win.data, v.localBit(startBit), uint(ins.LenBits), ins.BigEndian)
	v.pos.headBits += uint64(ins.LenBits)
	v.pos.lastValSigned = val
	v.pos.lastVal = uint64(val)
	if ins.SaveAsVal {
		v.pos.savedVals[ins.SaveValIdx] = v.pos.lastVal
	}
	kind := elem.KindSignedInteger
	if ins.IsEnum {
		kind = elem.KindSignedEnumeration
	}
	v.pos.elem = elem.Element{Kind: kind, Name: ins.Name, Int: val, LenBits: ins.LenBits, Base: ins.Base, BitOffset: startBit}
	return true, false, nil
}

func (v *Vm) execReadFixedLenFloat(ins proc.ReadFixedLenFloat) (bool, bool, error) {
	if err := v.alignHead(ins.AlignBits); err != nil {
		return false, false, err
	}
	startBit := v.globalBitOffset()
	if err := v.ensureBits(startBit, uint64(ins.LenBits)); err != nil {
		return false, false, err
	}
	var f float64
	if ins.LenBits == 32 {
		f = float64(bitint.ReadFloat32(v.win.data, v.localBit(startBit), ins.BigEndian))
	} else {
		f = bitint.ReadFloat64(v.win.data, v.localBit(startBit), ins.BigEndian)
	}
	v.pos.headBits += uint64(ins.LenBits)
	v.pos.elem = elem.Element{Kind: elem.KindFloatingPointNumber, Name: ins.Name, Float: f, LenBits: ins.LenBits, BitOffset: startBit}
	return true, false, nil
}

func (v *Vm) execReadFixedLenBitArray(ins proc.ReadFixedLenBitArray) (bool, bool, error) {
	if err := v.alignHead(ins.AlignBits); err != nil {
		return false, false, err
	}
	startBit := v.globalBitOffset()
	if err := v.checkByteOrder(startBit, ins.LenBits, ins.BigEndian); err != nil {
		return false, false, err
	}
	if err := v.ensureBits(startBit, uint64(ins.LenBits)); err != nil {
		return false, false, err
	}
	val := bitint.ReadUint(v.win.data, v.localBit(startBit), uint(ins.LenBits), ins.BigEndian)
	v.pos.headBits += uint64(ins.LenBits)
	v.pos.elem = elem.Element{Kind: elem.KindUnsignedInteger, Name: ins.Name, Uint: val, LenBits: ins.LenBits, Base: 2, BitOffset: startBit}
	return true, false, nil
}

func (v *Vm) execReadFixedLenBool(ins proc.ReadFixedLenBool) (bool, bool, error) {
	if err := v.alignHead(ins.AlignBits); err != nil {
		return false, false, err
	}
	startBit := v.globalBitOffset()
	if err := v.ensureBits(startBit, uint64(ins.LenBits)); err != nil {
		return false, false, err
	}
	val := bitint.ReadUint(v.win.data, v.localBit(startBit), uint(ins.LenBits), true)
	v.pos.headBits += uint64(ins.LenBits)
	v.pos.lastVal = val
	if ins.SaveAsVal {
		v.pos.savedVals[ins.SaveValIdx] = val
	}
	v.pos.elem = elem.Element{Kind: elem.KindUnsignedInteger, Uint: val, LenBits: ins.LenBits, Base: 10, BitOffset: startBit}
	return true, false, nil
}

// readByteAlignedByte pulls a single byte at the current head offset,
// which must be byte-aligned (true for every VLQ and null-terminated
// string read: both are defined to only ever appear at byte-aligned
// offsets in a well-formed trace).
func (v *Vm) readByteAlignedByte() (byte, error) {
	startBit := v.globalBitOffset()
	if err := v.ensureBits(startBit, 8); err != nil {
		return 0, err
	}
	b := v.win.data[v.localBit(startBit)/8]
	v.pos.headBits += 8
	return b, nil
}

func (v *Vm) execReadVlqUInt(ins proc.ReadVlqUInt) (bool, bool, error) {
	startBit := v.globalBitOffset()
	var result uint64
	var shift uint
	for {
		b, err := v.readByteAlignedByte()
		if err != nil {
			return false, false, err
		}
		result |= uint64(b&0x7f) << shift
		if b < 0x80 {
			break
		}
		shift += 7
	}
	v.pos.lastVal = result
	v.pos.lastValSigned = int64(result)
	if ins.SaveAsVal {
		v.pos.savedVals[ins.SaveValIdx] = result
	}
	v.pos.elem = elem.Element{Kind: elem.KindUnsignedInteger, Name: ins.Name, Uint: result, BitOffset: startBit}
	return true, false, nil
}

func (v *Vm) execReadVlqSInt(ins proc.ReadVlqSInt) (bool, bool, error) {
	startBit := v.globalBitOffset()
	var ux uint64
	var shift uint
	for {
		b, err := v.readByteAlignedByte()
		if err != nil {
			return false, false, err
		}
		ux |= uint64(b&0x7f) << shift
		if b < 0x80 {
			break
		}
		shift += 7
	}
	x := int64(ux >> 1)
	if ux&1 != 0 {
		x = ^x
	}
	v.pos.lastValSigned = x
	v.pos.lastVal = uint64(x)
	v.pos.elem = elem.Element{Kind: elem.KindSignedInteger, Name: ins.Name, Int: x, BitOffset: startBit}
	return true, false, nil
}

func (v *Vm) execReadNullTerminatedStr(ins proc.ReadNullTerminatedStr) (bool, bool, error) {
	v.pos.state = stReadSubstrUntilNull
	v.pos.elem = elem.Element{Kind: elem.KindStringBeginning, Name: ins.Name, BitOffset: v.globalBitOffset()}
	return true, false, nil
}

// stateReadSubstrUntilNull emits one Substring element per call, covering
// whatever the data source's current buffer window makes available — up
// to and including a null terminator, if the window holds one. A string
// that straddles a refill boundary therefore surfaces as multiple
// Substring elements, one per window, rather than one big copy: this is
// what keeps a null-terminated string read from ever buffering more than
// the source handed the VM in a single Data call.
func (v *Vm) stateReadSubstrUntilNull() (bool, bool, error) {
	startBit := v.globalBitOffset()
	if err := v.ensureBits(startBit, 8); err != nil {
		return false, false, err
	}
	local := v.localBit(startBit) / 8
	avail := v.win.data[local:]
	if v.pos.hasContentLen {
		remBits := (v.pos.pktStartBits + v.pos.contentLenBits) - startBit
		if remBytes := remBits / 8; uint64(len(avail)) > remBytes {
			avail = avail[:remBytes]
		}
	}
	if len(avail) == 0 {
		return false, false, decerr.New(decerr.KindCannotDecodeDataBeyondPacketContent, startBit)
	}
	var chunk []byte
	if idx := bytes.IndexByte(avail, 0); idx >= 0 {
		chunk = avail[:idx+1]
		v.pos.state = stEndStr
	} else {
		chunk = avail
	}
	out := append([]byte(nil), chunk...)
	v.pos.headBits += uint64(len(out)) * 8
	v.pos.elem = elem.Element{Kind: elem.KindSubstring, Bytes: out, BitOffset: startBit}
	return true, false, nil
}

func (v *Vm) stateEndStr() (bool, bool, error) {
	v.pos.state = stExecInstr
	v.pos.elem = elem.Element{Kind: elem.KindEnd, BitOffset: v.globalBitOffset()}
	return true, false, nil
}

func (v *Vm) stateReadUUIDByte() (bool, bool, error) {
	startBit := v.globalBitOffset() - uint64(v.pos.uuidIdx)*8
	for v.pos.uuidIdx < 16 {
		b, err := v.readByteAlignedByte()
		if err != nil {
			return false, false, err
		}
		v.pos.uuidBuf[v.pos.uuidIdx] = b
		v.pos.uuidIdx++
	}
	copy(v.pos.uuid[:], v.pos.uuidBuf[:])
	v.pos.hasUUID = true
	v.pos.state = stExecInstr
	v.pos.elem = elem.Element{Kind: elem.KindTraceTypeUUID, UUID: v.pos.uuid, BitOffset: startBit}
	return true, false, nil
}

func (v *Vm) setPktTotalLen() error {
	val := v.pos.lastVal
	if val%8 != 0 {
		return decerr.New(decerr.KindExpectedPacketTotalLengthBitsNotMultipleOfEight, v.globalBitOffset())
	}
	if val < v.pos.headBits {
		return decerr.New(decerr.KindExpectedPacketTotalLengthLessThanOffsetInPacket, v.globalBitOffset())
	}
	v.pos.totalLenBits = val
	v.pos.hasTotalLen = true
	if v.pos.hasContentLen && v.pos.totalLenBits < v.pos.contentLenBits {
		return decerr.New(decerr.KindExpectedPacketTotalLengthLessThanExpectedPacketContentLength, v.globalBitOffset())
	}
	return nil
}

func (v *Vm) setPktContentLen() error {
	val := v.pos.lastVal
	v.pos.contentLenBits = val
	v.pos.hasContentLen = true
	if v.pos.hasTotalLen && v.pos.totalLenBits < v.pos.contentLenBits {
		return decerr.New(decerr.KindExpectedPacketTotalLengthLessThanExpectedPacketContentLength, v.globalBitOffset())
	}
	if v.pos.contentLenBits < v.pos.headBits {
		return decerr.New(decerr.KindExpectedPacketContentLengthLessThanOffsetInPacketContent, v.globalBitOffset())
	}
	return nil
}
