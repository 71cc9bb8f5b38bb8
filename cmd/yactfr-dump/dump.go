package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/kienanstewart/yactfr/cachepos"
	"github.com/kienanstewart/yactfr/datasource"
	"github.com/kienanstewart/yactfr/elem"
	"github.com/kienanstewart/yactfr/proc"
	"github.com/kienanstewart/yactfr/vm"
)

// dumpFile decodes path with pp and prints one line per element to
// stdout. It records each packet's boundary in posCache as it passes
// PacketInfo, the same information a real consumer would want cached to
// support cheap re-seeking.
func dumpFile(log *zap.Logger, posCache *cachepos.Cache, pp *proc.PktProc, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	src := &datasource.ReaderAt{R: f, Size: info.Size()}
	v := vm.New(src, pp)

	var pktIndex, pktStartBits uint64
	for {
		ok, err := v.Advance()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		e := v.CurrentElement()
		printElement(e)
		if e.Kind == elem.KindPacketBeginning {
			pktStartBits = e.BitOffset
		}
		if e.Kind == elem.KindPacketInfo && e.HasLens {
			posCache.Store(path, cachepos.Entry{
				OffsetBytes:    pktStartBits / 8,
				TotalLenBits:   e.PacketTotalLenBits,
				ContentLenBits: e.PacketContentLenBits,
				PacketIndex:    pktIndex,
			})
			pktIndex++
		}
	}
	log.Debug("finished decoding", zap.String("path", path), zap.Uint64("packets", pktIndex))
	return nil
}

func printElement(e *elem.Element) {
	switch e.Kind {
	case elem.KindUnsignedInteger, elem.KindUnsignedEnumeration:
		fmt.Printf("%d %-12s %s = %d\n", e.BitOffset, e.Kind, e.Name, e.Uint)
	case elem.KindSignedInteger, elem.KindSignedEnumeration:
		fmt.Printf("%d %-12s %s = %d\n", e.BitOffset, e.Kind, e.Name, e.Int)
	case elem.KindFloatingPointNumber:
		fmt.Printf("%d %-12s %s = %g\n", e.BitOffset, e.Kind, e.Name, e.Float)
	case elem.KindSubstring:
		fmt.Printf("%d %-12s %q\n", e.BitOffset, e.Kind, e.Bytes)
	case elem.KindDefaultClockValue:
		fmt.Printf("%d %-12s %s = %d\n", e.BitOffset, e.Kind, e.ClockName, e.ClockCycles)
	case elem.KindTraceTypeUUID:
		fmt.Printf("%d %-12s %s\n", e.BitOffset, e.Kind, e.UUID)
	case elem.KindPacketMagicNumber:
		fmt.Printf("%d %-12s 0x%08x\n", e.BitOffset, e.Kind, e.MagicNumber)
	default:
		fmt.Printf("%d %s\n", e.BitOffset, e.Kind)
	}
}
