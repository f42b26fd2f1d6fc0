package xgrouping_test

import (
	"testing"

	"github.com/omeyang/ipkit/pkg/addr/xdivision"
	"github.com/omeyang/ipkit/pkg/addr/xipv4"
)

func BenchmarkCount(b *testing.B) {
	addr, _ := xipv4.FromBytes([]byte{10, 0, 0, 0}, xdivision.ToPrefixLen(8))
	sect := addr.Section()
	b.Run("cached", func(b *testing.B) {
		for b.Loop() {
			_ = sect.Count()
		}
	})
}

func BenchmarkBytes(b *testing.B) {
	addr, _ := xipv4.FromBytes([]byte{192, 168, 1, 1}, nil)
	sect := addr.Section()
	for b.Loop() {
		_ = sect.Bytes()
	}
}

func BenchmarkHash(b *testing.B) {
	addr, _ := xipv4.FromBytes([]byte{192, 168, 1, 1}, nil)
	sect := addr.Section()
	for b.Loop() {
		_ = sect.Hash()
	}
}

func BenchmarkIterator(b *testing.B) {
	addr, _ := xipv4.FromUint32(0xc0a80100, xdivision.ToPrefixLen(24))
	for b.Loop() {
		it := xipv4.Iterator(addr)
		for {
			if _, ok := it.Next(); !ok {
				break
			}
		}
	}
}

func BenchmarkCreateSegmentInterned(b *testing.B) {
	var c xipv4.Creator
	for b.Loop() {
		_ = c.CreateSegment(127)
	}
}
