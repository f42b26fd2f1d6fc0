package xipv4_test

import (
	"encoding/json"
	"fmt"
	"net/netip"

	"github.com/omeyang/ipkit/pkg/addr/xdivision"
	"github.com/omeyang/ipkit/pkg/addr/xipv4"
)

func ExampleFromBytes() {
	addr, _ := xipv4.FromBytes([]byte{10, 0, 0, 0}, xdivision.ToPrefixLen(8))
	fmt.Println(xipv4.String(addr))
	fmt.Println(addr.Section().Count())
	// Output:
	// 10.*.*.*/8
	// 16777216
}

func ExampleFromAddr() {
	addr, _ := xipv4.FromAddr(netip.MustParseAddr("192.168.1.1"))
	back, _ := xipv4.Addr(addr)
	fmt.Println(back)
	// Output:
	// 192.168.1.1
}

func ExampleWireSectionFrom() {
	addr, _ := xipv4.FromBytes([]byte{10, 0, 0, 0}, xdivision.ToPrefixLen(8))
	w, _ := xipv4.WireSectionFrom(addr)
	data, _ := json.Marshal(w)
	fmt.Println(string(data))
	// Output:
	// {"lower":"10.0.0.0","upper":"10.255.255.255","prefix":8}
}

func ExampleIterator() {
	addr, _ := xipv4.FromValueProviders(
		func(i int) uint64 { return []uint64{1, 2, 3, 5}[i] },
		func(i int) uint64 { return []uint64{1, 2, 4, 5}[i] },
		nil,
	)
	it := xipv4.Iterator(addr)
	for {
		next, ok := it.Next()
		if !ok {
			break
		}
		fmt.Println(xipv4.String(next))
	}
	// Output:
	// 1.2.3.5
	// 1.2.4.5
}
