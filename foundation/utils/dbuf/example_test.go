package dbuf_test

import (
	"fmt"

	"github.com/msto63/idoutils/foundation/utils/dbuf"
)

func ExampleNextCapacity() {
	for _, required := range []int{3, 8, 9} {
		capacity, _ := dbuf.NextCapacity(required, 8)
		fmt.Println(required, "->", capacity)
	}
	// Output:
	// 3 -> 8
	// 8 -> 16
	// 9 -> 16
}

func ExampleBuffer_Append() {
	buf, err := dbuf.New(8)
	if err != nil {
		panic(err)
	}
	defer buf.Release()

	_ = buf.Append("ab")
	_ = buf.Append("cdef")

	fmt.Println(buf.String(), buf.Len(), buf.Cap())
	// Output:
	// abcdef 6 8
}
