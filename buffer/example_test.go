// SPDX-License-Identifier: EPL-2.0

package buffer_test

import (
	"fmt"

	"github.com/ik5/audxcode/buffer"
)

// Example shows the reserve, commit and consume cycle the transcoder runs.
func Example() {
	buf, _ := buffer.New(2)
	defer buf.Release()

	const frameBytes = 4
	for _, produced := range []int{3, 6, 2} {
		res, _ := buf.Reserve(8)
		for _, row := range res.Rows() {
			for i := range produced {
				row[i] = byte(i)
			}
		}
		_ = res.Commit(produced)

		for buf.Len() >= frameBytes {
			block, _ := buf.Front(frameBytes)
			fmt.Println("encode", block[0])
			_ = buf.ConsumeFront(frameBytes)
		}
	}
	fmt.Println("left over:", buf.Len())
	// Output:
	// encode [0 1 2 0]
	// encode [1 2 3 4]
	// left over: 3
}
