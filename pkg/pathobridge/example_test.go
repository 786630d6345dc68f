package pathobridge_test

import (
	"fmt"

	"github.com/crimson-sun/pathobridge/pkg/pathobridge"
)

func ExampleStages() {
	for i, name := range pathobridge.Stages() {
		fmt.Println(i+1, name)
	}
	// Output:
	// 1 host-response
	// 2 metabolism
	// 3 bridging
	// 4 predict
	// 5 synthesis
}
