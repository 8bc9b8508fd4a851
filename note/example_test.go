package note_test

import (
	"fmt"

	"github.com/cwbudde/algo-vocal/note"
)

func ExampleMapper_Map() {
	m := note.NewMapper()

	info := m.Map(261.63)
	fmt.Printf("%s %+dc in tune: %v\n", info, info.Cents, m.InTune(info))

	// Output:
	// C4 +0c in tune: true
}

func ExampleMapper_Frequency() {
	m := note.NewMapper()

	freq, err := m.Frequency("A", 4)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("A4 = %.0f Hz\n", freq)

	// Output:
	// A4 = 440 Hz
}
