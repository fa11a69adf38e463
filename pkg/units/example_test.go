package units_test

import (
	"fmt"

	"github.com/matzehuels/heightcompare/pkg/units"
)

func ExampleParseHeight() {
	for _, expr := range []string{`5'11"`, "1.8m", "6 ft", "71in"} {
		cm, err := units.ParseHeight(expr)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Printf("%s = %s cm\n", expr, units.FormatCm(cm))
	}
	// Output:
	// 5'11" = 180 cm
	// 1.8m = 180 cm
	// 6 ft = 183 cm
	// 71in = 180 cm
}

func ExampleFormatHeight() {
	fmt.Println(units.FormatHeight(180, units.Centimeter))
	fmt.Println(units.FormatHeight(180, units.Foot))
	fmt.Println(units.FormatHeight(12000, units.Kilometer))
	// Output:
	// 180cm
	// 5' 11"
	// 0.12km
}
