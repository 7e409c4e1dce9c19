// Package utils contains utility functions for the prefq daemon.
package utils

import (
	"fmt"
)

// DisplayLogo prints the prefq ASCII logo with version information
func DisplayLogo(version string) {
	fmt.Println()
	fmt.Println(` ░░░░░░░░░░░░░░░░░░░░░░░
 ░█▀█░█▀▄░█▀▀░█▀▀░▄▀▄░░░
 ░█▀▀░█▀▄░█▀▀░█▀▀░█\█░░░
 ░▀░░░▀░▀░▀▀▀░▀░░░░▀\░░░
 ░░░░░░░░░░░░░░░░░░░░░░░`)
	fmt.Printf("\n prefq v%s - Pairwise Preference Query Server\n", version)
	fmt.Println(" Humans pick the better video, producers collect the labels")
	fmt.Println()
}
