// Command createkey prints a fresh hex-encoded vector encryption key for
// VECTOR_ENCRYPTION_KEY. It makes no database or network connections.
package main

import (
	"fmt"
	"os"

	"github.com/Chitralekhayaduvanshi/Cyborg-care/internal/vaultcipher"
)

func main() {
	key, err := vaultcipher.GenerateKey()
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("VECTOR_ENCRYPTION_KEY=%s\n", key)
}
