package main

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
)

// Produces the bcrypt hash expected in ADMIN_API_KEY_HASH.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run main.go <admin-key>")
	}

	key := os.Args[1]

	hashed, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("Failed to hash key: %v", err)
	}

	fmt.Println(string(hashed))
}
