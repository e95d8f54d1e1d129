// Prints the bcrypt hash for OWNER_PASSWORD, to be set as OWNER_PASSWORD_HASH.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/khoahotran/portfolio-onboarding/pkg/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("warning: .env file not found, use system environment variables.")
	}

	email := os.Getenv("OWNER_EMAIL")
	password := os.Getenv("OWNER_PASSWORD")
	if password == "" {
		log.Fatal("OWNER_PASSWORD is empty")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("cannot hash password: %v", err)
	}

	if email != "" {
		fmt.Printf("OWNER_EMAIL=%s\n", email)
	}
	fmt.Printf("OWNER_PASSWORD_HASH=%s\n", hash)
}
