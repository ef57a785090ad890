// Command seedtoken seals the backend API token into the credential file
// the desk reads at startup. The token never touches the database or the
// config file in plain text.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"garagedesk/infrastructure/credential"
)

func main() {
	credPath := getenv("CREDENTIAL_PATH", "garagedesk.cred")

	token, err := resolveInput(os.Stdin, os.Getenv("BACKEND_TOKEN"), "Backend API token: ")
	if err != nil {
		log.Fatalf("read token: %v", err)
	}
	if token == "" {
		log.Fatalf("token must not be empty")
	}

	passphrase, err := resolveInput(os.Stdin, os.Getenv("GARAGEDESK_PASSPHRASE"), "Passphrase: ")
	if err != nil {
		log.Fatalf("read passphrase: %v", err)
	}
	if passphrase == "" {
		log.Fatalf("passphrase must not be empty")
	}

	if err := credential.SaveFile(credPath, token, passphrase); err != nil {
		log.Fatalf("seal credential: %v", err)
	}
	fmt.Printf("sealed backend token into %s\n", credPath)
}

// resolveInput prefers the environment value and falls back to prompting on
// the given reader.
func resolveInput(r io.Reader, envValue, prompt string) (string, error) {
	if envValue != "" {
		return strings.TrimSpace(envValue), nil
	}
	fmt.Print(prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
