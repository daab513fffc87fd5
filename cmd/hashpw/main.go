// Command hashpw reads a password from stdin and prints its bcrypt hash, for use
// as password_hash in a bootstrap seed file.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-panel/internal/infrastructure/security"
	"github.com/99minutos/admin-panel/pkg/logger"
)

func main() {
	cost := flag.Int("cost", 10, "bcrypt cost")
	flag.Parse()

	log := logger.Init(logger.Options{Level: "error", Pretty: true, Output: os.Stderr})

	hash, err := hashFromReader(bufio.NewReader(os.Stdin), *cost, log)
	if err != nil {
		log.Fatal().Err(err).Msg("hashpw failed")
	}
	fmt.Println(hash)
}

func hashFromReader(r *bufio.Reader, cost int, log zerolog.Logger) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if len(password) < 6 || len(password) > 72 {
		return "", fmt.Errorf("password must be between 6 and 72 characters")
	}
	log.Debug().Int("cost", cost).Msg("hashing password")
	return security.NewBcryptHasher(cost).Hash(password)
}
