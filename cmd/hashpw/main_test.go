package main

import (
	"bufio"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func TestHashFromReader(t *testing.T) {
	hash, err := hashFromReader(bufio.NewReader(strings.NewReader("secret1\n")), bcrypt.MinCost, zerolog.Nop())
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret1")) != nil {
		t.Fatalf("hash does not match input")
	}
}

func TestHashFromReader_Rejects(t *testing.T) {
	for _, in := range []string{"", "123\n", strings.Repeat("p", 73)} {
		if _, err := hashFromReader(bufio.NewReader(strings.NewReader(in)), bcrypt.MinCost, zerolog.Nop()); err == nil {
			t.Errorf("expected error for %q", in)
		}
	}
}
