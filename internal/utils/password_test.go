package utils

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password", 4)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "s3cret-password" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !VerifyPassword(hash, "s3cret-password") {
		t.Error("expected verification to succeed for the original password")
	}
	if VerifyPassword(hash, "wrong-password") {
		t.Error("expected verification to fail for a different password")
	}
}

func TestVerifyPassword_MutatedHash(t *testing.T) {
	hash, err := HashPassword("s3cret-password", 4)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	// Flip the last character of the hash.
	mutated := hash[:len(hash)-1]
	if hash[len(hash)-1] == 'a' {
		mutated += "b"
	} else {
		mutated += "a"
	}
	if VerifyPassword(mutated, "s3cret-password") {
		t.Error("expected verification to fail for a mutated hash")
	}
}
