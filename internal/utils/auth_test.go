package utils

import (
	"testing"

	"github.com/hikkoshi-box/hikkoshigo/internal/models"
)

func TestPasswordHashing(t *testing.T) {
	password := "secret123"

	// Test Hashing
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if hash == password {
		t.Error("Hash should not match plaintext password")
	}
	if len(hash) == 0 {
		t.Error("Hash should not be empty")
	}

	// Test Comparison (Success)
	if !CheckPasswordHash(password, hash) {
		t.Error("Password should match hash")
	}

	// Test Comparison (Failure)
	if CheckPasswordHash("wrongpassword", hash) {
		t.Error("Wrong password should not match hash")
	}
}

func TestJWT(t *testing.T) {
	secret := "test-secret-key-12345"

	user := &models.UserAuth{
		ID:       "uuid-1234",
		Username: "hikkoshi",
	}

	// Test Generation
	token, err := GenerateToken(user, secret)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if token == "" {
		t.Error("Token should not be empty")
	}

	// Test Validation (Success)
	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("Failed to validate token: %v", err)
	}

	if claims["id"] != user.ID {
		t.Errorf("Expected user ID %s, got %v", user.ID, claims["id"])
	}
	if claims["username"] != user.Username {
		t.Errorf("Expected username %s, got %v", user.Username, claims["username"])
	}

	// Test Validation (Failure - Wrong Key)
	_, err = ValidateToken(token, "wrong-key")
	if err == nil {
		t.Error("Validation should fail with wrong key")
	}
}

func TestDuplicateScanWindow(t *testing.T) {
	payload := "dedup-test-4901234567894"

	if IsDuplicateScan(payload) {
		t.Error("First scan should not be a duplicate")
	}
	if !IsDuplicateScan(payload) {
		t.Error("Immediate repeat should be a duplicate")
	}
	if IsDuplicateScan("") {
		t.Error("Empty payload is never a duplicate")
	}
}
