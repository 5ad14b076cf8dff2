//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "pet-adoption-api"
	ConsumerName = "adoption-portal"

	StatePetListed      = "pet pact-pet listed by pact-owner"
	StateRequestPending = "pact-adopter holds a pending request for pact-pet"
	StatePetMissing     = "no pet with id ghost-pet"
)

const (
	ExistingPetID    = "pact-pet"
	MissingPetID     = "ghost-pet"
	PendingRequestID = "pact-request"
	OwnerID          = "pact-owner"
	AdopterID        = "pact-adopter"
	PetName          = "Fluffy Pact Cat"
	AdopterEmail     = "pact.adopter@example.com"
	AdoptionMessage  = "We have a big garden and lots of time for walks."
)

// DebugUserHeader carries the acting user when the provider runs without a token secret.
const DebugUserHeader = "X-Debug-User-ID"

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the adoption portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleSubmission is the body the portal posts when asking to adopt.
func ExampleSubmission() map[string]any {
	return map[string]any{
		"contactEmail": AdopterEmail,
		"contactPhone": "+1234567890",
		"message":      AdoptionMessage,
	}
}

// ExampleResubmission is a follow-up attempt for a pet the adopter already asked about.
func ExampleResubmission() map[string]any {
	body := ExampleSubmission()
	body["message"] = AdoptionMessage + " Just checking you received my request."
	return body
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
