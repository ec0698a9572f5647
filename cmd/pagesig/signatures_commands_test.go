package main

import (
	"encoding/json"
	"testing"
)

func TestSignaturesList(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"signatures", "list", "--json"}, env.configPath, "")
	if err != nil {
		t.Fatalf("signatures list: %v", err)
	}
	var summaries []signatureSummary
	if err := json.Unmarshal([]byte(out), &summaries); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(summaries) != 2 || summaries[0].Label != "Battle" || summaries[1].Pixels != 3 {
		t.Fatalf("unexpected summaries %+v", summaries)
	}

	out, _, err = runCLI(t, []string{"signatures", "list"}, env.configPath, "")
	if err != nil {
		t.Fatalf("signatures list: %v", err)
	}
	requireContains(t, out, "Home")
}

func TestSignaturesShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"signatures", "show", "Home"}, env.configPath, "")
	if err != nil {
		t.Fatalf("signatures show: %v", err)
	}
	requireContains(t, out, "Home: 3 reference pixels")
	requireContains(t, out, "RGB(255, 0, 0)")

	if _, _, err := runCLI(t, []string{"signatures", "show", "Nope"}, env.configPath, ""); err == nil {
		t.Fatal("expected error for unknown label")
	}
}
