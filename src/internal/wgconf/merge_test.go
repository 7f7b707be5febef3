package wgconf

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/Penguin-Guru/manual-connections/src/internal/errors"
)

func TestMerge_ReplacesExistingValues(t *testing.T) {
	doc := Parse("[Interface]\nAddress = \n[Peer]\nPublicKey = \n")

	updates := []FieldUpdate{
		NewFieldUpdate("Address", "10.0.0.2", AfterSection("[Interface]")),
		NewFieldUpdate("PublicKey", "abc=", AfterSection("[Peer]")),
	}

	merged, err := Merge(doc, updates)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if merged.Len() != doc.Len() {
		t.Errorf("Expected %d lines, got %d", doc.Len(), merged.Len())
	}

	got := merged.String()
	want := "[Interface]\nAddress = 10.0.0.2\n[Peer]\nPublicKey = abc=\n"
	if got != want {
		t.Errorf("Merge result = %q, want %q", got, want)
	}
}

func TestMerge_PreservesKeySpacing(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "spaces around equals", line: "Address = old", want: "Address = 10.1.2.3"},
		{name: "no spaces", line: "Address=old", want: "Address=10.1.2.3"},
		{name: "tab before equals", line: "Address\t= old", want: "Address\t= 10.1.2.3"},
		{name: "leading indent", line: "  Address = old", want: "  Address = 10.1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse("[Interface]\n" + tt.line + "\n")
			merged, err := Merge(doc, []FieldUpdate{
				NewFieldUpdate("Address", "10.1.2.3", AfterSection("[Interface]")),
			})
			if err != nil {
				t.Fatalf("Merge failed: %v", err)
			}
			if got := merged.Lines[1].Raw; got != tt.want {
				t.Errorf("Replaced line = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMerge_KeyMatchingIsCaseAndWhitespaceInsensitive(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "canonical", line: "PrivateKey = old"},
		{name: "lowercase", line: "privatekey = old"},
		{name: "internal space", line: "Private Key = old"},
		{name: "internal tab", line: "Private\tKey = old"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse("[Interface]\n" + tt.line + "\n")
			merged, err := Merge(doc, []FieldUpdate{
				NewFieldUpdate("PrivateKey", "newkey=", AfterSection("[Interface]")),
			})
			if err != nil {
				t.Fatalf("Merge failed: %v", err)
			}
			if merged.Len() != 2 {
				t.Fatalf("Expected replacement, not insertion: %q", merged.String())
			}
			if !strings.HasSuffix(merged.Lines[1].Raw, "newkey=") {
				t.Errorf("Line not replaced: %q", merged.Lines[1].Raw)
			}
		})
	}
}

func TestMerge_OnlyFirstDuplicateIsUpdated(t *testing.T) {
	doc := Parse("[Interface]\nAddress = a\nAddress = b\n")

	merged, err := Merge(doc, []FieldUpdate{
		NewFieldUpdate("Address", "10.0.0.9", AfterSection("[Interface]")),
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if merged.Lines[1].Raw != "Address = 10.0.0.9" {
		t.Errorf("First occurrence not updated: %q", merged.Lines[1].Raw)
	}
	if merged.Lines[2].Raw != "Address = b" {
		t.Errorf("Later duplicate must stay untouched: %q", merged.Lines[2].Raw)
	}
}

func TestMerge_InsertsMissingFieldAfterSection(t *testing.T) {
	doc := Parse("[Interface]\nPrivateKey = k\n[Peer]\nPublicKey = p\n")

	merged, err := Merge(doc, []FieldUpdate{
		NewFieldUpdate("Address", "10.0.0.2/32", AfterSection("[Interface]")),
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if merged.Len() != doc.Len()+1 {
		t.Fatalf("Expected %d lines, got %d", doc.Len()+1, merged.Len())
	}
	if merged.Lines[1].Raw != "Address = 10.0.0.2/32" {
		t.Errorf("Inserted line = %q, want directly after [Interface]", merged.Lines[1].Raw)
	}
	if merged.Lines[2].Raw != "PrivateKey = k" {
		t.Errorf("Original line displaced incorrectly: %q", merged.Lines[2].Raw)
	}
}

func TestMerge_InsertsMissingFieldAfterSiblingField(t *testing.T) {
	doc := Parse("[Interface]\nAddress = 10.0.0.2\nPrivateKey = k\n")

	merged, err := Merge(doc, []FieldUpdate{
		NewFieldUpdate("DNS", "10.0.0.243", AfterField("PrivateKey")),
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if merged.Lines[3].Raw != "DNS = 10.0.0.243" {
		t.Errorf("Expected DNS inserted after PrivateKey, got %q", merged.String())
	}
}

func TestMerge_MissingAnchorFailsWithPlacementError(t *testing.T) {
	// No [Peer] section at all.
	doc := Parse("[Interface]\nAddress = 10.0.0.2\n")

	_, err := Merge(doc, []FieldUpdate{
		NewFieldUpdate("PublicKey", "abc=", AfterSection("[Peer]")),
	})
	if err == nil {
		t.Fatal("Expected placement error")
	}

	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) || domainErr.Code != apperrors.ErrCodePlacement {
		t.Errorf("Expected %s, got %v", apperrors.ErrCodePlacement, err)
	}
	if !strings.Contains(err.Error(), "PublicKey") {
		t.Errorf("Error should name the unplaced field: %v", err)
	}
}

func TestMerge_EmptyValueIsSkipped(t *testing.T) {
	original := "[Interface]\nAddress = 10.0.0.2\nDNS = 1.1.1.1\n"
	doc := Parse(original)

	merged, err := Merge(doc, []FieldUpdate{
		NewFieldUpdate("DNS", "", AfterField("Address")),
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if merged.String() != original {
		t.Errorf("Empty update must be a no-op, got %q", merged.String())
	}
}

func TestMerge_PreservesUnrelatedLines(t *testing.T) {
	original := strings.Join([]string{
		"# managed tunnel",
		"[Interface]",
		"Address = old",
		"PostUp = /usr/local/bin/hook.sh",
		"",
		"[Peer]",
		"AllowedIPs = 192.168.0.0/16",
		"PublicKey = old=",
		"",
	}, "\n")
	doc := Parse(original)

	merged, err := Merge(doc, []FieldUpdate{
		NewFieldUpdate("Address", "10.9.8.7", AfterSection("[Interface]")),
		NewFieldUpdate("PublicKey", "new=", AfterSection("[Peer]")),
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	want := strings.Join([]string{
		"# managed tunnel",
		"[Interface]",
		"Address = 10.9.8.7",
		"PostUp = /usr/local/bin/hook.sh",
		"",
		"[Peer]",
		"AllowedIPs = 192.168.0.0/16",
		"PublicKey = new=",
		"",
	}, "\n")
	if merged.String() != want {
		t.Errorf("Merge result = %q, want %q", merged.String(), want)
	}
}

func TestMerge_IsIdempotent(t *testing.T) {
	doc := Parse("[Interface]\nPrivateKey = k\n[Peer]\nEndpoint = 1.2.3.4:1337\n")
	updates := []FieldUpdate{
		NewFieldUpdate("Address", "10.0.0.2", AfterSection("[Interface]")),
		NewFieldUpdate("PrivateKey", "newkey=", AfterField("Address")),
		NewFieldUpdate("PublicKey", "srv=", AfterSection("[Peer]")),
		NewFieldUpdate("Endpoint", "5.6.7.8:1337", AfterField("PublicKey")),
	}

	once, err := Merge(doc, updates)
	if err != nil {
		t.Fatalf("First merge failed: %v", err)
	}
	twice, err := Merge(once, updates)
	if err != nil {
		t.Fatalf("Second merge failed: %v", err)
	}

	if once.String() != twice.String() {
		t.Errorf("Merge is not idempotent:\nonce:  %q\ntwice: %q", once.String(), twice.String())
	}
}

func TestMerge_FirstMatchWinsPerLine(t *testing.T) {
	// Two updates could both be confused for the same line if matching
	// were greedy; only the first pending update may consume it.
	doc := Parse("[Interface]\nAddress = old\n")

	merged, err := Merge(doc, []FieldUpdate{
		NewFieldUpdate("Address", "first", AfterSection("[Interface]")),
		NewFieldUpdate("Address", "second", AfterSection("[Interface]")),
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	// The second update stays pending and is inserted directly after its
	// anchor, which places it above the replaced line.
	if merged.Lines[1].Raw != "Address = second" {
		t.Errorf("Second update should be inserted after anchor: %q", merged.String())
	}
	if merged.Lines[2].Raw != "Address = first" {
		t.Errorf("First pending update must win the existing line: %q", merged.Lines[2].Raw)
	}
}

func TestMerge_SectionMatchingIsCaseSensitive(t *testing.T) {
	doc := Parse("[interface]\nAddress = old\n")

	_, err := Merge(doc, []FieldUpdate{
		NewFieldUpdate("DNS", "10.0.0.243", AfterSection("[Interface]")),
	})
	if err == nil {
		t.Fatal("Expected placement error for case-mismatched section header")
	}
}

func TestTunnelIdentityUpdates_OptionalDNS(t *testing.T) {
	id := TunnelIdentity{
		Address:    "10.0.0.2",
		PrivateKey: "priv=",
		ServerKey:  "srv=",
		Endpoint:   "1.2.3.4:1337",
	}

	doc := Parse("[Interface]\nAddress = x\nPrivateKey = x\n[Peer]\nPublicKey = x\nEndpoint = x\n")
	merged, err := Merge(doc, id.Updates())
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if strings.Contains(merged.String(), "DNS") {
		t.Errorf("DNS must not appear when not requested: %q", merged.String())
	}
	if merged.Len() != doc.Len() {
		t.Errorf("Expected no insertions, got %d lines (was %d)", merged.Len(), doc.Len())
	}
}
