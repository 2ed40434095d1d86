package storage

import (
	"strings"
	"testing"
)

func TestExtractKeyFromURL(t *testing.T) {
	key, err := ExtractKeyFromURL("https://s3.fr-par.scw.cloud/papex/contracts/contrat_9.pdf")
	if err != nil || key != "contracts/contrat_9.pdf" {
		t.Fatalf("unexpected key %q err %v", key, err)
	}

	if _, err := ExtractKeyFromURL("https://s3.example.com/papex"); err == nil {
		t.Fatalf("expected error for URL without key")
	}
}

func TestExtractBucketKey(t *testing.T) {
	cases := []struct {
		name string
		url  string
		want string
	}{
		{name: "path style", url: "https://s3.example.com/papex/receipts/r_1.pdf", want: "receipts/r_1.pdf"},
		{name: "bucket deeper in path", url: "https://cdn.example.com/eu/papex/cvs/cv.pdf", want: "cvs/cv.pdf"},
		{name: "fallback to first segment", url: "https://s3.example.com/other/receipts/r_1.pdf", want: "receipts/r_1.pdf"},
		{name: "relative path", url: "/papex/documents/id.png", want: "documents/id.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractBucketKey(tc.url, "papex")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}

	if _, err := ExtractBucketKey("", "papex"); err == nil {
		t.Fatalf("expected error for empty URL")
	}
}

func TestBuildKeyKeepsExtension(t *testing.T) {
	key := BuildKey(FolderCVs, "../Jean Dupont.pdf")
	if !strings.HasPrefix(key, "cvs/Jean Dupont_") || !strings.HasSuffix(key, ".pdf") {
		t.Fatalf("unexpected key %q", key)
	}
	if BuildKey(FolderCVs, "a.pdf") == BuildKey(FolderCVs, "a.pdf") {
		t.Fatalf("expected unique keys")
	}
}

func TestObjectURLRoundTrip(t *testing.T) {
	s := &MinIOService{bucket: "papex", endpoint: "s3.example.com", secure: true}
	u := s.ObjectURL("contracts/c_1.pdf")
	if u != "https://s3.example.com/papex/contracts/c_1.pdf" {
		t.Fatalf("unexpected URL %q", u)
	}
	key, err := ExtractBucketKey(u, s.Bucket())
	if err != nil || key != "contracts/c_1.pdf" {
		t.Fatalf("unexpected key %q err %v", key, err)
	}
}

func TestValidation(t *testing.T) {
	s := &MinIOService{maxFileSize: 1024}

	if err := s.ValidateContentType("application/pdf; charset=binary"); err != nil {
		t.Fatalf("pdf should be allowed: %v", err)
	}
	if err := s.ValidateContentType("image/heic"); err != nil {
		t.Fatalf("phone photos should be allowed: %v", err)
	}
	for _, ct := range []string{"video/mp4", "", "not a type"} {
		if err := s.ValidateContentType(ct); err == nil {
			t.Fatalf("%q should be rejected", ct)
		}
	}
	if err := s.ValidateFileSize(0); err == nil {
		t.Fatalf("empty file should be rejected")
	}
	if err := s.ValidateFileSize(2048); err == nil {
		t.Fatalf("oversized file should be rejected")
	}
	if err := s.ValidateFileSize(512); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
