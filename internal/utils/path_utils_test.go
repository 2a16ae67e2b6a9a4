package utils

import "testing"

func TestResolveIncludePath(t *testing.T) {
	tests := []struct {
		owner, include, expected string
		ok                       bool
	}{
		{"main.yaml", "a/b.yaml", "a/b.yaml", true},
		{"nested/inner.yaml", "../a/b.yaml", "a/b.yaml", true},
		{"nested/inner.yaml", "./sibling.yaml", "nested/sibling.yaml", true},
		{"nested/inner.yaml", "../../x.yaml", "", false},
	}
	for _, tt := range tests {
		got, ok := ResolveIncludePath(tt.owner, tt.include)
		if got != tt.expected || ok != tt.ok {
			t.Errorf("ResolveIncludePath(%q, %q) = %q, %v; want %q, %v", tt.owner, tt.include, got, ok, tt.expected, tt.ok)
		}
	}
}

func TestTypePathPrefix(t *testing.T) {
	if got := TypePathPrefix("a/b.yaml"); got != "a::b" {
		t.Errorf("TypePathPrefix = %q", got)
	}
	if got := TypePathPrefix("./main.yaml"); got != "main" {
		t.Errorf("TypePathPrefix = %q", got)
	}
	if got := NamespaceFilePath("a::b"); got != "a/b.yaml" {
		t.Errorf("NamespaceFilePath = %q", got)
	}
}
