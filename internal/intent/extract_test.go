package intent

import (
	"testing"
)

func containsAll(haystack []string, needles ...string) bool {
	set := make(map[string]struct{}, len(haystack))
	for _, h := range haystack {
		set[h] = struct{}{}
	}
	for _, n := range needles {
		if _, ok := set[n]; !ok {
			return false
		}
	}
	return true
}

func TestExtractSkills_Vocabulary(t *testing.T) {
	skills := ExtractSkills("I need help finding data science jobs with Python and SQL skills")
	if !containsAll(skills, "python", "sql") {
		t.Errorf("expected python and sql, got %v", skills)
	}
}

func TestExtractSkills_PhraseCapture(t *testing.T) {
	skills := ExtractSkills("I know Kubernetes, Terraform and observability tooling")
	if !containsAll(skills, "kubernetes", "terraform") {
		t.Errorf("expected kubernetes and terraform, got %v", skills)
	}
}

func TestExtractSkills_Deduplicated(t *testing.T) {
	skills := ExtractSkills("python Python PYTHON, and also python")
	count := 0
	for _, s := range skills {
		if s == "python" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected python exactly once, got %v", skills)
	}
}

func TestExtractSkills_NoneFound(t *testing.T) {
	if skills := ExtractSkills("what a lovely morning"); skills != nil {
		t.Errorf("expected nil, got %v", skills)
	}
	if skills := ExtractSkills("   "); skills != nil {
		t.Errorf("expected nil for blank input, got %v", skills)
	}
}

func TestExtractRole(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"I want to become a Data Scientist", "Data Scientist"},
		{"I'd like to work as an engineer", "engineer"},
		{"practice for a Software Engineer interview", "Software Engineer"},
		{"nothing about roles here", ""},
	}

	for _, tc := range cases {
		if got := ExtractRole(tc.input); got != tc.want {
			t.Errorf("ExtractRole(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
