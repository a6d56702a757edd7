package security

import (
	"testing"
)

func TestRedactor_DefaultPatterns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "hugging face token",
			input: "token is hf_abcdefghijklmnopqrstuvwxyz",
			want:  "token is " + RedactPlaceholder,
		},
		{
			name:  "openai key",
			input: "key is sk-abcdefghijklmnopqrstuvwxyz",
			want:  "key is " + RedactPlaceholder,
		},
		{
			name:  "openai project key",
			input: "sk-proj-abcdefghijklmnopqrstuvwxyz",
			want:  RedactPlaceholder,
		},
		{
			name:  "anthropic key",
			input: "api: sk-ant-REDACTED",
			want:  "api: " + RedactPlaceholder,
		},
		{
			name:  "bearer header",
			input: "Authorization: Bearer abcdef123456",
			want:  "Authorization: " + RedactPlaceholder,
		},
		{
			name:  "short hf prefix untouched",
			input: "hf_short",
			want:  "hf_short",
		},
		{
			name:  "no secrets",
			input: "this is a normal message",
			want:  "this is a normal message",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "multiple secrets",
			input: "keys: sk-abcdefghijklmnopqrstuvwxyz and hf_abcdefghijklmnopqrstuvwxyz",
			want:  "keys: " + RedactPlaceholder + " and " + RedactPlaceholder,
		},
	}

	r := NewRedactor()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := r.Redact(tt.input)
			if got != tt.want {
				t.Errorf("Redact(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactor_Literals(t *testing.T) {
	t.Parallel()

	r := NewRedactor()
	r.AddLiteral("my-super-secret-value", "")

	got := r.Redact("the token is my-super-secret-value here")
	want := "the token is " + RedactPlaceholder + " here"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRedactor_RedactMap(t *testing.T) {
	t.Parallel()

	r := NewRedactor()
	r.AddLiteral("literal-secret")

	m := map[string]any{
		"name":      "test",
		"api_key":   "should-be-redacted",
		"token":     "fake-test-value",
		"data":      "has literal-secret inside",
		"empty_key": "",
		"backends": map[string]any{
			"hf": map[string]any{
				"token": "nested-secret",
				"model": "facebook/bart-large-cnn",
			},
		},
		"list": []any{
			map[string]any{"credential": "list-secret"},
		},
	}

	r.RedactMap(m)

	for _, key := range []string{"api_key", "token"} {
		if m[key] != RedactPlaceholder {
			t.Errorf("%s = %v, want redacted", key, m[key])
		}
	}
	if m["data"] != "has "+RedactPlaceholder+" inside" {
		t.Errorf("data = %v, want literal redacted", m["data"])
	}
	if m["name"] != "test" {
		t.Errorf("name = %v, want test", m["name"])
	}
	if m["empty_key"] != "" {
		t.Errorf("empty_key = %v, want empty", m["empty_key"])
	}

	hf := m["backends"].(map[string]any)["hf"].(map[string]any)
	if hf["token"] != RedactPlaceholder {
		t.Errorf("backends.hf.token = %v, want redacted", hf["token"])
	}
	if hf["model"] != "facebook/bart-large-cnn" {
		t.Errorf("backends.hf.model = %v, want untouched", hf["model"])
	}

	item := m["list"].([]any)[0].(map[string]any)
	if item["credential"] != RedactPlaceholder {
		t.Errorf("list[0].credential = %v, want redacted", item["credential"])
	}
}

func TestRedactor_AddPattern(t *testing.T) {
	t.Parallel()

	r := &Redactor{}
	r.AddPattern(DefaultPatterns()[0])

	got := r.Redact("hf_abcdefghijklmnopqrstuvwxyz")
	if got != RedactPlaceholder {
		t.Errorf("got %q, want %q", got, RedactPlaceholder)
	}
}

func FuzzRedactor(f *testing.F) {
	f.Add("normal text")
	f.Add("sk-abcdefghijklmnopqrstuvwxyz")
	f.Add("hf_abcdefghijklmnopqrstuvwxyz")
	f.Add("Bearer abcdefghij")
	f.Add("")

	r := NewRedactor()
	r.AddLiteral("test-literal-secret")

	f.Fuzz(func(t *testing.T, input string) {
		result := r.Redact(input)
		if double := r.Redact(result); double != result {
			t.Errorf("redaction not idempotent: Redact(Redact(%q)) = %q, want %q", input, double, result)
		}
	})
}
