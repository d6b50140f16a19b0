package errors

import (
	"strings"
	"testing"
)

func TestValidateFieldName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid camelCase", "headerMain", false},
		{"valid with digits", "image2", false},
		{"valid with dash", "play-button", false},
		{"valid with underscore", "footer_text", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 200), true},
		{"leading digit", "2image", true},
		{"null byte", "foo\x00bar", true},
		{"control char", "foo\x01bar", true},
		{"spaces", "header main", true},
		{"path separator", "foo/bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFieldName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFieldName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTemplateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "template1.html", false},
		{"valid no extension", "template1", false},

		{"empty", "", true},
		{"with path /", "path/to/file", true},
		{"with path \\", "path\\to\\file", true},
		{"hidden file", ".hidden", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTemplateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTemplateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid relative", "templates/template1.html", false},
		{"valid simple", "out.zip", false},

		{"empty", "", true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "foo/../bar", true},
		{"backslash", "foo\\bar", true},
		{"null byte", "foo\x00bar", true},
		{"too long", strings.Repeat("a", 600), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/path", false},
		{"http", "http://example.com/path", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"data", "data:text/html,<script>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateLanguageCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"two letter", "de", false},
		{"three letter", "fil", false},
		{"with region", "pt-BR", false},
		{"chinese region", "zh-CN", false},

		{"empty", "", true},
		{"uppercase", "DE", true},
		{"single letter", "d", true},
		{"garbage", "de_DE!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLanguageCode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLanguageCode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
