package assets

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestLoadStyle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		styleName string
		wantErr   error
	}{
		{name: "default style", styleName: DefaultStyleName},
		{name: "poster style", styleName: "poster"},
		{name: "nonexistent style", styleName: "nonexistent", wantErr: ErrStyleNotFound},
		{name: "empty name", styleName: "", wantErr: ErrInvalidAssetName},
		{name: "path traversal with slash", styleName: "../secret", wantErr: ErrInvalidAssetName},
		{name: "path traversal with backslash", styleName: `..\secret`, wantErr: ErrInvalidAssetName},
		{name: "name with dot", styleName: "cover.css", wantErr: ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := LoadStyle(tt.styleName)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadStyle(%q) error = %v, want %v", tt.styleName, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadStyle(%q) unexpected error: %v", tt.styleName, err)
			}
			if strings.TrimSpace(got) == "" {
				t.Errorf("LoadStyle(%q) returned empty content", tt.styleName)
			}
		})
	}
}

func TestLoadTemplate_Document(t *testing.T) {
	t.Parallel()

	got, err := LoadTemplate(DefaultDocumentName)
	if err != nil {
		t.Fatalf("LoadTemplate(%q) error = %v", DefaultDocumentName, err)
	}

	for _, want := range []string{"<!DOCTYPE html>", "{{.Title}}", "{{.Width}}", "{{.Height}}", "{{.Body}}", `lang="zh-CN"`} {
		if !strings.Contains(got, want) {
			t.Errorf("document template should contain %q", want)
		}
	}
}

func TestStyleNames(t *testing.T) {
	t.Parallel()

	want := []string{"cover", "notebook", "poster"}
	if got := StyleNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("StyleNames() = %v, want %v", got, want)
	}
}
