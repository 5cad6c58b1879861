package assets

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	valid := []string{"cover", "poster", "notebook", "brand-2024", "week_1", "MyStyle"}
	for _, name := range valid {
		if err := ValidateAssetName(name); err != nil {
			t.Errorf("ValidateAssetName(%q) unexpected error: %v", name, err)
		}
	}

	invalid := []string{
		"",
		"../secret",
		`..\secret`,
		"cover.css",
		"/etc/passwd",
		"my style",
		"封面",
		"name\x00",
		strings.Repeat("a", MaxAssetNameLength+1),
	}
	for _, name := range invalid {
		err := ValidateAssetName(name)
		if !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("ValidateAssetName(%q) error = %v, want ErrInvalidAssetName", name, err)
		}
	}
}

func TestValidateAssetName_MessageNamesInput(t *testing.T) {
	t.Parallel()

	err := ValidateAssetName("../evil")
	if err == nil || !strings.Contains(err.Error(), `"../evil"`) {
		t.Errorf("error = %v, want it to quote the rejected name", err)
	}
	if err := ValidateAssetName(strings.Repeat("x", MaxAssetNameLength)); err != nil {
		t.Errorf("name at max length rejected: %v", err)
	}
}
