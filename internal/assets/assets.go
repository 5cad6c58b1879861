// Package assets provides CSS styles and HTML templates for markup covers.
// Assets can be loaded from embedded files or custom filesystem paths.
package assets

// DefaultStyleName is the name of the built-in CSS style.
const DefaultStyleName = "cover"

// DefaultDocumentName is the name of the built-in document template.
const DefaultDocumentName = "document"

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a CSS file by name using the default embedded loader.
// The name should not include the .css extension or path components.
// Returns ErrStyleNotFound if the style does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// LoadTemplate loads an HTML template by name using the default embedded loader.
// Returns ErrTemplateNotFound if the template does not exist.
// Returns ErrInvalidAssetName if the name contains path separators or traversal.
func LoadTemplate(name string) (string, error) {
	return defaultLoader.LoadTemplate(name)
}

// StyleNames lists the embedded styles in lexical order.
func StyleNames() []string {
	return defaultLoader.StyleNames()
}
