// Package assets provides CSS styles and HTML templates for markup covers.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in styles)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// EmbeddedLoader provides the built-in cover styles (cover, poster, notebook)
// and the document template that wraps converted Markdown.
//
// AssetResolver is the loader used by the generator. It tries the custom
// FilesystemLoader first and falls back to EmbeddedLoader when the asset is
// not found, so a single style can be overridden without copying the rest.
//
// # Directory Structure
//
//	{basePath}/
//	├── styles/
//	│   └── {name}.css       # CSS styles (e.g., poster.css)
//	└── templates/
//	    └── {name}.html      # html/template documents (e.g., document.html)
//
// The document template receives .Title, .Width, .Height and .Body.
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
