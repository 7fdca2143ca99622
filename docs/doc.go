// Package docs provides generated OpenAPI documentation.
//
// Estate Analyzer API
//
//	@title			Estate Analyzer API
//	@version		1.0
//	@description	Extracts client details and a summary from estate planning PDFs.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/jackzampolin/estate
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/estate/serve.go -o ./swagger --parseDependency --parseInternal
