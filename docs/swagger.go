// Package docs provides Swagger documentation for the API.
package docs

// @title RPC Gateway API
// @version 1.0
// @description API key issuance, metering and proxying for the RPC backend
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url http://www.nodegate.io/support
// @contact.email support@nodegate.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @schemes http https
