package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           servegate API
// @version         1.0
// @description     HTTP API for model request dispatch, readiness and monitoring.
//
// @contact.name   servegate maintainers
// @contact.url    https://github.com/your-org/servegate
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
