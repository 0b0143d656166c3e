package main

// General API documentation for swaggo. Regenerate with `swag init -g cmd/modelview/docs.go -o internal/httpapi/docs`.
//
// @title           modelview status API
// @version         1.0
// @description     Local HTTP view of a modelview session: catalog, selection, scene and status.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
