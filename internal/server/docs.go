// Package server provides the HTTP server for the Inkwell API.
//
// This file holds the API-level annotations for Swag/OpenAPI generation;
// endpoint annotations live with the handlers.
package server

// @title Inkwell API
// @version 1.0
// @description REST API for the Inkwell Keeper Lorcana collection engine.
// @description
// @description Features:
// @description - Set and card catalog with search, filters and sorting
// @description - Owned quantities, wishlist and set completion progress
// @description - Remote card metadata refresh with live status
// @description - Real-time events via WebSocket and Server-Sent Events
//
// @contact.name Inkwell Project
// @contact.url https://github.com/agentstation/inkwell
//
// @license.name MIT
// @license.url https://github.com/agentstation/inkwell/blob/master/LICENSE
//
// @host localhost:8080
// @BasePath /api/v1
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Required for PUT, POST and DELETE when the server has an API key configured
