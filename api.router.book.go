package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupBookRoutes injects the catalog json api endpoints.
func (api *APIHandler) SetupBookRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.GET("/status", m.public(api.Status))
	router.POST("/v1/books", m.public(api.CreateBook))
	router.GET("/v1/books", m.public(api.GetAllBooks))
	router.GET("/v1/books/:id", m.public(api.GetOneBook))
	router.PUT("/v1/books/:id", m.public(api.UpdateBook))
	router.DELETE("/v1/books/:id", m.public(api.DeleteOneBook))
	router.POST("/v1/books/:id/borrow", m.public(api.BorrowBook))
	router.POST("/v1/books/:id/return", m.public(api.ReturnBook))
	return router
}
