package main

import (
	"github.com/julienschmidt/httprouter"
)

// SetupWebRoutes injects the html interface endpoints.
func (api *APIHandler) SetupWebRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.GET("/", m.public(api.Index))
	router.POST("/web/books", m.public(api.WebCreateBook))
	router.POST("/web/borrow/:id", m.public(api.WebBorrowBook))
	router.POST("/web/return/:id", m.public(api.WebReturnBook))
	router.POST("/web/delete/:id", m.public(api.WebDeleteBook))
	router.GET("/edit/:id", m.public(api.EditBookPage))
	router.POST("/edit/:id", m.public(api.WebUpdateBook))
	return router
}
