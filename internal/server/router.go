package server

import (
	"net/http"

	handler "auction-house/services/pages/handler"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application. The
// template glob is injectable so tests can load templates relative to
// their own working directory.
func SetupRouter(pages *handler.PageHandler, templateGlob string) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestIDMiddleware)     // tag every request with an id
	router.Use(RequestLoggerMiddleware) // custom request logging

	router.LoadHTMLGlob(templateGlob)
	router.Static("/static", "./static")

	router.GET("/healthz", func(c *gin.Context) {
		utils.JSONResponse(c, http.StatusOK, gin.H{"status": "healthy"}, "auction front end is up")
	})

	router.GET("/", pages.Home)
	router.GET("/dashboard", pages.Dashboard)

	router.GET("/login", pages.LoginForm)
	router.POST("/login", pages.Login)
	router.GET("/register", pages.RegisterForm)
	router.POST("/register", pages.Register)
	router.POST("/logout", pages.Logout)

	router.GET("/sell", pages.SellForm)
	router.POST("/sell", pages.CreateListing)

	listings := router.Group("/listings")
	{
		listings.GET("/:id", pages.ListingDetail)
		listings.POST("/:id/bids", pages.PlaceBid)
		listings.GET("/:id/edit", pages.EditListingForm)
		listings.POST("/:id/edit", pages.UpdateListing)
		listings.POST("/:id/delete", pages.DeleteListing)
	}

	profiles := router.Group("/profiles")
	{
		profiles.GET("/:name", pages.ProfilePage)
	}

	router.GET("/account", pages.AccountForm)
	router.POST("/account", pages.UpdateProfile)

	return router
}
