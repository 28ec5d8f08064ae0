package server

import "github.com/gin-gonic/gin"

type Route struct {
	Method     string
	Path       string
	Handler    gin.HandlerFunc
	Middleware []gin.HandlerFunc
}

type Controller interface {
	Routes() []Route
}

type RouterGroup struct {
	Path        string
	Middleware  []gin.HandlerFunc
	Controllers []Controller
}

func (s *Server) RegisterControllers(controllers ...Controller) {
	register(&s.engine.RouterGroup, controllers)
}

func (s *Server) RegisterGroups(groups ...RouterGroup) {
	for _, group := range groups {
		routerGroup := s.engine.Group(group.Path)
		if len(group.Middleware) > 0 {
			routerGroup.Use(group.Middleware...)
		}
		register(routerGroup, group.Controllers)
	}
}

func register(group *gin.RouterGroup, controllers []Controller) {
	for _, controller := range controllers {
		for _, route := range controller.Routes() {
			handlers := append([]gin.HandlerFunc{}, route.Middleware...)
			handlers = append(handlers, route.Handler)
			group.Handle(route.Method, route.Path, handlers...)
		}
	}
}
